// Copyright 2020 The The 420Integrated Development Group
// This file is part of the go-420coin library.
//
// The go-420coin library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-420coin library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-420coin library. If not, see <http://www.gnu.org/licenses/>.

package chain

import (
	"math"
	"math/big"
)

const chunkSize = 32

// chunks splits s into reversed, forward 32-char chunks of ASCII codes, as
// spec.md §4.2 describes: the string is walked in 32-character windows, and
// each window's character codes are read back-to-front.
func chunks(s string) [][]float64 {
	runes := []rune(s)
	var out [][]float64
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := runes[i:end]
		chunk := make([]float64, len(window))
		for j, r := range window {
			chunk[len(window)-1-j] = float64(r)
		}
		out = append(out, chunk)
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Distance is the mining objective (spec.md §4.2): chunk both strings into
// reversed 32-char ASCII-code windows, sum 1-cosine_similarity pairwise
// (unequal chunk counts pair by zip, shorter determines count), and scale
// by 1e15, floored.
func Distance(a, b string) *big.Int {
	ca, cb := chunks(a), chunks(b)
	n := len(ca)
	if len(cb) < n {
		n = len(cb)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += 1 - cosineSimilarity(ca[i], cb[i])
	}
	scaled := math.Floor(sum * 1e15)
	if scaled < 0 {
		scaled = 0
	}
	bi, _ := big.NewFloat(scaled).Int(nil)
	return bi
}
