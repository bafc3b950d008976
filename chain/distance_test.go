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
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceIdenticalStringsIsZero(t *testing.T) {
	got := Distance("same-work-string", "same-work-string")
	require.Equal(t, big.NewInt(0).String(), got.String())
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := "0123456789abcdef0123456789abcdef0123456789abcdef"
	b := "fedcba9876543210fedcba9876543210fedcba9876543210"

	require.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistanceIsNonNegative(t *testing.T) {
	got := Distance("abc", "xyz")
	require.GreaterOrEqual(t, got.Sign(), 0)
}

func TestDistanceDiffersForDifferentChunkCounts(t *testing.T) {
	short := "abc"
	long := strings.Repeat("abc", 20)

	// Distance pairs chunks up to the shorter input's chunk count; it must
	// not panic or silently treat a short input as a full match.
	got := Distance(short, long)
	require.Equal(t, 1, got.Sign())
}

func TestChunksReversesEachWindow(t *testing.T) {
	cs := chunks("ab")
	require.Len(t, cs, 1)
	// reversed: last rune's code comes first.
	require.Equal(t, []float64{float64('b'), float64('a')}, cs[0])
}

func TestChunksSplitsOn32CharWindows(t *testing.T) {
	s := strings.Repeat("x", 40)
	cs := chunks(s)
	require.Len(t, cs, 2)
	require.Len(t, cs[0], 32)
	require.Len(t, cs[1], 8)
}

func TestCosineSimilarityIdenticalVectorsIsOne(t *testing.T) {
	v := []float64{1, 2, 3}
	require.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarityZeroVectorIsZero(t *testing.T) {
	require.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 2}))
}
