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

// Package rovers holds the closed set of external, "rovered" chains this
// node observes, and the header type each one contributes to a parent
// block. Spec.md §9 calls for a fixed enum here instead of reflection over
// chain-tag strings -- every "for each known chain" loop ranges over Known.
package rovers

// Chain is a rovered external chain tag.
type Chain string

const (
	BTC Chain = "btc"
	ETH Chain = "eth"
	LSK Chain = "lsk"
	WAV Chain = "wav"
	NEO Chain = "neo"
)

// Known is the closed, ordered list of chain tags this node rovers. A valid
// parent block carries at least one ChildHeader per entry.
var Known = []Chain{BTC, ETH, LSK, WAV, NEO}

// Valid reports whether c is one of the known rovered chains.
func Valid(c Chain) bool {
	for _, k := range Known {
		if k == c {
			return true
		}
	}
	return false
}
