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

// Package common holds the small cross-package primitives: the opaque
// Blake2 hash primitive H(x) and hex/big.Int interchange helpers.
package common

import (
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// H is the opaque cryptographic primitive referenced throughout this tree:
// a Blake2 variant producing lowercase hex output. Treated as a black box
// by every caller -- swapping it never changes any other package's logic.
func H(x string) string {
	sum := blake2b.Sum256([]byte(x))
	return hex.EncodeToString(sum[:])
}

// H2 folds two strings before hashing, the `H(a || b)` shorthand spec.md
// uses throughout (block hash, merkle fold, chain root fold).
func H2(a, b string) string {
	return H(a + b)
}

// BigFromHex parses a base-16 string (no 0x prefix) into a big.Int. An
// empty string decodes to zero, matching a freshly-assembled candidate's
// unset distance/nonce fields.
func BigFromHex(s string) *big.Int {
	n := new(big.Int)
	if s == "" {
		return n
	}
	n.SetString(s, 16)
	return n
}

// BigToHex renders a big.Int as a base-16 string, the interchange form used
// at every persistence and peer-RPC boundary so difficulty/distance/
// total_distance never round-trip through a native JSON number.
func BigToHex(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.Text(16)
}

// Fits53Bits reports whether n fits in the 53-bit integer range a final
// difficulty field is coerced to (JS's safe-integer limit, 2^53-1).
func Fits53Bits(n *big.Int) bool {
	return n.Sign() >= 0 && n.BitLen() <= 53
}
