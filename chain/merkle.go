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

	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/rovers"
)

// MerkleRoot fold-hashes H(acc || item) left-to-right. A single item yields
// H(item); callers never invoke this with an empty slice (spec.md §4.2).
func MerkleRoot(items []string) string {
	acc := items[0]
	hash := common.H(acc)
	for _, item := range items[1:] {
		hash = common.H2(hash, item)
	}
	return hash
}

// ChildChainRoot XOR-reduces H(header.hash || header.merkle_root) across
// every header in m, starting from zero (spec.md §4.2).
func ChildChainRoot(m rovers.ChildHeaderMap) *big.Int {
	acc := new(big.Int)
	for _, c := range rovers.Known {
		for _, hdr := range m[c] {
			h := common.BigFromHex(common.H2(hdr.Hash, hdr.MerkleRoot))
			acc.Xor(acc, h)
		}
	}
	return acc
}

// Work computes the mining target: H((child_chain_root(headers) XOR
// prev_hash_as_int).to_string()) (spec.md §4.2).
func Work(prevHash string, headers rovers.ChildHeaderMap) string {
	prevAsInt := common.BigFromHex(prevHash)
	root := ChildChainRoot(headers)
	x := new(big.Int).Xor(root, prevAsInt)
	return common.H(x.Text(10))
}

// PrepareWork is the engine-facing name for Work (spec.md §4.4 step 4),
// deterministic in (prevHash, multiset-of-header-hashes+merkle-roots).
func PrepareWork(prevHash string, headers rovers.ChildHeaderMap) string {
	return Work(prevHash, headers)
}
