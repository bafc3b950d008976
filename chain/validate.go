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
	"fmt"
	"math/big"
)

// IsValidBlock checks the invariants of spec.md §3/§8 for b against its
// immediate parent. Spec.md §9(ii) resolves the ambiguous no-arg call in
// the source: this always takes the candidate block explicitly.
func IsValidBlock(b, parent *ParentBlock) error {
	if b.ComputeHash() != b.Hash {
		return fmt.Errorf("hash mismatch: have %s want %s", b.Hash, b.ComputeHash())
	}
	if parent == nil {
		if b.Height != 1 {
			return fmt.Errorf("missing parent for height %d", b.Height)
		}
		return nil
	}
	if b.Height != parent.Height+1 {
		return fmt.Errorf("height %d is not parent height %d + 1", b.Height, parent.Height)
	}
	wantTotal := new(big.Int).Add(parent.TotalDistanceBig(), b.DistanceBig())
	if b.TotalDistanceBig().Cmp(wantTotal) != 0 {
		return fmt.Errorf("total_distance %s does not equal parent total_distance + distance", b.TotalDistance)
	}
	if b.TimestampS < parent.TimestampS {
		return fmt.Errorf("timestamp %d precedes parent timestamp %d", b.TimestampS, parent.TimestampS)
	}
	if b.PreviousHash != parent.Hash {
		return fmt.Errorf("previous_hash %s does not match parent hash %s", b.PreviousHash, parent.Hash)
	}
	return nil
}

// ValidateBlockSequence checks that a chain of blocks, ordered oldest
// first, forms a contiguous, hash-linked sequence -- the predicate
// multiverse.highest uses to decide whether a candidate chain is eligible
// (spec.md §4.5).
func ValidateBlockSequence(chain []*ParentBlock) bool {
	for i := 1; i < len(chain); i++ {
		if err := IsValidBlock(chain[i], chain[i-1]); err != nil {
			return false
		}
	}
	return true
}
