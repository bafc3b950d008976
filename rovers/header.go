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

package rovers

// ChildHeader is the most recent observed tip of an external chain, as
// recorded inside a parent block. Immutable after creation.
type ChildHeader struct {
	Chain                 Chain  `json:"chain"`
	Hash                  string `json:"hash"`
	PreviousHash          string `json:"previousHash"`
	TimestampMs           int64  `json:"timestampMs"`
	Height                uint64 `json:"height"`
	MerkleRoot            string `json:"merkleRoot"`
	ConfirmationsInParent uint32 `json:"confirmationsInParent"`
}

// ChildHeaderMap maps a rovered chain to its ordered tip history, most
// recent first. A valid parent block has at least one entry per known
// chain (rovers.Known).
type ChildHeaderMap map[Chain][]ChildHeader

// Latest returns the most recently observed header for c, or false if the
// map holds nothing for that chain yet.
func (m ChildHeaderMap) Latest(c Chain) (ChildHeader, bool) {
	list := m[c]
	if len(list) == 0 {
		return ChildHeader{}, false
	}
	return list[0], true
}

// Complete reports whether every known chain has contributed at least one
// header, the precondition for can_mine in the engine state machine.
func (m ChildHeaderMap) Complete() bool {
	for _, c := range Known {
		if _, ok := m.Latest(c); !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep-enough copy (new outer map and slices) so a caller
// can safely prepend a new tip without mutating the assembly context that
// produced m.
func (m ChildHeaderMap) Clone() ChildHeaderMap {
	out := make(ChildHeaderMap, len(m))
	for k, v := range m {
		cp := make([]ChildHeader, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// WithTip returns a clone of m with hdr prepended to chain c's history.
func (m ChildHeaderMap) WithTip(c Chain, hdr ChildHeader) ChildHeaderMap {
	out := m.Clone()
	out[c] = append([]ChildHeader{hdr}, out[c]...)
	return out
}

// HashSet returns the set of every header hash across every chain in m,
// used by the multiverse to detect duplicate mining context (spec.md §4.5).
func (m ChildHeaderMap) HashSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range m {
		for _, h := range list {
			set[h.Hash] = struct{}{}
		}
	}
	return set
}

// DistinctCount returns the number of distinct child-header hashes across
// every chain, used by the engine's unfinished-block cleanup rule (spec.md
// §4.4 start_mining step 2: drop if >=6 distinct child blocks referenced).
func (m ChildHeaderMap) DistinctCount() int {
	return len(m.HashSet())
}
