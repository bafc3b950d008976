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

package multiverse

import (
	"math/big"
	"sort"

	"github.com/multiverse-labs/bcengine/chain"
)

const defaultDepth = 7

// Highest walks every possible height-linked path through the bucket graph
// and returns the youngest block of the heaviest eligible chain (spec.md
// §4.5). A chain is eligible once it reaches at least depth blocks and
// passes ValidateBlockSequence; "heaviest" is the chain with the largest
// sum of member total_distance. With no eligible chain, falls back to the
// heaviest chain regardless of length. Returns nil if the multiverse is
// empty.
func (m *Multiverse) Highest(depth int) *chain.ParentBlock {
	if depth <= 0 {
		depth = defaultDepth
	}
	if len(m.blocks) == 0 {
		return nil
	}

	chains := m.assembleChains()
	if len(chains) == 0 {
		return nil
	}

	var eligible [][]*chain.ParentBlock
	for _, c := range chains {
		if len(c) >= depth && chain.ValidateBlockSequence(c) {
			eligible = append(eligible, c)
		}
	}
	pool := eligible
	if len(pool) == 0 {
		pool = chains
	}

	best := pool[0]
	bestWeight := chainWeight(best)
	for _, c := range pool[1:] {
		w := chainWeight(c)
		if w.Cmp(bestWeight) > 0 {
			best, bestWeight = c, w
		}
	}
	return best[len(best)-1]
}

func chainWeight(c []*chain.ParentBlock) *big.Int {
	sum := new(big.Int)
	for _, b := range c {
		sum.Add(sum, b.TotalDistanceBig())
	}
	return sum
}

// assembleChains returns every maximal height-contiguous, hash-linked path
// through the bucket graph, oldest block first.
func (m *Multiverse) assembleChains() [][]*chain.ParentBlock {
	var heights []uint64
	for h := range m.blocks {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	var chains [][]*chain.ParentBlock
	for _, h := range heights {
		for _, b := range m.blocks[h] {
			chains = append(chains, m.extendPaths(b, h)...)
		}
	}
	return chains
}

// extendPaths returns every maximal path starting at b, extending forward
// through blocks[h+1], blocks[h+2], ... by previous_hash linkage.
func (m *Multiverse) extendPaths(b *chain.ParentBlock, height uint64) [][]*chain.ParentBlock {
	var children []*chain.ParentBlock
	for _, c := range m.blocks[height+1] {
		if c.PreviousHash == b.Hash {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return [][]*chain.ParentBlock{{b}}
	}
	var out [][]*chain.ParentBlock
	for _, c := range children {
		for _, tail := range m.extendPaths(c, height+1) {
			out = append(out, append([]*chain.ParentBlock{b}, tail...))
		}
	}
	return out
}
