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

// Package multiverse is the in-memory height-indexed fork graph and its
// fork-choice rule (spec.md §4.5). It never maintains parent pointers: the
// height buckets are small, and chains are assembled on demand by matching
// previous_hash against the bucket below.
package multiverse

import (
	"sort"

	mapset "github.com/deckarep/golang-set"

	"github.com/multiverse-labs/bcengine/chain"
)

// Multiverse holds, per height, the candidate blocks sorted by
// total_distance descending.
type Multiverse struct {
	blocks map[uint64][]*chain.ParentBlock
}

// New constructs an empty Multiverse.
func New() *Multiverse {
	return &Multiverse{blocks: make(map[uint64][]*chain.ParentBlock)}
}

// populatedHeights returns how many distinct heights currently hold blocks.
func (m *Multiverse) populatedHeights() int { return len(m.blocks) }

func headerSet(b *chain.ParentBlock) mapset.Set {
	s := mapset.NewSet()
	for h := range b.BlockchainHeaders.HashSet() {
		s.Add(h)
	}
	return s
}

// differentHeaderSets reports whether a and b reference a different set of
// child header hashes -- equal sets indicate duplicate mining context and
// are rejected by has_parent/has_child (spec.md §4.5).
func differentHeaderSets(a, b *chain.ParentBlock) bool {
	return !headerSet(a).Equal(headerSet(b))
}

func (m *Multiverse) hasParent(b *chain.ParentBlock) bool {
	for _, p := range m.blocks[b.Height-1] {
		if p.Hash == b.PreviousHash && p.Height == b.Height-1 && differentHeaderSets(p, b) {
			return true
		}
	}
	return false
}

func (m *Multiverse) hasChild(b *chain.ParentBlock) bool {
	for _, c := range m.blocks[b.Height+1] {
		if c.PreviousHash == b.Hash && c.Height-1 == b.Height && differentHeaderSets(c, b) {
			return true
		}
	}
	return false
}

func (m *Multiverse) alreadyPresent(b *chain.ParentBlock) bool {
	for _, p := range m.blocks[b.Height] {
		if p.Hash == b.Hash {
			return true
		}
	}
	return false
}

func (m *Multiverse) sortHeight(h uint64) {
	list := m.blocks[h]
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].TotalDistanceBig().Cmp(list[j].TotalDistanceBig()) > 0
	})
	m.blocks[h] = list
}

// Add inserts block into the multiverse, applying the fork-choice
// admission rule of spec.md §4.5. Returns whether the block was admitted.
func (m *Multiverse) Add(block *chain.ParentBlock, force bool) bool {
	syncing := m.populatedHeights() < 7
	if syncing {
		force = true
	}

	if m.hasParent(block) || m.hasChild(block) {
		if !m.alreadyPresent(block) {
			m.blocks[block.Height] = append(m.blocks[block.Height], block)
			m.sortHeight(block.Height)
		}
		return true
	}
	if force {
		m.blocks[block.Height] = append(m.blocks[block.Height], block)
		m.sortHeight(block.Height)
		return true
	}
	return false
}

// Lowest returns the single block at the smallest populated height.
func (m *Multiverse) Lowest() *chain.ParentBlock {
	if len(m.blocks) == 0 {
		return nil
	}
	min := ^uint64(0)
	for h := range m.blocks {
		if h < min {
			min = h
		}
	}
	list := m.blocks[min]
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// Purge drops every height below keepAbove (exclusive), i.e. everything
// that cannot matter once keepAbove is the new checkpoint.
func (m *Multiverse) Purge(keepAbove uint64) {
	for h := range m.blocks {
		if h < keepAbove {
			delete(m.blocks, h)
		}
	}
}
