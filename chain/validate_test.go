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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/multiverse-labs/bcengine/common"
)

// childOf builds a block that satisfies every IsValidBlock invariant
// against parent, for tests to then individually break.
func childOf(parent *ParentBlock, distance int64) *ParentBlock {
	c := parent.Clone()
	c.PreviousHash = parent.Hash
	c.Height = parent.Height + 1
	c.Distance = common.BigToHex(big.NewInt(distance))
	total := new(big.Int).Add(parent.TotalDistanceBig(), big.NewInt(distance))
	c.TotalDistance = common.BigToHex(total)
	c.TimestampS = parent.TimestampS + 10
	c.MerkleRoot = common.H("child.merkle")
	c.Hash = c.ComputeHash()
	return c
}

func TestIsValidBlockAcceptsWellFormedChild(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	require.NoError(t, IsValidBlock(child, parent))
}

func TestIsValidBlockRejectsHashMismatch(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	child.Hash = "tampered"
	require.Error(t, IsValidBlock(child, parent))
}

func TestIsValidBlockRejectsWrongHeight(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	child.Height = parent.Height + 2
	child.Hash = child.ComputeHash()
	require.Error(t, IsValidBlock(child, parent))
}

func TestIsValidBlockRejectsWrongTotalDistance(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	child.TotalDistance = common.BigToHex(big.NewInt(1))
	child.Hash = child.ComputeHash()
	require.Error(t, IsValidBlock(child, parent))
}

func TestIsValidBlockRejectsTimestampGoingBackwards(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	child.TimestampS = parent.TimestampS - 1
	child.Hash = child.ComputeHash()
	require.Error(t, IsValidBlock(child, parent))
}

func TestIsValidBlockRejectsPreviousHashMismatch(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	child.PreviousHash = common.H("not-the-parent")
	child.Hash = child.ComputeHash()
	require.Error(t, IsValidBlock(child, parent))
}

func TestIsValidBlockRejectsNonGenesisWithNilParent(t *testing.T) {
	parent := Genesis()
	child := childOf(parent, 100)
	require.Error(t, IsValidBlock(child, nil))
}

func TestValidateBlockSequenceAcceptsContiguousChain(t *testing.T) {
	genesis := Genesis()
	c1 := childOf(genesis, 100)
	c2 := childOf(c1, 100)
	require.True(t, ValidateBlockSequence([]*ParentBlock{genesis, c1, c2}))
}

func TestValidateBlockSequenceRejectsBrokenLink(t *testing.T) {
	genesis := Genesis()
	c1 := childOf(genesis, 100)
	c2 := childOf(genesis, 100) // not built on c1
	require.False(t, ValidateBlockSequence([]*ParentBlock{genesis, c1, c2}))
}

func TestValidateBlockSequenceSingleBlockIsTriviallyValid(t *testing.T) {
	require.True(t, ValidateBlockSequence([]*ParentBlock{Genesis()}))
}
