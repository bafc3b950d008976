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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/multiverse-labs/bcengine/rovers"
)

func TestGenesisIsDeterministic(t *testing.T) {
	a := Genesis()
	b := Genesis()
	require.Equal(t, a, b)
}

func TestGenesisHashIsSelfConsistent(t *testing.T) {
	g := Genesis()
	require.Equal(t, g.ComputeHash(), g.Hash)
}

func TestGenesisIsValidWithNilParent(t *testing.T) {
	g := Genesis()
	require.NoError(t, IsValidBlock(g, nil))
}

func TestGenesisCarriesEveryKnownChain(t *testing.T) {
	g := Genesis()
	require.True(t, g.BlockchainHeaders.Complete())
	for _, c := range rovers.Known {
		hdr, ok := g.BlockchainHeaders.Latest(c)
		require.True(t, ok)
		require.Equal(t, c, hdr.Chain)
		require.Equal(t, uint64(1), hdr.Height)
	}
}

func TestGenesisHasZeroDistanceAndTotalDistance(t *testing.T) {
	g := Genesis()
	require.Equal(t, int64(0), g.DistanceBig().Int64())
	require.Equal(t, int64(0), g.TotalDistanceBig().Int64())
}

func TestGenesisDifficultyIsMinimum(t *testing.T) {
	g := Genesis()
	require.Equal(t, 0, g.DifficultyBig().Cmp(MinimumDifficulty))
}
