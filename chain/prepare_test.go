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

	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/rovers"
)

func TestPrepareNewBlockBuildsValidChild(t *testing.T) {
	parent := Genesis()
	tip := rovers.ChildHeader{Chain: rovers.ETH, Hash: common.H("eth.tip.2"), Height: 2}

	candidate, ts := PrepareNewBlock(parent.TimestampS+60, parent, rovers.ETH, tip, 0, nil, "miner-key", nil)

	require.Equal(t, ts, candidate.Block.TimestampS)
	require.NoError(t, IsValidBlock(candidate.Block, parent))
	require.Equal(t, "miner-key", candidate.Block.Miner)
	require.Equal(t, "", candidate.Block.Nonce)
	require.Equal(t, int64(0), candidate.Block.DistanceBig().Int64())
}

func TestPrepareNewBlockMergesNewTipIntoHeaders(t *testing.T) {
	parent := Genesis()
	tip := rovers.ChildHeader{Chain: rovers.ETH, Hash: common.H("eth.tip.2"), Height: 2}

	candidate, _ := PrepareNewBlock(parent.TimestampS+60, parent, rovers.ETH, tip, 0, nil, "miner-key", nil)

	latest, ok := candidate.Block.BlockchainHeaders.Latest(rovers.ETH)
	require.True(t, ok)
	require.Equal(t, tip.Hash, latest.Hash)

	// every other chain's tip is carried over from the parent unchanged.
	btcLatest, ok := candidate.Block.BlockchainHeaders.Latest(rovers.BTC)
	require.True(t, ok)
	parentBTC, _ := parent.BlockchainHeaders.Latest(rovers.BTC)
	require.Equal(t, parentBTC.Hash, btcLatest.Hash)
}

func TestPrepareNewBlockDifficultyFits53Bits(t *testing.T) {
	parent := Genesis()
	tip := rovers.ChildHeader{Chain: rovers.ETH, Hash: common.H("eth.tip.2"), Height: 2}

	candidate, _ := PrepareNewBlock(parent.TimestampS+1, parent, rovers.ETH, tip, 0, nil, "miner-key", nil)

	require.True(t, common.Fits53Bits(candidate.Block.DifficultyBig()))
}

func TestPrepareNewBlockUsesUnfinishedHeadersWhenProvided(t *testing.T) {
	parent := Genesis()
	unfinished := parent.Clone()
	unfinished.BlockchainHeaders = parent.BlockchainHeaders.WithTip(rovers.LSK, rovers.ChildHeader{
		Chain: rovers.LSK, Hash: common.H("lsk.unfinished"), Height: 2,
	})

	tip := rovers.ChildHeader{Chain: rovers.ETH, Hash: common.H("eth.tip.2"), Height: 2}
	candidate, _ := PrepareNewBlock(parent.TimestampS+60, parent, rovers.ETH, tip, 0, nil, "miner-key", unfinished)

	lskLatest, ok := candidate.Block.BlockchainHeaders.Latest(rovers.LSK)
	require.True(t, ok)
	require.Equal(t, common.H("lsk.unfinished"), lskLatest.Hash)
}

func TestPrepareNewBlockWorkIsDeterministic(t *testing.T) {
	parent := Genesis()
	tip := rovers.ChildHeader{Chain: rovers.ETH, Hash: common.H("eth.tip.2"), Height: 2}

	c1, ts1 := PrepareNewBlock(parent.TimestampS+60, parent, rovers.ETH, tip, 0, nil, "miner-key", nil)
	c2, ts2 := PrepareNewBlock(parent.TimestampS+60, parent, rovers.ETH, tip, 0, nil, "miner-key", nil)

	require.Equal(t, ts1, ts2)
	require.Equal(t, c1.Work, c2.Work)
	require.Equal(t, c1.Block.Hash, c2.Block.Hash)
}

func TestPrepareNewBlockIncludesTxListInTxCount(t *testing.T) {
	parent := Genesis()
	tip := rovers.ChildHeader{Chain: rovers.ETH, Hash: common.H("eth.tip.2"), Height: 2}
	txs := []string{"tx1", "tx2", "tx3"}

	candidate, _ := PrepareNewBlock(parent.TimestampS+60, parent, rovers.ETH, tip, 0, txs, "miner-key", nil)

	require.Equal(t, len(txs), candidate.Block.TxCount)
	require.Equal(t, txs, candidate.Block.TxList)
}
