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

package engine

import (
	"context"
	"sort"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/multiverse"
	"github.com/multiverse-labs/bcengine/peer"
	"github.com/multiverse-labs/bcengine/pubsub"
)

// backwardSyncWindow is how many heights below a dominating peer block this
// node asks for in one query (spec.md §4.4 on_peer_block step 4b).
const backwardSyncWindow = 7

// OnPeerBlock integrates a block delivered by a connected peer, escalating
// to a backward sync when it strictly dominates the current tip (spec.md
// §4.4 on_peer_block).
func (e *Engine) OnPeerBlock(ctx context.Context, newBlock *chain.ParentBlock) {
	if _, ok := e.cache.Get(newBlock.Hash); ok {
		return
	}
	e.cache.Add(newBlock.Hash, struct{}{})

	// While a backward sync is filling the gap down to genesis, every
	// peer-delivered block is a blockpool candidate, not a multiverse one:
	// the pool itself publishes state.checkpoint.end/state.resync.failed
	// once it knows whether the gap closed (spec.md §4.4 on_pubsub clears
	// peerIsResyncing on state.checkpoint.end; on state.resync.failed it
	// keeps it set and re-purges the pool).
	if e.peerIsResyncing {
		if err := e.pool.Add(newBlock); err != nil {
			log.Warn("blockpool add during resync failed", "hash", newBlock.Hash, "height", newBlock.Height, "err", err)
		}
		return
	}

	before := e.mv.Highest(e.depth)
	if !e.mv.Add(newBlock, false) {
		log.Debug("peer block not admitted to multiverse", "hash", newBlock.Hash, "height", newBlock.Height)
	}
	after := e.mv.Highest(e.depth)

	beforeHash, afterHash := "", ""
	if before != nil {
		beforeHash = before.Hash
	}
	if after != nil {
		afterHash = after.Hash
	}

	if beforeHash != afterHash {
		e.StopMining()
		e.bus.Publish(pubsub.TopicUpdateBlockLatest, pubsub.Message{Data: newBlock})
		return
	}

	if after != nil && after.Height < newBlock.Height && after.TotalDistanceBig().Cmp(newBlock.TotalDistanceBig()) < 0 {
		e.StopMining()
		e.bus.Publish(pubsub.TopicUpdateBlockLatest, pubsub.Message{Data: newBlock, Force: true})
		e.backwardSync(ctx, newBlock)
	}
}

// backwardSync fetches the window of blocks below a dominating peer block,
// assembles a candidate multiverse, and adopts it when it is conclusively
// better than the current one (spec.md §4.4 on_peer_block step 4b-c).
func (e *Engine) backwardSync(ctx context.Context, newBlock *chain.ParentBlock) {
	if e.peerClient == nil {
		return
	}

	low := uint64(1)
	if newBlock.Height > backwardSyncWindow {
		low = newBlock.Height - backwardSyncWindow
	}
	high := newBlock.Height - 1

	resp, err := e.peerClient.Query(ctx, peer.QueryRequest{
		QueryHash:   newBlock.Hash,
		QueryHeight: newBlock.Height,
		Low:         low,
		High:        high,
	})
	if err != nil {
		log.Warn("backward sync query failed", "err", err)
		return
	}

	candidate := append([]*chain.ParentBlock{newBlock}, resp...)
	sort.SliceStable(candidate, func(i, j int) bool { return candidate[i].Height > candidate[j].Height })

	if len(candidate) <= 6 {
		return
	}

	cmv := multiverse.New()
	for i := len(candidate) - 1; i >= 0; i-- {
		cmv.Add(candidate[i], true)
	}

	candidateHighest := cmv.Highest(e.depth)
	currentHighest := e.mv.Highest(e.depth)
	if candidateHighest == nil {
		return
	}
	dominates := currentHighest == nil ||
		(candidateHighest.TotalDistanceBig().Cmp(currentHighest.TotalDistanceBig()) > 0 && candidateHighest.Height > currentHighest.Height)
	if !dominates {
		return
	}

	e.mv = cmv
	if lowest := cmv.Lowest(); lowest != nil {
		if err := e.pool.Purge(lowest); err != nil {
			log.Warn("backward sync checkpoint purge failed", "err", err)
			return
		}
		// A checkpoint is now set below the adopted chain; until the pool
		// reports the gap closed or failed, further peer blocks feed it
		// via blockpool.Pool.Add instead of the multiverse.
		e.peerIsResyncing = true
	}
}
