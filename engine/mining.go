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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/internal/errs"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/miner"
	"github.com/multiverse-labs/bcengine/pubsub"
	"github.com/multiverse-labs/bcengine/rovers"
	"github.com/multiverse-labs/bcengine/store"
)

// OnRoverTip ingests one newly observed external-chain tip (spec.md §4.4
// on_rover_tip).
func (e *Engine) OnRoverTip(c rovers.Chain, hdr rovers.ChildHeader) error {
	e.collected[c]++

	if !e.canMine {
		allCollected := true
		for _, known := range rovers.Known {
			if e.collected[known] == 0 {
				allCollected = false
				break
			}
		}
		if allCollected {
			e.canMine = true
		}
	}

	if !e.canMine || e.peerIsSyncing || !e.activeRoversComplete() {
		return nil
	}

	return e.startMining(c, hdr)
}

// activeRoversComplete reports whether every known chain has contributed at
// least one tip this run.
func (e *Engine) activeRoversComplete() bool {
	for _, c := range rovers.Known {
		if e.collected[c] == 0 {
			return false
		}
	}
	return true
}

// startMining assembles a mining candidate on top of the current tip and
// forks a worker against it (spec.md §4.4 start_mining).
func (e *Engine) startMining(triggerChain rovers.Chain, triggerHeader rovers.ChildHeader) error {
	var lastParent chain.ParentBlock
	if err := store.GetJSON(e.st, store.KeyBlockLatest, &lastParent); err != nil {
		return errs.New(errs.KindPersistence, "engine.startMining load bc.block.latest", err)
	}

	if e.unfinishedBlock != nil && e.unfinishedBlock.BlockchainHeaders.DistinctCount() >= 6 {
		e.unfinishedBlock = nil
		e.unfinishedParent = nil
	}

	candidate, finalTS := chain.PrepareNewBlock(e.clk.NowS(), &lastParent, triggerChain, triggerHeader, 1, nil, e.minerKey, e.unfinishedBlock)
	candidate.Block.TimestampS = finalTS

	e.unfinishedBlock = candidate.Block
	e.unfinishedWork = candidate.Work
	e.unfinishedParent = &lastParent

	if e.worker != nil {
		e.restartMining()
	}
	return e.forkWorker(candidate, &lastParent)
}

func (e *Engine) forkWorker(candidate *chain.MiningCandidate, lastParent *chain.ParentBlock) error {
	prevBytes, err := json.Marshal(lastParent)
	if err != nil {
		return errs.New(errs.KindWorker, "engine.forkWorker marshal parent", err)
	}
	headersBytes, err := json.Marshal(candidate.Block.BlockchainHeaders)
	if err != nil {
		return errs.New(errs.KindWorker, "engine.forkWorker marshal headers", err)
	}

	req := miner.Request{
		CurrentTimestampS: candidate.Block.TimestampS,
		OffsetMs:          e.clk.Offset(),
		Work:              candidate.Work,
		MinerKey:          e.minerKey,
		MerkleRoot:        candidate.Block.MerkleRoot,
		Difficulty:        candidate.Block.Difficulty,
		DifficultyData: miner.DifficultyData{
			CurrentTimestampS: candidate.Block.TimestampS,
			PrevBlockBytes:    prevBytes,
			NewHeadersBytes:   headersBytes,
		},
	}

	// readLoop (miner/handle.go) delivers these from its own goroutine, so
	// none of them may touch engine state directly: each one only enqueues
	// a closure onto e.events, which the single engine-owning goroutine
	// drains via Events() and runs itself.
	h, err := miner.Start(e.minerBin, e.minerArgs, req,
		func(sol miner.Solution) {
			e.enqueueEvent(func() { e.OnWorkerSolution(sol) })
		},
		func(err error) {
			e.enqueueEvent(func() {
				log.Warn("worker error", "err", err)
				e.unfinishedBlock = nil
				e.unfinishedParent = nil
				e.worker = nil
			})
		},
		func() {
			e.enqueueEvent(func() {
				e.unfinishedBlock = nil
				e.unfinishedParent = nil
				e.worker = nil
			})
		},
	)
	if err != nil {
		return errs.New(errs.KindWorker, "engine.forkWorker start", err)
	}
	e.worker = h
	return nil
}

// restartMining tears down the current worker; the caller is expected to
// fork a fresh one against updated state immediately after (spec.md §4.4
// restart_mining).
func (e *Engine) restartMining() {
	if e.worker != nil {
		e.worker.Stop()
		e.worker = nil
	}
}

// StopMining idempotently stops any running worker, reporting whether one
// was actually running (spec.md §4.4 stop_mining).
func (e *Engine) StopMining() bool {
	if e.worker == nil {
		return false
	}
	stopped := e.worker.Stop()
	e.worker = nil
	return stopped
}

// OnWorkerSolution integrates a solution reported by the current worker
// (spec.md §4.4 on_worker_solution).
func (e *Engine) OnWorkerSolution(sol miner.Solution) {
	if e.unfinishedBlock == nil {
		log.Warn("worker solution arrived with no unfinished block", "nonce", sol.Nonce)
		return
	}

	b := e.unfinishedBlock.Clone()
	b.Nonce = sol.Nonce
	b.Distance = sol.Distance
	b.TimestampS = sol.TimestampS
	b.Difficulty = sol.Difficulty
	total := new(big.Int).Add(totalDistanceOf(e.unfinishedParent), b.DistanceBig())
	b.TotalDistance = common.BigToHex(total)

	if err := chain.IsValidBlock(b, e.unfinishedParent); err != nil {
		log.Warn("self-mined block failed validation", "err", err)
		e.unfinishedBlock = nil
		e.unfinishedParent = nil
		return
	}

	if err := e.processMinedBlock(b); err != nil {
		log.Warn("failed to integrate self-mined block", "err", err)
		e.unfinishedBlock = nil
		e.unfinishedParent = nil
		return
	}

	e.bus.Publish(pubsub.TopicUpdateBlockLatest, pubsub.Message{Data: b})
	e.bus.Publish(pubsub.TopicBlockMined, pubsub.Message{Data: b})
	e.unfinishedBlock = nil
	e.unfinishedParent = nil
}

// processMinedBlock admits b into the multiverse and persists it as the new
// tip. Broadcasting to peers is this node's outbound write path and is left
// to the caller's pubsub subscribers (update.block.latest), matching
// spec.md §4.4 step 4 ("broadcast to peers, publish ...").
func (e *Engine) processMinedBlock(b *chain.ParentBlock) error {
	if !e.mv.Add(b, false) {
		return errs.New(errs.KindValidation, "engine.processMinedBlock", fmt.Errorf("multiverse rejected self-mined block %s", b.Hash))
	}
	if err := store.PutJSON(e.st, store.KeyBlockHeight(b.Height), b); err != nil {
		return err
	}
	return store.PutJSON(e.st, store.KeyBlockLatest, b)
}
