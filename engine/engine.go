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

// Package engine is the block-engine coordinator: it ingests rovered-chain
// tips, drives the out-of-process mining worker, integrates locally-mined
// and peer-delivered blocks into the multiverse, and persists canonical
// height-indexed state (spec.md §4.4). Every exported method here is meant
// to be called from a single caller goroutine -- the engine keeps no
// internal lock on its state variables, matching the "single event loop"
// model of spec.md §5. The worker's readLoop runs on its own goroutine, so
// its messages never call engine methods directly: they are funneled as
// closures through the channel Events() exposes, and the single caller
// goroutine is responsible for draining Events() and invoking each
// function itself, the same way it calls OnRoverTip/OnPeerBlock/OnPubsub.
// Persisted writes are a separate exception, serialized through their own
// single-consumer queue regardless of caller.
package engine

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"

	"github.com/multiverse-labs/bcengine/blockpool"
	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/clock"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/miner"
	"github.com/multiverse-labs/bcengine/multiverse"
	"github.com/multiverse-labs/bcengine/peer"
	"github.com/multiverse-labs/bcengine/pubsub"
	"github.com/multiverse-labs/bcengine/rovers"
	"github.com/multiverse-labs/bcengine/store"
)

// knownBlocksCacheCapacity is the LRU bound on recently-seen peer blocks
// (spec.md §4.4 state variables).
const knownBlocksCacheCapacity = 1024

// Options configures a newly constructed Engine.
type Options struct {
	MinerKey    string
	MinerBinary string
	MinerArgs   []string
	Depth       int // multiverse fork-choice depth, default 7
}

// Engine owns every in-process subsystem of spec.md §2: the multiverse, the
// block pool, the persistence handle, the pub/sub bus, and the current
// mining attempt.
type Engine struct {
	st         store.Store
	bus        *pubsub.Bus
	pool       *blockpool.Pool
	mv         *multiverse.Multiverse
	peerClient peer.Client
	clk        *clock.Clock

	minerKey  string
	minerBin  string
	minerArgs []string
	depth     int

	canMine         bool
	peerIsSyncing   bool
	peerIsResyncing bool

	unfinishedBlock       *chain.ParentBlock
	unfinishedWork        string
	unfinishedParent      *chain.ParentBlock
	worker                *miner.Handle

	collected map[rovers.Chain]uint64
	cache     *lru.Cache

	writes chan func()
	events chan func()
}

// New constructs an Engine over the given subsystems. peerClient may be nil
// when the node runs with BC_P2P_PASSIVE (no outbound dials); backward sync
// is then unavailable: on_peer_block still stops mining and publishes a
// dominating peer block as a forced update.block.latest, but queries no peer.
func New(st store.Store, bus *pubsub.Bus, pool *blockpool.Pool, mv *multiverse.Multiverse, peerClient peer.Client, clk *clock.Clock, opts Options) *Engine {
	if opts.Depth <= 0 {
		opts.Depth = 7
	}
	cache, _ := lru.New(knownBlocksCacheCapacity)

	e := &Engine{
		st:         st,
		bus:        bus,
		pool:       pool,
		mv:         mv,
		peerClient: peerClient,
		clk:        clk,
		minerKey:   opts.MinerKey,
		minerBin:   opts.MinerBinary,
		minerArgs:  opts.MinerArgs,
		depth:      opts.Depth,
		collected:  make(map[rovers.Chain]uint64, len(rovers.Known)),
		cache:      cache,
		writes:     make(chan func(), 64),
		events:     make(chan func(), 64),
	}
	go e.runWriteQueue()
	for _, topic := range []pubsub.Topic{
		pubsub.TopicStateBlockHeight,
		pubsub.TopicUpdateBlockLatest,
		pubsub.TopicStateResyncFailed,
		pubsub.TopicStateCheckpointEnd,
	} {
		t := topic
		bus.Subscribe(t, func(m pubsub.Message) { e.OnPubsub(t, m) })
	}
	return e
}

// runWriteQueue is the single-consumer persistence queue spec.md §5
// requires so concurrent publishes never reorder puts.
func (e *Engine) runWriteQueue() {
	for fn := range e.writes {
		fn()
	}
}

func (e *Engine) enqueueWrite(fn func()) {
	e.writes <- fn
}

// Events returns the channel worker messages are funneled through (see the
// package doc comment). The caller's single event-loop goroutine must
// select on this alongside whatever feeds OnRoverTip/OnPeerBlock/OnPubsub
// and invoke every function it receives from here directly.
func (e *Engine) Events() <-chan func() {
	return e.events
}

func (e *Engine) enqueueEvent(fn func()) {
	e.events <- fn
}

func totalDistanceOf(b *chain.ParentBlock) *big.Int { return b.TotalDistanceBig() }
