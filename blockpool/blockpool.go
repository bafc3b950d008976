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

// Package blockpool buffers out-of-order blocks received during backward
// sync until they connect the gap between genesis+1 and a checkpoint
// (spec.md §4.6).
package blockpool

import (
	"errors"
	"fmt"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/internal/errs"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/pubsub"
	"github.com/multiverse-labs/bcengine/store"
)

// Pool is the backward-sync buffer: it owns the bc.block.earliest marker
// and the persisted bc.block.<h> range between the checkpoint and genesis.
type Pool struct {
	st          store.Store
	bus         *pubsub.Bus
	genesisHash string

	checkpoint *chain.ParentBlock
	cache      map[string]*chain.ParentBlock
}

// New constructs a Pool bound to st and bus, with genesisHash identifying
// the chain's height-1 block.
func New(st store.Store, bus *pubsub.Bus, genesisHash string) *Pool {
	return &Pool{st: st, bus: bus, genesisHash: genesisHash, cache: make(map[string]*chain.ParentBlock)}
}

func (p *Pool) earliest() (*chain.ParentBlock, bool, error) {
	var b chain.ParentBlock
	err := store.GetJSON(p.st, store.KeyBlockEarliest, &b)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &b, true, nil
}

func (p *Pool) write(b *chain.ParentBlock) error {
	if err := store.PutJSON(p.st, store.KeyBlockHeight(b.Height), b); err != nil {
		return err
	}
	return store.PutJSON(p.st, store.KeyBlockEarliest, b)
}

func (p *Pool) deleteEarliest() error {
	return p.st.Delete(store.KeyBlockEarliest)
}

// Purge sets checkpoint as the pool's new floor and drops every persisted
// block below it except genesis at height 1 (spec.md §4.6 purge(checkpoint)).
func (p *Pool) Purge(checkpoint *chain.ParentBlock) error {
	p.checkpoint = checkpoint
	if checkpoint.Height < 2 {
		return nil
	}
	return p.PurgeFrom(checkpoint.Height-1, 1)
}

// PurgeFrom deletes bc.block.<i> for i from start down to end+1, inclusive
// of start, exclusive of end (spec.md §4.6 purge_from).
func (p *Pool) PurgeFrom(start, end uint64) error {
	for i := start; i > end; i-- {
		if err := p.st.Delete(store.KeyBlockHeight(i)); err != nil {
			return err
		}
	}
	return nil
}

// Repurge re-runs Purge against the checkpoint already in effect, the
// "enqueue blockpool.purge" step a failed resync takes (spec.md §4.4
// on_pubsub, state.resync.failed). Noop if no checkpoint has been set yet.
func (p *Pool) Repurge() error {
	if p.checkpoint == nil {
		return nil
	}
	return p.Purge(p.checkpoint)
}

// Add ingests a candidate block arriving during backward sync (spec.md
// §4.6). It requires a checkpoint to already be set via Purge.
func (p *Pool) Add(block *chain.ParentBlock) error {
	if p.checkpoint == nil {
		return errs.New(errs.KindValidation, "blockpool.Add", fmt.Errorf("no checkpoint set"))
	}

	earliest, haveEarliest, err := p.earliest()
	if err != nil {
		return err
	}

	if block.Hash == p.genesisHash {
		return nil
	}
	if haveEarliest && block.Hash == earliest.Hash {
		return nil
	}
	if !haveEarliest {
		return p.write(block)
	}

	if block.Hash == earliest.PreviousHash {
		switch {
		case block.PreviousHash == p.genesisHash:
			if err := p.write(block); err != nil {
				return err
			}
			p.bus.Publish(pubsub.TopicStateCheckpointEnd, pubsub.Message{Data: block})
			return p.deleteEarliest()
		case block.Height == 2:
			log.Warn("backward sync reached height 2 without reconnecting to genesis", "hash", block.Hash)
			p.bus.Publish(pubsub.TopicStateResyncFailed, pubsub.Message{Data: block})
			return p.deleteEarliest()
		default:
			if err := p.write(block); err != nil {
				return err
			}
			return p.flushCached(block)
		}
	}

	if block.Height < earliest.Height {
		p.cache[block.Hash] = block
		return nil
	}

	if err := p.write(block); err != nil {
		return err
	}
	return p.flushCached(block)
}

// flushCached re-feeds any cached block whose hash is the parent that
// newEarliest now expects, recursing so a whole cached run gets drained at
// once.
func (p *Pool) flushCached(newEarliest *chain.ParentBlock) error {
	parent, ok := p.cache[newEarliest.PreviousHash]
	if !ok {
		return nil
	}
	delete(p.cache, parent.Hash)
	return p.Add(parent)
}
