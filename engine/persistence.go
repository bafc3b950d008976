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
	"errors"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/internal/errs"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/pubsub"
	"github.com/multiverse-labs/bcengine/store"
)

func blockFromMessage(msg pubsub.Message) (*chain.ParentBlock, bool) {
	b, ok := msg.Data.(*chain.ParentBlock)
	return b, ok
}

// storeHeight persists a block at its height key, flagging and still
// writing orphans rather than rejecting them (spec.md §4.4 store_height).
func (e *Engine) storeHeight(msg pubsub.Message) {
	b, ok := blockFromMessage(msg)
	if !ok || b.Height < 2 {
		return
	}

	e.enqueueWrite(func() {
		if msg.Force {
			if err := store.PutJSON(e.st, store.KeyBlockHeight(b.Height), b); err != nil {
				log.Warn("store_height forced put failed", "height", b.Height, "err", err)
			}
			return
		}

		var parent chain.ParentBlock
		err := store.GetJSON(e.st, store.KeyBlockHeight(b.Height-1), &parent)
		matches := err == nil && parent.Hash == b.PreviousHash && parent.TotalDistanceBig().Cmp(b.TotalDistanceBig()) < 0

		if !matches {
			log.Warn("store_height: orphan block", "height", b.Height, "hash", b.Hash)
		}
		if err := store.PutJSON(e.st, store.KeyBlockHeight(b.Height), b); err != nil {
			log.Warn("store_height put failed", "height", b.Height, "err", err)
		}
	})
}

// updateLatestAndStore advances the canonical tip, draining a forced
// multiverse snapshot and purge request when present (spec.md §4.4
// update_latest_and_store).
func (e *Engine) updateLatestAndStore(msg pubsub.Message) {
	b, ok := blockFromMessage(msg)
	if !ok {
		return
	}

	e.enqueueWrite(func() {
		var prevLatest chain.ParentBlock
		err := store.GetJSON(e.st, store.KeyBlockLatest, &prevLatest)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			log.Warn("update_latest_and_store read bc.block.latest failed", "err", err)
		}
		havePrev := err == nil

		persist := msg.Force || (havePrev && prevLatest.Hash == b.PreviousHash)
		if persist && (!havePrev || b.TimestampS >= prevLatest.TimestampS) {
			if err := store.PutJSON(e.st, store.KeyBlockHeight(b.Height), b); err != nil {
				log.Warn("update_latest_and_store put height failed", "err", err)
			}
			if err := store.PutJSON(e.st, store.KeyBlockLatest, b); err != nil {
				log.Warn("update_latest_and_store put latest failed", "err", err)
			}
		}

		if msg.Force && len(msg.Multiverse) > 0 {
			e.drainMultiverseSnapshot(msg.Multiverse)
		}
		if msg.Force && msg.Purge != nil && b.Height >= 1 {
			if err := e.pool.PurgeFrom(b.Height-1, *msg.Purge); err != nil {
				log.Warn("update_latest_and_store purge_from failed", "err", err)
			}
		}
	})
}

func (e *Engine) drainMultiverseSnapshot(snapshot []interface{}) {
	for len(snapshot) > 0 {
		item := snapshot[len(snapshot)-1]
		snapshot = snapshot[:len(snapshot)-1]

		blk, ok := item.(*chain.ParentBlock)
		if !ok {
			continue
		}
		if err := store.PutJSON(e.st, store.KeyBlockHeight(blk.Height), blk); err != nil {
			log.Warn("update_latest_and_store drain multiverse failed", "height", blk.Height, "err", err)
		}
	}
}
