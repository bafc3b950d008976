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
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/pubsub"
)

// OnPubsub dispatches a bus delivery to the relevant state transition or
// persistence step (spec.md §4.4 on_pubsub).
func (e *Engine) OnPubsub(topic pubsub.Topic, msg pubsub.Message) {
	switch topic {
	case pubsub.TopicStateBlockHeight:
		e.storeHeight(msg)
	case pubsub.TopicUpdateBlockLatest:
		e.updateLatestAndStore(msg)
	case pubsub.TopicStateResyncFailed:
		e.peerIsResyncing = true
		e.enqueueWrite(func() {
			if err := e.pool.Repurge(); err != nil {
				log.Warn("blockpool repurge after failed resync", "err", err)
			}
		})
	case pubsub.TopicStateCheckpointEnd:
		e.peerIsResyncing = false
	}
}
