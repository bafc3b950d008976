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

package pubsub

// Topic is a free-form lifecycle-event name published across the engine
// (spec.md §6).
type Topic = string

const (
	TopicStateBlockHeight     Topic = "state.block.height"
	TopicUpdateBlockLatest    Topic = "update.block.latest"
	TopicUpdateCheckpointStart Topic = "update.checkpoint.start"
	TopicStateCheckpointEnd   Topic = "state.checkpoint.end"
	TopicStateResyncFailed    Topic = "state.resync.failed"
	TopicBlockMined           Topic = "block.mined"
)

// Message is the payload shape every topic above carries (spec.md §6).
type Message struct {
	Key        string
	Data       interface{}
	Force      bool
	Multiverse []interface{}
	Purge      *uint64
}
