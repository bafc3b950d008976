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

// Package pubsub is the in-process lifecycle-event bus (spec.md §4.7),
// modeled on go-420coin's event.Feed/event.Subscription pattern (see its
// 420/peerset.go) but generalized from a fixed set of typed feeds to a
// free-form topic string, because spec.md §4.7 publishes under an open set
// of topic names rather than a small fixed handful.
package pubsub

import "sync"

// Listener receives a published Message.
type Listener func(Message)

// Handle unsubscribes a listener registered via Subscribe.
type Handle struct {
	bus   *Bus
	topic Topic
	id    uint64
}

// Unsubscribe removes the listener this handle was issued for. Safe to call
// more than once.
func (h Handle) Unsubscribe() {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	subs := h.bus.listeners[h.topic]
	for i, s := range subs {
		if s.id == h.id {
			h.bus.listeners[h.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type subscription struct {
	id     uint64
	listen Listener
}

// Bus is a synchronous, in-process topic bus: Publish calls every listener
// subscribed to a topic, in subscription order, on the publisher's
// goroutine. There is no backpressure and no delivery guarantee beyond
// that -- a slow listener stalls the publisher, so listeners must not block.
type Bus struct {
	mu        sync.Mutex
	listeners map[Topic][]subscription
	nextID    uint64
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[Topic][]subscription)}
}

// Subscribe registers listen to receive every Message published to topic,
// returning a Handle that can later unsubscribe it.
func (b *Bus) Subscribe(topic Topic, listen Listener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], subscription{id: id, listen: listen})
	return Handle{bus: b, topic: topic, id: id}
}

// Publish delivers msg to every listener subscribed to topic, synchronously
// and in subscription order.
func (b *Bus) Publish(topic Topic, msg Message) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.listeners[topic]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.listen(msg)
	}
}
