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

// Package clock provides a monotonic, NTP-corrected wall clock in
// milliseconds (spec.md §4.1).
package clock

import (
	"sync/atomic"
	"time"

	"github.com/multiverse-labs/bcengine/internal/log"
)

// QueryFunc returns the signed offset, in milliseconds, the local wall
// clock should be adjusted by. Injectable for tests; defaults to a real
// SNTP query.
type QueryFunc func() (offsetMs int64, err error)

// Clock exposes now_ms/now_s/offset and a background NTP adjuster
// (spec.md §4.1). Adjustments never move now_ms backwards relative to the
// previous reading: each correction is stored in full (Offset reports it),
// and after a backward one NowMs keeps returning the highest value it has
// already returned until wall time plus offset passes it.
type Clock struct {
	offsetMs int64 // atomic
	lastSeen int64 // atomic, the highest now_ms ever returned

	query    QueryFunc
	interval time.Duration
	log      *log.Logger

	stop chan struct{}
	done chan struct{}
}

// New constructs a Clock. A nil query defaults to DefaultNTPQuery.
func New(query QueryFunc, interval time.Duration) *Clock {
	if query == nil {
		query = DefaultNTPQuery
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Clock{query: query, interval: interval, log: log.New("component", "clock")}
}

// NowMs returns wall_ms + offset, never less than the previously returned
// value (monotonic-friendly to callers even across NTP corrections).
func (c *Clock) NowMs() int64 {
	wall := time.Now().UnixNano() / int64(time.Millisecond)
	now := wall + atomic.LoadInt64(&c.offsetMs)
	for {
		last := atomic.LoadInt64(&c.lastSeen)
		if now <= last {
			return last
		}
		if atomic.CompareAndSwapInt64(&c.lastSeen, last, now) {
			return now
		}
	}
}

// NowS returns NowMs()/1000.
func (c *Clock) NowS() int64 { return c.NowMs() / 1000 }

// Offset returns the current NTP correction in milliseconds.
func (c *Clock) Offset() int64 { return atomic.LoadInt64(&c.offsetMs) }

// Start launches the background NTP adjuster. Safe to call once; a second
// call is a no-op until Stop.
func (c *Clock) Start() {
	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop()
}

// Stop halts the background adjuster and waits for it to exit.
func (c *Clock) Stop() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
}

func (c *Clock) loop() {
	defer close(c.done)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			offset, err := c.query()
			if err != nil {
				c.log.Warn("ntp query failed", "err", err)
				continue
			}
			atomic.StoreInt64(&c.offsetMs, offset)
		}
	}
}
