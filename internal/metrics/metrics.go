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

// Package metrics is a tiny in-process registry of named counters, gauges
// and timers. There is no exporter here (metrics front-ends, like the
// JSON-RPC front-end, are out of scope) -- callers dump the registry
// through the log package when they need a snapshot.
package metrics

import (
	"sync"
	"time"
)

type Counter struct {
	mu  sync.Mutex
	val int64
}

func (c *Counter) Inc(delta int64) {
	c.mu.Lock()
	c.val += delta
	c.mu.Unlock()
}

func (c *Counter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

type Gauge struct {
	mu  sync.Mutex
	val float64
}

func (g *Gauge) Update(v float64) {
	g.mu.Lock()
	g.val = v
	g.mu.Unlock()
}

func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.val
}

type Timer struct {
	mu      sync.Mutex
	count   int64
	total   time.Duration
}

func (t *Timer) Update(d time.Duration) {
	t.mu.Lock()
	t.count++
	t.total += d
	t.mu.Unlock()
}

func (t *Timer) Mean() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return 0
	}
	return t.total / time.Duration(t.count)
}

var (
	registryMu sync.Mutex
	counters   = map[string]*Counter{}
	gauges     = map[string]*Gauge{}
	timers     = map[string]*Timer{}
)

// NewRegisteredCounter registers (or returns the existing) counter by name.
func NewRegisteredCounter(name string, _ interface{}) *Counter {
	registryMu.Lock()
	defer registryMu.Unlock()
	if c, ok := counters[name]; ok {
		return c
	}
	c := &Counter{}
	counters[name] = c
	return c
}

// NewRegisteredGauge registers (or returns the existing) gauge by name.
func NewRegisteredGauge(name string, _ interface{}) *Gauge {
	registryMu.Lock()
	defer registryMu.Unlock()
	if g, ok := gauges[name]; ok {
		return g
	}
	g := &Gauge{}
	gauges[name] = g
	return g
}

// GetOrRegisterTimer registers (or returns the existing) timer by name.
func GetOrRegisterTimer(name string, _ interface{}) *Timer {
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := timers[name]; ok {
		return t
	}
	t := &Timer{}
	timers[name] = t
	return t
}

// NewRegisteredTimer is an alias of GetOrRegisterTimer kept for call-site
// symmetry with NewRegisteredCounter/NewRegisteredGauge.
func NewRegisteredTimer(name string, meta interface{}) *Timer {
	return GetOrRegisterTimer(name, meta)
}

// Snapshot returns a point-in-time copy of every registered metric's value,
// keyed by name, for diagnostic dumps.
func Snapshot() map[string]interface{} {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make(map[string]interface{}, len(counters)+len(gauges)+len(timers))
	for k, c := range counters {
		out[k] = c.Count()
	}
	for k, g := range gauges {
		out[k] = g.Value()
	}
	for k, t := range timers {
		out[k] = t.Mean().String()
	}
	return out
}
