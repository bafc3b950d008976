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

package clock

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errQueryFailed = errors.New("query failed")

func TestNowSIsNowMsDividedByThousand(t *testing.T) {
	c := New(func() (int64, error) { return 0, nil }, 0)
	ms := c.NowMs()
	require.Equal(t, ms/1000, c.NowS())
}

func TestNowMsNeverMovesBackwards(t *testing.T) {
	c := New(func() (int64, error) { return 0, nil }, 0)
	first := c.NowMs()

	// Simulate a large negative offset correction; NowMs must still never
	// report less than the highest value it has already returned.
	atomic.StoreInt64(&c.offsetMs, -1_000_000)
	second := c.NowMs()

	require.GreaterOrEqual(t, second, first)
}

func TestOffsetReflectsLastAppliedCorrection(t *testing.T) {
	c := New(func() (int64, error) { return 0, nil }, 0)
	atomic.StoreInt64(&c.offsetMs, 250)
	require.Equal(t, int64(250), c.Offset())
}

func TestStartStopRunsAdjusterAtLeastOnce(t *testing.T) {
	var calls int64
	c := New(func() (int64, error) {
		atomic.AddInt64(&calls, 1)
		return 42, nil
	}, 5*time.Millisecond)

	c.Start()
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&calls) > 0
	}, time.Second, 5*time.Millisecond)
	c.Stop()

	require.Equal(t, int64(42), c.Offset())
}

func TestStartIsIdempotentUntilStop(t *testing.T) {
	c := New(func() (int64, error) { return 0, nil }, time.Hour)
	c.Start()
	first := c.stop
	c.Start() // no-op, must not replace the running loop's channel
	require.Equal(t, first, c.stop)
	c.Stop()
}

func TestStopIsSafeWithoutStart(t *testing.T) {
	c := New(func() (int64, error) { return 0, nil }, time.Hour)
	c.Stop() // must not panic or block
}

func TestQueryErrorLeavesOffsetUnchanged(t *testing.T) {
	c := New(func() (int64, error) { return 0, errQueryFailed }, 5*time.Millisecond)
	atomic.StoreInt64(&c.offsetMs, 99)

	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Stop()

	require.Equal(t, int64(99), c.Offset())
}
