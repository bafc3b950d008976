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
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/multiverse-labs/bcengine/blockpool"
	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/clock"
	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/multiverse"
	"github.com/multiverse-labs/bcengine/peer"
	"github.com/multiverse-labs/bcengine/pubsub"
	"github.com/multiverse-labs/bcengine/rovers"
	"github.com/multiverse-labs/bcengine/store"
)

const testGenesisHash = "test-genesis"

// branch builds a hash-linked, IsValidBlock-clean chain of n blocks,
// mirroring multiverse_test.go's helper of the same shape.
func branch(tag string, n int, distance int64, startHeight uint64, prevHash string, prevTotal int64, startTS int64) []*chain.ParentBlock {
	out := make([]*chain.ParentBlock, 0, n)
	total := prevTotal
	ts := startTS
	prev := prevHash
	for i := 0; i < n; i++ {
		h := startHeight + uint64(i)
		total += distance
		b := &chain.ParentBlock{
			PreviousHash:  prev,
			Height:        h,
			MerkleRoot:    common.H(fmt.Sprintf("%s.%d", tag, h)),
			Distance:      common.BigToHex(big.NewInt(distance)),
			TotalDistance: common.BigToHex(big.NewInt(total)),
			TimestampS:    ts,
			BlockchainHeaders: rovers.ChildHeaderMap{
				rovers.BTC: []rovers.ChildHeader{{
					Chain: rovers.BTC,
					Hash:  common.H(fmt.Sprintf("%s.%d.tip", tag, h)),
				}},
			},
		}
		b.Hash = b.ComputeHash()
		out = append(out, b)
		prev = b.Hash
		ts++
	}
	return out
}

func newTestEngine(t *testing.T, peerClient peer.Client) (*Engine, store.Store, *pubsub.Bus) {
	t.Helper()
	st := store.NewMemory()
	bus := pubsub.New()
	pool := blockpool.New(st, bus, testGenesisHash)
	mv := multiverse.New()
	clk := clock.New(func() (int64, error) { return 0, nil }, 0)
	e := New(st, bus, pool, mv, peerClient, clk, Options{MinerKey: "miner-key"})
	return e, st, bus
}

// flush blocks until every write enqueued before this call has run.
func (e *Engine) flush() {
	done := make(chan struct{})
	e.enqueueWrite(func() { close(done) })
	<-done
}

func TestStoreHeightWritesMatchingBlock(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	root := branch("root", 2, 10, 1, testGenesisHash, 0, 1000)
	require.NoError(t, store.PutJSON(st, store.KeyBlockHeight(1), root[0]))

	e.storeHeight(pubsub.Message{Data: root[1]})
	e.flush()

	var got chain.ParentBlock
	require.NoError(t, store.GetJSON(st, store.KeyBlockHeight(2), &got))
	require.Equal(t, root[1].Hash, got.Hash)
}

// TestStoreHeightStillWritesOrphan covers spec.md §8 scenario 4: an
// unconnected block at h is still persisted, just flagged as an orphan.
func TestStoreHeightStillWritesOrphan(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	unrelated := branch("unrelated", 1, 10, 1, testGenesisHash, 0, 1000)[0]
	orphan := branch("orphan", 1, 10, 2, "not-unrelated-hash", 0, 1001)[0]
	require.NoError(t, store.PutJSON(st, store.KeyBlockHeight(1), unrelated))

	e.storeHeight(pubsub.Message{Data: orphan})
	e.flush()

	var got chain.ParentBlock
	require.NoError(t, store.GetJSON(st, store.KeyBlockHeight(2), &got))
	require.Equal(t, orphan.Hash, got.Hash)
}

func TestStoreHeightNoopBelowHeightTwo(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	genesis := branch("root", 1, 10, 1, testGenesisHash, 0, 1000)[0]

	e.storeHeight(pubsub.Message{Data: genesis})
	e.flush()

	_, err := st.Get(store.KeyBlockHeight(1))
	require.Error(t, err)
}

func TestUpdateLatestAndStorePersistsOnMatch(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	root := branch("root", 2, 10, 1, testGenesisHash, 0, 1000)
	require.NoError(t, store.PutJSON(st, store.KeyBlockLatest, root[0]))

	e.updateLatestAndStore(pubsub.Message{Data: root[1]})
	e.flush()

	var got chain.ParentBlock
	require.NoError(t, store.GetJSON(st, store.KeyBlockLatest, &got))
	require.Equal(t, root[1].Hash, got.Hash)
}

func TestUpdateLatestAndStoreSkipsUnrelatedBlock(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	root := branch("root", 1, 10, 1, testGenesisHash, 0, 1000)[0]
	unrelated := branch("other", 1, 10, 5, "nowhere", 0, 2000)[0]
	require.NoError(t, store.PutJSON(st, store.KeyBlockLatest, root))

	e.updateLatestAndStore(pubsub.Message{Data: unrelated})
	e.flush()

	var got chain.ParentBlock
	require.NoError(t, store.GetJSON(st, store.KeyBlockLatest, &got))
	require.Equal(t, root.Hash, got.Hash)
}

func TestUpdateLatestAndStoreForcePurges(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	root := branch("root", 5, 10, 1, testGenesisHash, 0, 1000)
	for _, b := range root {
		require.NoError(t, store.PutJSON(st, store.KeyBlockHeight(b.Height), b))
	}
	tip := root[len(root)-1]
	purgeEnd := uint64(2)

	e.updateLatestAndStore(pubsub.Message{Data: tip, Force: true, Purge: &purgeEnd})
	e.flush()

	_, err := st.Get(store.KeyBlockHeight(3))
	require.Error(t, err)
	_, err = st.Get(store.KeyBlockHeight(2))
	require.NoError(t, err)
}

func TestOnPubsubDispatchesToStoreHeight(t *testing.T) {
	e, st, bus := newTestEngine(t, nil)
	root := branch("root", 2, 10, 1, testGenesisHash, 0, 1000)
	require.NoError(t, store.PutJSON(st, store.KeyBlockHeight(1), root[0]))

	bus.Publish(pubsub.TopicStateBlockHeight, pubsub.Message{Data: root[1]})
	e.flush()

	var got chain.ParentBlock
	require.NoError(t, store.GetJSON(st, store.KeyBlockHeight(2), &got))
	require.Equal(t, root[1].Hash, got.Hash)
}

// TestOnPeerBlockSwitchesTip covers spec.md §8 scenario 3 (preemption): a
// peer block that changes the fork-choice winner stops mining and
// publishes an unforced update.
func TestOnPeerBlockSwitchesTip(t *testing.T) {
	e, _, bus := newTestEngine(t, nil)
	root := branch("root", 2, 10, 1, testGenesisHash, 0, 1000)
	for _, b := range root {
		e.mv.Add(b, true)
	}

	var received []pubsub.Message
	bus.Subscribe(pubsub.TopicUpdateBlockLatest, func(m pubsub.Message) { received = append(received, m) })

	heavier := branch("heavier", 1, 1000, root[1].Height+1, root[1].Hash, 70, 2000)[0]
	e.OnPeerBlock(context.Background(), heavier)

	require.Len(t, received, 1)
	require.False(t, received[0].Force)
	got, _ := received[0].Data.(*chain.ParentBlock)
	require.Equal(t, heavier.Hash, got.Hash)
}

// TestOnPeerBlockDropsDuplicate covers the known_blocks_cache short-circuit.
func TestOnPeerBlockDropsDuplicate(t *testing.T) {
	e, _, bus := newTestEngine(t, nil)
	root := branch("root", 2, 10, 1, testGenesisHash, 0, 1000)
	for _, b := range root {
		e.mv.Add(b, true)
	}

	calls := 0
	bus.Subscribe(pubsub.TopicUpdateBlockLatest, func(m pubsub.Message) { calls++ })

	heavier := branch("heavier", 1, 1000, root[1].Height+1, root[1].Hash, 70, 2000)[0]
	e.OnPeerBlock(context.Background(), heavier)
	e.OnPeerBlock(context.Background(), heavier)

	require.Equal(t, 1, calls)
}

type fakePeerClient struct {
	blocks []*chain.ParentBlock
}

func (f *fakePeerClient) GetHeaders(ctx context.Context, from, to peer.HeightHash) ([]*chain.ParentBlock, error) {
	return f.blocks, nil
}
func (f *fakePeerClient) GetLatestHeader(ctx context.Context) (*chain.ParentBlock, error) {
	return f.blocks[len(f.blocks)-1], nil
}
func (f *fakePeerClient) GetLatestHeaders(ctx context.Context, count int) ([]*chain.ParentBlock, error) {
	return f.blocks, nil
}
func (f *fakePeerClient) GetMultiverse(ctx context.Context) ([]*chain.ParentBlock, error) {
	return f.blocks, nil
}
func (f *fakePeerClient) Query(ctx context.Context, req peer.QueryRequest) ([]*chain.ParentBlock, error) {
	var out []*chain.ParentBlock
	for _, b := range f.blocks {
		if b.Height >= req.Low && b.Height <= req.High {
			out = append(out, b)
		}
	}
	return out, nil
}
func (f *fakePeerClient) Close() error { return nil }

// TestOnPeerBlockBackwardSyncAdoptsDominatingChain covers spec.md §8
// scenario 3's continuation: a disconnected, strictly dominating peer
// block triggers a query for the gap and the resulting chain is adopted.
func TestOnPeerBlockBackwardSyncAdoptsDominatingChain(t *testing.T) {
	root := branch("root", 7, 10, 1, testGenesisHash, 0, 1000)
	farChain := branch("far", 9, 50, 1, testGenesisHash, 0, 5000)
	farTip := farChain[len(farChain)-1]

	fake := &fakePeerClient{blocks: farChain[:len(farChain)-1]}
	e, st, bus := newTestEngine(t, fake)
	for _, b := range root {
		require.NoError(t, store.PutJSON(st, store.KeyBlockHeight(b.Height), b))
		e.mv.Add(b, true)
	}

	var updates []pubsub.Message
	bus.Subscribe(pubsub.TopicUpdateBlockLatest, func(m pubsub.Message) { updates = append(updates, m) })

	e.OnPeerBlock(context.Background(), farTip)

	require.Len(t, updates, 1)
	require.True(t, updates[0].Force)

	require.Equal(t, farTip.Hash, e.mv.Highest(e.depth).Hash)
}

// TestOnPeerBlockRoutesToBlockpoolDuringResync covers the other half of
// spec.md §8 scenario 3: once backwardSync has set a checkpoint,
// on_peer_block must feed arriving blocks into blockpool.Pool.Add rather
// than the multiverse, until the pool itself reports the gap closed or
// failed.
func TestOnPeerBlockRoutesToBlockpoolDuringResync(t *testing.T) {
	e, st, bus := newTestEngine(t, nil)
	root := branch("root", 2, 10, 1, testGenesisHash, 0, 1000)
	for _, b := range root {
		e.mv.Add(b, true)
	}
	before := e.mv.Highest(e.depth)

	checkpoint := branch("checkpoint", 1, 10, 5, "checkpoint-parent", 0, 4000)[0]
	require.NoError(t, e.pool.Purge(checkpoint))
	e.peerIsResyncing = true

	var updates []pubsub.Message
	bus.Subscribe(pubsub.TopicUpdateBlockLatest, func(m pubsub.Message) { updates = append(updates, m) })

	gapBlock := branch("gap", 1, 10, 3, testGenesisHash, 0, 1500)[0]
	e.OnPeerBlock(context.Background(), gapBlock)

	require.Empty(t, updates)
	require.Equal(t, before.Hash, e.mv.Highest(e.depth).Hash)

	var got chain.ParentBlock
	require.NoError(t, store.GetJSON(st, store.KeyBlockEarliest, &got))
	require.Equal(t, gapBlock.Hash, got.Hash)
}

// TestEventsChannelDefersEngineStateMutation covers the goroutine-safety
// fix behind Engine.Events: a closure enqueued from a foreign goroutine
// (standing in for miner/handle.go's readLoop) must not touch engine state
// until the single caller goroutine actually drains it.
func TestEventsChannelDefersEngineStateMutation(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	e.unfinishedBlock = &chain.ParentBlock{Hash: "pending"}

	applied := make(chan struct{})
	go func() {
		e.enqueueEvent(func() {
			e.unfinishedBlock = nil
			close(applied)
		})
	}()

	select {
	case <-applied:
		t.Fatal("enqueued closure ran before the caller goroutine drained Events()")
	case <-time.After(20 * time.Millisecond):
	}
	require.NotNil(t, e.unfinishedBlock)

	fn := <-e.Events()
	fn()
	<-applied
	require.Nil(t, e.unfinishedBlock)
}
