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

package peer

import (
	"context"
	"fmt"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/multiverse"
	"github.com/multiverse-labs/bcengine/rovers"
	"github.com/multiverse-labs/bcengine/store"
)

func blockAt(h uint64, prevHash string, distance int64) *chain.ParentBlock {
	b := &chain.ParentBlock{
		PreviousHash:  prevHash,
		Height:        h,
		MerkleRoot:    common.H(fmt.Sprintf("merkle.%d", h)),
		Distance:      common.BigToHex(big.NewInt(distance)),
		TotalDistance: common.BigToHex(big.NewInt(distance * int64(h))),
		TimestampS:    1000 + int64(h),
		BlockchainHeaders: rovers.ChildHeaderMap{
			rovers.BTC: []rovers.ChildHeader{{Chain: rovers.BTC, Hash: common.H(fmt.Sprintf("tip.%d", h))}},
		},
	}
	b.Hash = b.ComputeHash()
	return b
}

func newTestServer(t *testing.T, n int) (*Server, []*chain.ParentBlock) {
	t.Helper()
	st := store.NewMemory()
	mv := multiverse.New()

	var blocks []*chain.ParentBlock
	prev := "genesis"
	for h := uint64(1); h <= uint64(n); h++ {
		b := blockAt(h, prev, 10)
		require.NoError(t, store.PutJSON(st, store.KeyBlockHeight(h), b))
		mv.Add(b, true)
		blocks = append(blocks, b)
		prev = b.Hash
	}
	require.NoError(t, store.PutJSON(st, store.KeyBlockLatest, blocks[len(blocks)-1]))
	return NewServer(st, mv), blocks
}

func dialTestServer(t *testing.T, srv *Server) *WSClient {
	t.Helper()
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)

	wsAddr := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	c, err := Dial(context.Background(), wsAddr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestServerGetLatestHeader(t *testing.T) {
	srv, blocks := newTestServer(t, 3)
	c := dialTestServer(t, srv)

	got, err := c.GetLatestHeader(context.Background())
	require.NoError(t, err)
	require.Equal(t, blocks[2].Hash, got.Hash)
}

func TestServerGetHeadersInclusiveRange(t *testing.T) {
	srv, blocks := newTestServer(t, 5)
	c := dialTestServer(t, srv)

	got, err := c.GetHeaders(context.Background(), HeightHash{Height: 2}, HeightHash{Height: 4})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, blocks[1].Hash, got[0].Hash)
	require.Equal(t, blocks[3].Hash, got[2].Hash)
}

func TestServerQueryRejectsMismatchedHash(t *testing.T) {
	srv, _ := newTestServer(t, 5)
	c := dialTestServer(t, srv)

	got, err := c.Query(context.Background(), QueryRequest{QueryHash: "wrong", QueryHeight: 3, Low: 1, High: 5})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestServerQueryReturnsWindow(t *testing.T) {
	srv, blocks := newTestServer(t, 5)
	c := dialTestServer(t, srv)

	got, err := c.Query(context.Background(), QueryRequest{QueryHash: blocks[4].Hash, QueryHeight: 5, Low: 2, High: 4})
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestServerGetMultiverseReturnsUpToSeven(t *testing.T) {
	srv, blocks := newTestServer(t, 10)
	c := dialTestServer(t, srv)

	got, err := c.GetMultiverse(context.Background())
	require.NoError(t, err)
	require.LessOrEqual(t, len(got), 7)
	require.Equal(t, blocks[9].Hash, got[0].Hash)
}
