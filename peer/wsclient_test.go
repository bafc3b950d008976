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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/multiverse-labs/bcengine/chain"
)

// fakeServer answers every RPC call in this package with a single
// preconfigured block, enough to exercise the request/response framing
// without standing up a full node.
func fakeServer(t *testing.T, block *chain.ParentBlock) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := rpcResponse{ID: req.ID}
			raw, err := marshalBlocks(block)
			require.NoError(t, err)
			resp.Result = raw
			require.NoError(t, conn.WriteJSON(resp))
		}
	}))
}

func marshalBlocks(b *chain.ParentBlock) ([]byte, error) {
	return json.Marshal([]*chain.ParentBlock{b})
}

func TestWSClientGetLatestHeader(t *testing.T) {
	block := &chain.ParentBlock{Hash: "abc", Height: 9}
	srv := fakeServer(t, block)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	addr := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer client.Close()

	got, err := client.GetLatestHeader(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc", got.Hash)
	require.Equal(t, uint64(9), got.Height)
}

func TestWSClientGetHeadersRejectsOversizedRange(t *testing.T) {
	client := &WSClient{}
	_, err := client.GetHeaders(context.Background(), HeightHash{Height: 1}, HeightHash{Height: 200000})
	require.Error(t, err)
}
