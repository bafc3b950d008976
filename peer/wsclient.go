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
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/internal/errs"
)

// rpcID is fixed per spec.md §6 ("id always 42").
const rpcID = 42

type rpcRequest struct {
	ID     int           `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// WSClient is a gorilla/websocket-backed JSON-RPC Client, one call in
// flight at a time over a single long-lived connection.
type WSClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial opens a websocket connection to addr and returns a Client against it.
func Dial(ctx context.Context, addr string) (*WSClient, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, errs.New(errs.KindProtocol, "peer.Dial "+addr, err)
	}
	return &WSClient{conn: conn}, nil
}

func (c *WSClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	t0 := time.Now()
	callGauge.Update(callGauge.Value() + 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	}

	err := c.doCall(method, params, out)
	newCallTimer(method, err == nil).Update(time.Since(t0))
	callServingTimer.Update(time.Since(t0))
	if err != nil {
		failedCallGauge.Update(failedCallGauge.Value() + 1)
		return err
	}
	successfulCallGauge.Update(successfulCallGauge.Value() + 1)
	return nil
}

func (c *WSClient) doCall(method string, params []interface{}, out interface{}) error {
	req := rpcRequest{ID: rpcID, Method: method, Params: params}
	if err := c.conn.WriteJSON(req); err != nil {
		return errs.New(errs.KindProtocol, "peer."+method+" write", err)
	}

	var resp rpcResponse
	if err := c.conn.ReadJSON(&resp); err != nil {
		return errs.New(errs.KindProtocol, "peer."+method+" read", err)
	}
	if resp.ID != rpcID {
		return errs.New(errs.KindProtocol, "peer."+method, fmt.Errorf("unexpected response id %d", resp.ID))
	}
	if resp.Error != "" {
		return errs.New(errs.KindProtocol, "peer."+method, fmt.Errorf("%s", resp.Error))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return errs.New(errs.KindProtocol, "peer."+method+" decode", err)
	}
	return nil
}

// GetHeaders returns the serialized blocks in the inclusive range
// [from, to] (spec.md §6, resolving spec.md §9(i) in favor of returning the
// serialized payload). Rejected client-side if the span exceeds maxRange.
func (c *WSClient) GetHeaders(ctx context.Context, from, to HeightHash) ([]*chain.ParentBlock, error) {
	if to.Height < from.Height {
		return nil, errs.New(errs.KindProtocol, "peer.GetHeaders", fmt.Errorf("to_height %d below from_height %d", to.Height, from.Height))
	}
	if to.Height-from.Height > maxRange {
		return nil, errs.New(errs.KindProtocol, "peer.GetHeaders", fmt.Errorf("range %d exceeds max %d", to.Height-from.Height, maxRange))
	}

	var blocks []*chain.ParentBlock
	params := []interface{}{
		[]interface{}{from.Height, from.Hash},
		[]interface{}{to.Height, to.Hash},
	}
	if err := c.call(ctx, "getHeaders", params, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// GetLatestHeader returns the peer's single current tip.
func (c *WSClient) GetLatestHeader(ctx context.Context) (*chain.ParentBlock, error) {
	var blocks []*chain.ParentBlock
	if err := c.call(ctx, "getLatestHeader", nil, &blocks); err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, errs.New(errs.KindProtocol, "peer.GetLatestHeader", fmt.Errorf("empty response"))
	}
	return blocks[0], nil
}

// GetLatestHeaders returns up to min(count, maxRange) most recent blocks.
func (c *WSClient) GetLatestHeaders(ctx context.Context, count int) ([]*chain.ParentBlock, error) {
	if count > maxRange {
		count = maxRange
	}
	var blocks []*chain.ParentBlock
	if err := c.call(ctx, "getLatestHeaders", []interface{}{count}, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// GetMultiverse returns up to the 7 most recent blocks the peer holds.
func (c *WSClient) GetMultiverse(ctx context.Context) ([]*chain.ParentBlock, error) {
	var blocks []*chain.ParentBlock
	if err := c.call(ctx, "getMultiverse", nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Query asks the peer for heights [max(1,low) .. min(high, latest.height)]
// iff its block at queryHeight has hash queryHash (spec.md §6).
func (c *WSClient) Query(ctx context.Context, req QueryRequest) ([]*chain.ParentBlock, error) {
	var blocks []*chain.ParentBlock
	params := []interface{}{map[string]interface{}{
		"queryHash":   req.QueryHash,
		"queryHeight": req.QueryHeight,
		"low":         req.Low,
		"high":        req.High,
	}}
	if err := c.call(ctx, "query", params, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Close releases the underlying connection.
func (c *WSClient) Close() error {
	return c.conn.Close()
}
