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
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/multiverse"
	"github.com/multiverse-labs/bcengine/store"
)

// Server answers the five peer RPC methods of spec.md §6 against local
// persistence and the in-memory multiverse.
type Server struct {
	st       store.Store
	mv       *multiverse.Multiverse
	upgrader websocket.Upgrader
}

// NewServer constructs a Server reading from st and mv.
func NewServer(st store.Store, mv *multiverse.Multiverse) *Server {
	return &Server{st: st, mv: mv, upgrader: websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}}
}

// ServeHTTP upgrades the connection and serves RPC calls on it until the
// peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("peer server upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var req rpcRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		result, err := s.dispatch(req.Method, req.Params)
		resp := rpcResponse{ID: req.ID}
		if err != nil {
			resp.Error = err.Error()
		} else {
			raw, marshalErr := json.Marshal(result)
			if marshalErr != nil {
				resp.Error = marshalErr.Error()
			} else {
				resp.Result = raw
			}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(method string, params []interface{}) (interface{}, error) {
	switch method {
	case "getHeaders":
		return s.getHeaders(params)
	case "getLatestHeader":
		return s.getLatestHeader()
	case "getLatestHeaders":
		return s.getLatestHeaders(params)
	case "getMultiverse":
		return s.getMultiverse()
	case "query":
		return s.query(params)
	default:
		return nil, errUnknownMethod(method)
	}
}

type errUnknownMethod string

func (e errUnknownMethod) Error() string { return "unknown method: " + string(e) }

func (s *Server) blockAt(height uint64) (*chain.ParentBlock, error) {
	var b chain.ParentBlock
	if err := store.GetJSON(s.st, store.KeyBlockHeight(height), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Server) latest() (*chain.ParentBlock, error) {
	var b chain.ParentBlock
	if err := store.GetJSON(s.st, store.KeyBlockLatest, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// getHeaders returns the serialized blocks of [from, to] inclusive,
// rejecting an oversized or backwards range or a hash mismatch at either
// endpoint (spec.md §6, §9(i)).
func (s *Server) getHeaders(params []interface{}) ([]*chain.ParentBlock, error) {
	if len(params) != 2 {
		return nil, errUnknownMethod("getHeaders: expected 2 params")
	}
	from, err := decodeHeightHash(params[0])
	if err != nil {
		return nil, err
	}
	to, err := decodeHeightHash(params[1])
	if err != nil {
		return nil, err
	}
	if to.Height < from.Height || to.Height-from.Height > maxRange {
		return nil, errUnknownMethod("getHeaders: range out of bounds")
	}

	out := make([]*chain.ParentBlock, 0, to.Height-from.Height+1)
	for h := from.Height; h <= to.Height; h++ {
		b, err := s.blockAt(h)
		if err != nil {
			continue
		}
		if h == from.Height && from.Hash != "" && b.Hash != from.Hash {
			return nil, errUnknownMethod("getHeaders: from_hash mismatch")
		}
		if h == to.Height && to.Hash != "" && b.Hash != to.Hash {
			return nil, errUnknownMethod("getHeaders: to_hash mismatch")
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Server) getLatestHeader() ([]*chain.ParentBlock, error) {
	b, err := s.latest()
	if err != nil {
		return nil, err
	}
	return []*chain.ParentBlock{b}, nil
}

func (s *Server) getLatestHeaders(params []interface{}) ([]*chain.ParentBlock, error) {
	count := maxRange
	if len(params) == 1 {
		if n, ok := asInt(params[0]); ok {
			count = n
		}
	}
	if count > maxRange {
		count = maxRange
	}

	tip, err := s.latest()
	if err != nil {
		return nil, err
	}
	out := make([]*chain.ParentBlock, 0, count)
	for h := tip.Height; h > 0 && len(out) < count; h-- {
		b, err := s.blockAt(h)
		if err != nil {
			break
		}
		out = append(out, b)
	}
	return out, nil
}

// getMultiverse returns up to the 7 most recent blocks this node holds in
// its fork graph (spec.md §6).
func (s *Server) getMultiverse() ([]*chain.ParentBlock, error) {
	highest := s.mv.Highest(0)
	if highest == nil {
		return nil, nil
	}
	out := make([]*chain.ParentBlock, 0, 7)
	h := highest.Height
	for i := 0; i < 7 && h > 0; i++ {
		b, err := s.blockAt(h)
		if err != nil {
			break
		}
		out = append(out, b)
		h--
	}
	return out, nil
}

func (s *Server) query(params []interface{}) ([]*chain.ParentBlock, error) {
	if len(params) != 1 {
		return nil, errUnknownMethod("query: expected 1 param")
	}
	req, err := decodeQueryRequest(params[0])
	if err != nil {
		return nil, err
	}

	at, err := s.blockAt(req.QueryHeight)
	if err != nil || at.Hash != req.QueryHash {
		return nil, nil
	}

	tip, err := s.latest()
	if err != nil {
		return nil, err
	}
	low := req.Low
	if low < 1 {
		low = 1
	}
	high := req.High
	if high > tip.Height {
		high = tip.Height
	}

	var out []*chain.ParentBlock
	for h := low; h <= high; h++ {
		b, err := s.blockAt(h)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeHeightHash(v interface{}) (HeightHash, error) {
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return HeightHash{}, errUnknownMethod("malformed [height, hash] pair")
	}
	height, _ := asInt(pair[0])
	hash, _ := pair[1].(string)
	return HeightHash{Height: uint64(height), Hash: hash}, nil
}

func decodeQueryRequest(v interface{}) (QueryRequest, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return QueryRequest{}, errUnknownMethod("malformed query request")
	}
	hash, _ := m["queryHash"].(string)
	height, _ := asInt(m["queryHeight"])
	low, _ := asInt(m["low"])
	high, _ := asInt(m["high"])
	return QueryRequest{QueryHash: hash, QueryHeight: uint64(height), Low: uint64(low), High: uint64(high)}, nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
