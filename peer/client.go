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

// Package peer is the engine's outbound RPC client, used during backward
// sync to fetch ranges of canonical blocks from another node (spec.md §6),
// and the inbound Server that answers the same methods for other nodes.
package peer

import (
	"context"

	"github.com/multiverse-labs/bcengine/chain"
)

// HeightHash pins a range endpoint to both a height and the hash expected
// there, so a mismatched responder can be rejected client-side.
type HeightHash struct {
	Height uint64
	Hash   string
}

// QueryRequest is the payload of the query RPC method (spec.md §6).
type QueryRequest struct {
	QueryHash   string
	QueryHeight uint64
	Low         uint64
	High        uint64
}

// maxRange is the largest inclusive height span any RPC method will return
// or request in one call (spec.md §6).
const maxRange = 100000

// Client is the set of RPC methods the engine's backward-sync path calls
// against a peer (spec.md §6). Spec.md §9(i) resolves the source's dropped
// serialization bug: GetHeaders always returns the serialized blocks.
type Client interface {
	GetHeaders(ctx context.Context, from, to HeightHash) ([]*chain.ParentBlock, error)
	GetLatestHeader(ctx context.Context) (*chain.ParentBlock, error)
	GetLatestHeaders(ctx context.Context, count int) ([]*chain.ParentBlock, error)
	GetMultiverse(ctx context.Context) ([]*chain.ParentBlock, error)
	Query(ctx context.Context, req QueryRequest) ([]*chain.ParentBlock, error)
	Close() error
}
