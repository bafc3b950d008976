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

// Package store defines the ordered key/value persistence interface the
// engine, block pool, and multiverse drain into (spec.md §4, "Persistence
// interface"), plus a LevelDB-backed and an in-memory implementation.
package store

import "github.com/multiverse-labs/bcengine/internal/errs"

// Store is a single-writer, ordered key/value store over strings mapping
// to JSON-encoded values (spec.md §6 lists the concrete key layout).
type Store interface {
	// Put writes value (already JSON-encoded) under key.
	Put(key string, value []byte) error
	// Get reads the value stored at key, or errs.ErrNotFound.
	Get(key string) ([]byte, error)
	// GetMany batches single-key gets; a missing key's slot is nil rather
	// than failing the whole batch.
	GetMany(keys []string) ([][]byte, error)
	// Delete removes key; deleting a missing key is not an error.
	Delete(key string) error
	// Close releases any underlying file handles.
	Close() error
}

// GetJSON reads and JSON-decodes the value at key into out.
func GetJSON(s Store, key string, out interface{}) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	return unmarshal(raw, out)
}

// PutJSON JSON-encodes v and writes it at key.
func PutJSON(s Store, key string, v interface{}) error {
	raw, err := marshal(v)
	if err != nil {
		return errs.New(errs.KindPersistence, "marshal "+key, err)
	}
	return s.Put(key, raw)
}
