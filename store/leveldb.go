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

package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/multiverse-labs/bcengine/internal/errs"
)

// LevelDB is the default on-disk Store backing, using this tree's own KV
// engine (the teacher ships its chain database on top of the same
// syndtr/goleveldb package).
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a LevelDB store rooted at dir,
// i.e. the BC_DATA_DIR path of spec.md §6.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errs.New(errs.KindPersistence, "open "+dir, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Put(key string, value []byte) error {
	if err := l.db.Put([]byte(key), value, nil); err != nil {
		return errs.New(errs.KindPersistence, "put "+key, err)
	}
	return nil
}

func (l *LevelDB) Get(key string) ([]byte, error) {
	v, err := l.db.Get([]byte(key), nil)
	if err == errors.ErrNotFound {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.New(errs.KindPersistence, "get "+key, err)
	}
	return v, nil
}

func (l *LevelDB) GetMany(keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		v, err := l.Get(k)
		if err != nil && err != errs.ErrNotFound {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (l *LevelDB) Delete(key string) error {
	if err := l.db.Delete([]byte(key), nil); err != nil {
		return errs.New(errs.KindPersistence, "delete "+key, err)
	}
	return nil
}

func (l *LevelDB) Close() error { return l.db.Close() }
