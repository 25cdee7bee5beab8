// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database is the narrow storage handle the core uses to reach
// the persistence layer (spec §1, §6.3): a key/value store backed by
// goleveldb, namespaced by table prefix, with batch-based transactions
// so a ChainEngine mutation either commits entirely or leaves storage
// untouched (spec §5 "ChainEngine wraps each mutation in a single
// database transaction").
//
// The relational schema spec §6.3 sketches (Blocks, Consensus, State,
// History, AccountHistory, Badblocks, DeleteSchedule, Peers, Bans,
// Offenses) is realized here as key prefixes over a flat keyspace,
// the same simplification dcrd's own internal/staging/primitives
// comment on storage-agnostic callers encourages: the core only
// depends on the semantic Get/Put/Delete/Iterate operations named in
// §4.1, never on SQL.
package database

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// DB wraps a goleveldb handle.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if absent) a leveldb store at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying store.
func (db *DB) Close() error { return db.ldb.Close() }

// Tx is a single atomic read/write transaction. All writes staged
// through Put/Delete become visible together on Commit, or are
// discarded entirely when the Update callback returns an error (spec
// §5 per-mutation transaction).
type Tx struct {
	ldbTx *leveldb.Transaction
}

// Get reads key, returning (nil, nil) if absent.
func (tx *Tx) Get(key []byte) ([]byte, error) {
	v, err := tx.ldbTx.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return v, err
}

// Put writes key/value.
func (tx *Tx) Put(key, value []byte) error { return tx.ldbTx.Put(key, value, nil) }

// Delete removes key.
func (tx *Tx) Delete(key []byte) error { return tx.ldbTx.Delete(key, nil) }

// Iterate returns an iterator over all keys sharing prefix, in
// ascending key order. The caller must call Release.
func (tx *Tx) Iterate(prefix []byte) iterator.Iterator {
	return tx.ldbTx.NewIterator(util.BytesPrefix(prefix), nil)
}

// Update runs fn inside a fresh transaction, committing it if fn
// returns nil and rolling it back (discarding every staged write)
// otherwise.
func (db *DB) Update(fn func(tx *Tx) error) error {
	ldbTx, err := db.ldb.OpenTransaction()
	if err != nil {
		return err
	}
	if err := fn(&Tx{ldbTx: ldbTx}); err != nil {
		ldbTx.Discard()
		return err
	}
	return ldbTx.Commit()
}

// View runs fn against a read-only transaction snapshot; any writes
// fn stages are discarded regardless of its return value.
func (db *DB) View(fn func(tx *Tx) error) error {
	ldbTx, err := db.ldb.OpenTransaction()
	if err != nil {
		return err
	}
	defer ldbTx.Discard()
	return fn(&Tx{ldbTx: ldbTx})
}
