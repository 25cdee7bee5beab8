// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool holds pending transfer transactions: a map from
// TxId to transaction, sorted by fee on each Top call for block
// template generation; no separate fee index is kept. ChainEngine is the only
// caller; the package itself holds no actor state of its own.
package mempool

import (
	"sort"
	"sync"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// Mempool is a set of pending transfers, keyed by TxId.
// An entry is only valid while its PinHeight lies in the replay
// window; ChainEngine is responsible for evicting stale entries on
// every chain-length change (spec §3 "An entry is valid only while
// pinHeight lies in the replay window").
type Mempool struct {
	mu      sync.RWMutex
	entries map[primitives.TxId]primitives.TransferTx
}

// New returns an empty mempool.
func New() *Mempool {
	return &Mempool{entries: make(map[primitives.TxId]primitives.TransferTx)}
}

// Put inserts or replaces tx. Callers must have already validated it
// (signature, pin, nonce, balance) via ChainEngine.put_mempool.
func (m *Mempool) Put(tx primitives.TransferTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tx.Id] = tx
}

// Get looks up a single pending transaction.
func (m *Mempool) Get(id primitives.TxId) (primitives.TransferTx, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.entries[id]
	return tx, ok
}

// Remove evicts id, e.g. once it has been mined into a block.
func (m *Mempool) Remove(id primitives.TxId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// Contains reports whether id is currently pending.
func (m *Mempool) Contains(id primitives.TxId) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[id]
	return ok
}

// Len returns the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// EvictBelow removes every entry whose PinHeight no longer lies in
// the replay window [minPin, ...]; called by ChainEngine whenever the
// consensus chain advances (spec §3 "valid only while pinHeight lies
// in the replay window").
func (m *Mempool) EvictBelow(minPin primitives.Height) []primitives.TransferTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	var evicted []primitives.TransferTx
	for id, tx := range m.entries {
		if id.PinHeight < minPin {
			evicted = append(evicted, tx)
			delete(m.entries, id)
		}
	}
	return evicted
}

// Top returns up to n pending transactions ordered by fee descending,
// for get_mining's block template assembly (spec §4.1 get_mining:
// "top-N mempool txs sorted by fee").
func (m *Mempool) Top(n int) []primitives.TransferTx {
	m.mu.RLock()
	all := make([]primitives.TransferTx, 0, len(m.entries))
	for _, tx := range m.entries {
		all = append(all, tx)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Fee != all[j].Fee {
			return all[i].Fee > all[j].Fee
		}
		return all[i].Id.Less(all[j].Id)
	})
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// All returns every pending transaction, for get_mempool(limit) and
// debugging dumps, ordered deterministically by TxId.
func (m *Mempool) All() []primitives.TransferTx {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]primitives.TransferTx, 0, len(m.entries))
	for _, tx := range m.entries {
		all = append(all, tx)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Id.Less(all[j].Id) })
	return all
}
