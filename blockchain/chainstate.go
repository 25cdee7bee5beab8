// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// ChainState is the per-engine state machine spec §4.1 names: STEADY
// most of the time, STAGING while stage_add is assembling a
// candidate, ROLLBACK for the duration of apply_stage's undo phase.
type ChainState int

const (
	StateSteady ChainState = iota
	StateStaging
	StateRollback
)

func (s ChainState) String() string {
	switch s {
	case StateSteady:
		return "STEADY"
	case StateStaging:
		return "STAGING"
	case StateRollback:
		return "ROLLBACK"
	default:
		return "UNKNOWN"
	}
}

// headerChain is an in-memory, append-only-until-rolled-back run of
// headers plus the cumulative worksum and grid summary spec §3
// "Descripted chain state" describes. Index i holds the header at
// height i+1 (height 0, the genesis reference point, is never
// stored).
type headerChain struct {
	descriptor uint32
	headers    []primitives.Header
	worksum    primitives.Worksum
	grid       primitives.Grid
}

func (c *headerChain) length() primitives.Height { return primitives.Height(len(c.headers)) }

func (c *headerChain) headerAt(h primitives.Height) (primitives.Header, bool) {
	if h == 0 || int(h) > len(c.headers) {
		return primitives.Header{}, false
	}
	return c.headers[h-1], true
}

// identityHash is the chain-linkage hash used for PrevHash checks and
// Grid entries (spec §8 invariant 3), independent of which PoW
// generation produced the header.
func identityHash(h primitives.Header) chainhash.Hash {
	b := h.Serialize()
	return chainhash.HashFunc(b[:])
}

func (c *headerChain) append(h primitives.Header, target primitives.Target) {
	c.headers = append(c.headers, h)
	c.worksum = c.worksum.AddHeader(target)
	if b, ok := c.batchAt(c.length()); ok {
		c.grid = c.grid.AppendBatch(b, identityHash)
	}
}

// batchAt reconstructs the Batch ending at length, used only to feed
// Grid.AppendBatch when length lands on a batch boundary.
func (c *headerChain) batchAt(length primitives.Height) (primitives.Batch, bool) {
	if length == 0 || length%primitives.MaxBatchSize != 0 {
		return primitives.Batch{}, false
	}
	start := length - primitives.MaxBatchSize + 1
	hdrs := make([]primitives.Header, primitives.MaxBatchSize)
	copy(hdrs, c.headers[start-1:length])
	b, err := primitives.NewBatch(primitives.MustNonzeroHeight(start), hdrs)
	if err != nil {
		return primitives.Batch{}, false
	}
	return b, true
}

// truncate drops every header past keep (keep may be 0), rebuilding
// the grid and worksum from scratch; only used on rollback where the
// engine also has each dropped header's target at hand via undo.
func (c *headerChain) truncate(keep primitives.Height, targets func(primitives.Height) primitives.Target) {
	if int(keep) >= len(c.headers) {
		return
	}
	c.headers = c.headers[:keep]
	var ws primitives.Worksum
	var grid primitives.Grid
	for i := 1; i <= int(keep); i++ {
		ws = ws.AddHeader(targets(primitives.Height(i)))
		if i%primitives.MaxBatchSize == 0 {
			start := i - primitives.MaxBatchSize + 1
			hdrs := make([]primitives.Header, primitives.MaxBatchSize)
			copy(hdrs, c.headers[start-1:i])
			b, err := primitives.NewBatch(primitives.MustNonzeroHeight(primitives.Height(start)), hdrs)
			if err == nil {
				grid = grid.AppendBatch(b, identityHash)
			}
		}
	}
	c.worksum = ws
	c.grid = grid
}

// account is one row of the address table: the address it was
// introduced with and its current balance (spec §3 Body "address
// table (new accounts)").
type account struct {
	address primitives.Address
	balance uint64
}

// accountTable maps AccountId<->Address, assigning a fresh id the
// first time an address appears in an applied block (spec §3 Body).
type accountTable struct {
	byID      map[primitives.AccountId]*account
	byAddress map[primitives.Address]primitives.AccountId
	next      primitives.AccountId
}

func newAccountTable() *accountTable {
	return &accountTable{
		byID:      make(map[primitives.AccountId]*account),
		byAddress: make(map[primitives.Address]primitives.AccountId),
		next:      1,
	}
}

func (t *accountTable) lookup(addr primitives.Address) (primitives.AccountId, bool) {
	id, ok := t.byAddress[addr]
	return id, ok
}

func (t *accountTable) get(id primitives.AccountId) (*account, bool) {
	a, ok := t.byID[id]
	return a, ok
}

// create assigns a fresh AccountId to addr, or returns the existing
// one if addr is already known (idempotent, since a block may list a
// new-account only once but engine-side callers sometimes re-check).
func (t *accountTable) create(addr primitives.Address) primitives.AccountId {
	if id, ok := t.byAddress[addr]; ok {
		return id
	}
	id := t.next
	t.next++
	t.byID[id] = &account{address: addr}
	t.byAddress[addr] = id
	return id
}

func (t *accountTable) removeIfCreatedAt(addr primitives.Address, id primitives.AccountId) {
	if existing, ok := t.byAddress[addr]; ok && existing == id {
		delete(t.byAddress, addr)
		delete(t.byID, id)
		if t.next == id+1 {
			t.next = id
		}
	}
}

// historyEntry is one line of an account's activity log (spec §4.1
// get_history; §6.3 "AccountHistory(accountId, historyId)").
type historyEntry struct {
	height primitives.Height
	txHash chainhash.Hash
	delta  int64 // signed balance change from this account's perspective
}

// undoEntry captures everything needed to reverse applying one height:
// new accounts it introduced (so they can be un-created if nothing
// else references them), balance deltas to reverse, and the TxIds it
// added to the replay cache (spec §4.1 apply_stage rollback, §5 "undo
// log").
type undoEntry struct {
	newAccounts    []primitives.Address
	newAccountIDs  []primitives.AccountId
	balanceDeltas  map[primitives.AccountId]int64
	txIds          []primitives.TxId
	transfersSpent []primitives.TransferTx // re-mempooled on rollback
	target         primitives.Target
}
