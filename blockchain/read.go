// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sort"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// GetHeader returns the consensus header at height, if it has been
// applied.
func (e *Engine) GetHeader(height primitives.Height) (primitives.Header, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consensus.headerAt(height)
}

// GetHash returns the identity hash of the consensus header at height.
func (e *Engine) GetHash(height primitives.Height) (chainhash.Hash, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.consensus.headerAt(height)
	if !ok {
		return chainhash.Hash{}, false
	}
	return identityHash(h), true
}

// GetBlock returns the full consensus block (header plus body) at
// height.
func (e *Engine) GetBlock(height primitives.Height) (primitives.Block, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	header, ok := e.consensus.headerAt(height)
	if !ok || int(height) > len(e.bodies) {
		return primitives.Block{}, false
	}
	return primitives.Block{
		Height: primitives.MustNonzeroHeight(height),
		Header: header,
		Body:   e.bodies[height-1],
	}, true
}

// Head returns the consensus tip's height and header.
func (e *Engine) Head() (primitives.Height, primitives.Header, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	height := e.consensus.length()
	header, ok := e.consensus.headerAt(height)
	return height, header, ok
}

// GetGrid returns the consensus chain's descripted state: its
// fork-incrementing descriptor, length, cumulative worksum, and grid
// summary, as handed out in Init/BatchRep handshakes.
func (e *Engine) GetGrid() (descriptor uint32, length primitives.Height, worksum primitives.Worksum, grid primitives.Grid) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consensus.descriptor, e.consensus.length(), e.consensus.worksum, e.consensus.grid
}

// Balance is an account's identity and current spendable balance.
type Balance struct {
	AccountId primitives.AccountId
	Address   primitives.Address
	Balance   uint64
}

// GetBalanceByAccount looks a balance up by AccountId.
func (e *Engine) GetBalanceByAccount(id primitives.AccountId) (Balance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	acc, ok := e.accounts.get(id)
	if !ok {
		return Balance{}, false
	}
	return Balance{AccountId: id, Address: acc.address, Balance: acc.balance}, true
}

// GetBalanceByAddress looks a balance up by Address.
func (e *Engine) GetBalanceByAddress(addr primitives.Address) (Balance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, ok := e.accounts.lookup(addr)
	if !ok {
		return Balance{}, false
	}
	acc, _ := e.accounts.get(id)
	return Balance{AccountId: id, Address: addr, Balance: acc.balance}, true
}

// HistoryEntry is one line of get_history's response: which height and
// transaction the balance change came from, and the signed delta from
// the queried account's perspective.
type HistoryEntry struct {
	Height primitives.Height
	TxHash chainhash.Hash
	Delta  int64
}

// GetHistory returns account's activity log, most recent first,
// stopping once limit entries have been emitted (limit <= 0 means no
// limit).
func (e *Engine) GetHistory(id primitives.AccountId, limit int) []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := e.history[id]
	out := make([]HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, HistoryEntry{Height: entries[i].height, TxHash: entries[i].txHash, Delta: entries[i].delta})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// GetMempool returns up to limit pending transfers, highest fee first
// (limit <= 0 means no cap).
func (e *Engine) GetMempool(limit int) []primitives.TransferTx {
	e.mu.Lock()
	defer e.mu.Unlock()
	if limit <= 0 {
		return e.mempool.All()
	}
	return e.mempool.Top(limit)
}

// GetTxCache reports which TxIds are currently either pending in the
// mempool or still inside the replay window, for lookup_tx-style
// clients deciding whether a submission already landed.
func (e *Engine) GetTxCache() []primitives.TxId {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]primitives.TxId, 0, e.mempool.Len())
	for _, tx := range e.mempool.All() {
		out = append(out, tx.Id)
	}
	for h := e.pinWindowStart(e.consensus.length()); h <= e.consensus.length(); h++ {
		out = append(out, e.replay.IdsAt(h)...)
	}
	return out
}

// LookupTx reports whether id is pending in the mempool, has been
// applied (is in the replay cache), or is unknown.
func (e *Engine) LookupTx(id primitives.TxId) (pending, applied bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mempool.Contains(id), e.replay.Contains(id)
}

// GetRichlist returns the top limit accounts by balance, descending,
// ties broken by AccountId for a stable ordering.
func (e *Engine) GetRichlist(limit int) []Balance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Balance, 0, len(e.accounts.byID))
	for id, acc := range e.accounts.byID {
		out = append(out, Balance{AccountId: id, Address: acc.address, Balance: acc.balance})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].AccountId < out[j].AccountId
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
