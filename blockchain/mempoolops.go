// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/crypto"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/wire"
)

// PutMempool canonicalizes and admits a single pending transfer,
// returning the hash identifying it.
func (e *Engine) PutMempool(tx primitives.TransferTx) (chainhash.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	length := e.consensus.length()
	pinStart := e.pinWindowStart(length)
	if tx.Id.PinHeight < pinStart || tx.Id.PinHeight > length {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.EPinHeight, uint32(length))
	}
	pinHeader, ok := e.consensus.headerAt(tx.Id.PinHeight)
	if !ok || tx.PinHash != identityHash(pinHeader) {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.EPinHeight, uint32(length))
	}
	if e.replay.Contains(tx.Id) || e.mempool.Contains(tx.Id) {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.ENonce, uint32(length))
	}

	digest := chainhash.HashFunc(tx.Serialize())
	addr, err := crypto.RecoverAddress(tx.Signature, digest)
	if err != nil {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.ECorruptedSig, uint32(length))
	}
	from, ok := e.accounts.get(tx.Id.AccountId)
	if !ok || from.address != addr {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.ECorruptedSig, uint32(length))
	}
	if from.balance < tx.Amount+tx.Fee {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.EInsufficientFunds, uint32(length))
	}
	if _, ok := e.accounts.get(tx.ToAccount); !ok {
		return chainhash.Hash{}, chainerr.NewHeightError(chainerr.EInvAccount, uint32(length))
	}

	e.mempool.Put(tx)
	return digest, nil
}

// SetSignedSnapshot installs snap as the new advisory finality marker
// if its priority exceeds the one currently held, rolling consensus
// back if snap is incompatible with the chain as it stands.
func (e *Engine) SetSignedSnapshot(snap wire.SignedSnapshot) (*StateUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if snap.Priority <= e.snapshotPriority {
		return nil, chainerr.NewHeightError(chainerr.ELowPriority, snap.Height)
	}
	e.snapshot = &snap
	e.snapshotPriority = snap.Priority

	header, ok := e.consensus.headerAt(primitives.Height(snap.Height))
	if ok && identityHash(header) == snap.Hash {
		e.bumpToken()
		return &StateUpdate{}, nil
	}

	target := primitives.Height(snap.Height)
	if target == 0 {
		target = 1
	}
	reentered := e.rollbackConsensusTo(target - 1)
	e.bumpToken()

	event := &ForkEvent{ForkHeight: target}
	if last, ok := e.consensus.headerAt(e.consensus.length()); ok {
		event.NewHead = last
	}
	return &StateUpdate{Fork: event, ReenteredPool: reentered}, nil
}

// Snapshot returns the currently installed signed snapshot, if any.
func (e *Engine) Snapshot() (wire.SignedSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return wire.SignedSnapshot{}, false
	}
	return *e.snapshot, true
}
