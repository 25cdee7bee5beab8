// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// applyStage rolls consensus back to the stage's fork point and
// replays the stage's blocks on top, producing a ForkEvent on
// success. The caller (StageAdd) holds e.mu already.
func (e *Engine) applyStage() (*StateUpdate, error) {
	forkHeight := e.stageForkHeight
	if forkHeight == 0 {
		forkHeight = 1
	}

	// Spec §3: "the chain cannot be rolled back to lengths below
	// snapshot.height". Reject the whole apply before mutating anything
	// if reaching for this fork point would cross below an installed
	// snapshot's height while disagreeing with it.
	if e.snapshot != nil {
		snapHeight := primitives.Height(e.snapshot.Height)
		if forkHeight <= snapHeight {
			stageHeader, ok := e.stage.headerAt(snapHeight)
			if !ok || identityHash(stageHeader) != e.snapshot.Hash {
				return nil, chainerr.NewHeightError(chainerr.ELeaderMismatch, uint32(snapHeight))
			}
		}
	}

	e.state = StateRollback
	reentered := e.rollbackConsensusTo(forkHeight - 1)

	var removed []primitives.TxId
	for h := forkHeight; h <= e.stage.length(); h++ {
		body := e.stageBodies[h-1]
		header, _ := e.stage.headerAt(h)
		target := header.Target(h, e.params.V2ActivationHeight)

		undo, err := e.validateAndApplyBody(h, body, target, &e.consensus, e.bodies, true)
		if err != nil {
			e.stage.truncate(h-1, func(ht primitives.Height) primitives.Target { return e.undos[ht].target })
			e.stageBodies = e.stageBodies[:h-1]
			return nil, err
		}
		e.consensus.append(header, target)
		e.bodies = append(e.bodies, body)
		e.undos[h] = *undo
		removed = append(removed, undo.txIds...)
	}

	event := &ForkEvent{
		ForkHeight: forkHeight,
		Worksum:    e.consensus.worksum,
	}
	if last, ok := e.consensus.headerAt(e.consensus.length()); ok {
		event.NewHead = last
	}
	batchStart := int(forkHeight-1) / primitives.MaxBatchSize
	event.GridSuffix = e.consensus.grid[minInt(batchStart, len(e.consensus.grid)):]

	e.bumpToken()
	return &StateUpdate{Fork: event, RemovedMined: removed, ReenteredPool: reentered}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rollbackConsensusTo undoes every applied height above keep (down to
// keep+1), reversing balances, retiring accounts that only that
// height introduced, pruning the replay cache and history, and
// re-queuing still-valid transfers into the mempool. It returns the
// transfers that re-entered the pool.
func (e *Engine) rollbackConsensusTo(keep primitives.Height) []primitives.TransferTx {
	if keep >= e.consensus.length() {
		return nil
	}

	var reentered []primitives.TransferTx
	newPinStart := e.pinWindowStart(keep)

	for h := e.consensus.length(); h > keep; h-- {
		undo, ok := e.undos[h]
		if !ok {
			continue
		}
		for id, delta := range undo.balanceDeltas {
			if acc, ok := e.accounts.get(id); ok {
				acc.balance -= uint64(delta)
			}
		}
		for i, addr := range undo.newAccounts {
			e.accounts.removeIfCreatedAt(addr, undo.newAccountIDs[i])
		}
		for _, t := range undo.transfersSpent {
			if t.Id.PinHeight >= newPinStart {
				e.mempool.Put(t)
				reentered = append(reentered, t)
			}
		}
		delete(e.undos, h)
	}

	e.replay.PruneAboveExclusive(keep + 1)
	e.pruneHistoryAbove(keep)

	e.consensus.descriptor++
	e.consensus.truncate(keep, func(ht primitives.Height) primitives.Target { return e.undos[ht].target })
	if int(keep) < len(e.bodies) {
		e.bodies = e.bodies[:keep]
	}
	return reentered
}

// pruneHistoryAbove removes every per-account history entry recorded
// at a height above keep.
func (e *Engine) pruneHistoryAbove(keep primitives.Height) {
	for id, entries := range e.history {
		kept := entries[:0:0]
		for _, entry := range entries {
			if entry.height <= keep {
				kept = append(kept, entry)
			}
		}
		e.history[id] = kept
	}
}
