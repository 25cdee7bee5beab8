// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// firstDiffer returns the first height (1-based) at which a and b
// disagree, or min(len(a),len(b))+1 if one is a prefix of the other.
func firstDiffer(a, b []primitives.Header) primitives.Height {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if identityHash(a[i]) != identityHash(b[i]) {
			return primitives.Height(i + 1)
		}
	}
	return primitives.Height(n + 1)
}

// StageSet installs a new candidate header-only chain, replacing
// whatever the stage previously held. It validates every header's
// proof of work, difficulty, and linkage self-consistently (as a
// candidate chain in its own right), keeps whatever stage bodies
// still apply to the shared prefix with the incoming headers, and
// reports the lowest height a caller must now fetch a body for.
func (e *Engine) StageSet(headers []primitives.Header) (primitives.Height, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var candidate headerChain
	for i, h := range headers {
		height := primitives.Height(i + 1)
		if height == 1 {
			if !h.PrevHash.IsZero() {
				return 0, chainerr.NewHeightError(chainerr.EHeaderLink, uint32(height))
			}
		} else {
			prev, _ := candidate.headerAt(height - 1)
			if h.PrevHash != identityHash(prev) {
				return 0, chainerr.NewHeightError(chainerr.EHeaderLink, uint32(height))
			}
		}
		wantTarget := nextTarget(&candidate, e.params)
		gotTarget := h.Target(height, e.params.V2ActivationHeight)
		if gotTarget.Bytes() != wantTarget.Bytes() {
			return 0, chainerr.NewHeightError(chainerr.EDifficulty, uint32(height))
		}
		serialized := h.Serialize()
		if !gotTarget.Compatible(e.hasher.PowHash(serialized, height)) {
			return 0, chainerr.NewHeightError(chainerr.EPow, uint32(height))
		}
		candidate.append(h, gotTarget)
	}

	common := firstDiffer(e.stage.headers, headers)
	keepBodies := int(common) - 1
	if keepBodies > len(e.stageBodies) {
		keepBodies = len(e.stageBodies)
	}
	if keepBodies < 0 {
		keepBodies = 0
	}
	e.stageBodies = e.stageBodies[:keepBodies]
	e.stage = candidate
	e.stageForkHeight = firstDiffer(e.consensus.headers, candidate.headers)

	return primitives.Height(keepBodies + 1), nil
}

// StageAdd appends consecutively-ordered blocks onto the stage chain
// established by the most recent StageSet, verifying each body
// against the already-validated stage header at that height. If the
// resulting stage worksum exceeds consensus, it is atomically applied
// via applyStage.
func (e *Engine) StageAdd(blocks []primitives.Block) (*StateUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateStaging
	for _, blk := range blocks {
		height := blk.Height.Value()
		want := primitives.Height(len(e.stageBodies) + 1)
		if height != want {
			e.state = StateSteady
			return nil, chainerr.NewHeightError(chainerr.EBatchHeight, uint32(height))
		}
		stageHeader, ok := e.stage.headerAt(height)
		if !ok || identityHash(stageHeader) != identityHash(blk.Header) {
			e.state = StateSteady
			return nil, chainerr.NewHeightError(chainerr.EBadMismatch, uint32(height))
		}
		if !blk.VerifyMerkle(chainhash.HashFunc) {
			e.state = StateSteady
			return nil, chainerr.NewHeightError(chainerr.EMerkleRoot, uint32(height))
		}
		e.stageBodies = append(e.stageBodies, blk.Body)
	}

	if e.stage.worksum.GreaterThan(e.consensus.worksum) {
		update, err := e.applyStage()
		e.state = StateSteady
		return update, err
	}
	e.state = StateSteady
	return &StateUpdate{}, nil
}
