// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// buildShadowChain drives a second, independent Engine through height
// blocks (each a simple reward to a freshly derived address), returning
// it so its headers/bodies can be fed into another Engine's
// StageSet/StageAdd as a candidate fork.
func buildShadowChain(t *testing.T, seedBase byte, height int) *Engine {
	t.Helper()
	shadow := newTestEngine()
	for i := 0; i < height; i++ {
		addr := testKey(t, seedBase+byte(i)).Address()
		blk := buildBlock(shadow, rewardBody(shadow, addr, 100))
		if _, err := shadow.AppendMined(blk); err != nil {
			t.Fatalf("shadow AppendMined(height %d): %v", i+1, err)
		}
	}
	return shadow
}

// TestStageAddAppliesHeavierFork covers S3: a stage chain with more
// accumulated work than consensus replaces it, rolling consensus back
// to the fork point and replaying the stage's blocks.
func TestStageAddAppliesHeavierFork(t *testing.T) {
	e := newTestEngine()
	addrA := testKey(t, 1).Address()
	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, addrA, 1000))); err != nil {
		t.Fatalf("AppendMined(genesis): %v", err)
	}

	// A two-block shadow chain forking at height 1 carries strictly more
	// work than consensus's single block under regnet's flat genesis
	// difficulty.
	shadow := buildShadowChain(t, 50, 2)

	var headers []primitives.Header
	var blocks []primitives.Block
	for h := primitives.Height(1); h <= 2; h++ {
		hdr, ok := shadow.GetHeader(h)
		if !ok {
			t.Fatalf("shadow missing header at height %d", h)
		}
		headers = append(headers, hdr)
		blk, ok := shadow.GetBlock(h)
		if !ok {
			t.Fatalf("shadow missing block at height %d", h)
		}
		blocks = append(blocks, blk)
	}

	fetchFrom, err := e.StageSet(headers)
	if err != nil {
		t.Fatalf("StageSet: %v", err)
	}
	if fetchFrom != 1 {
		t.Fatalf("StageSet fetchFrom = %d, want 1 (fork at the very first height)", fetchFrom)
	}

	update, err := e.StageAdd(blocks)
	if err != nil {
		t.Fatalf("StageAdd: %v", err)
	}
	if update.Fork == nil || update.Fork.ForkHeight != 1 {
		t.Fatalf("expected a ForkEvent at height 1, got %+v", update.Fork)
	}

	height, head, ok := e.Head()
	if !ok || height != 2 {
		t.Fatalf("Head after fork = height %d ok=%v, want 2", height, ok)
	}
	wantHead, _ := shadow.GetHeader(2)
	if identityHash(head) != identityHash(wantHead) {
		t.Fatal("post-fork consensus tip does not match the winning stage chain")
	}

	// addrA only existed on the losing chain; after rollback its account
	// must be gone.
	if _, ok := e.GetBalanceByAddress(addrA); ok {
		t.Fatal("losing-fork account survived a rollback it should have undone")
	}
}

// TestStageAddReplayCacheReflectsAppliedTransfers covers invariant 7:
// once a stage fork carrying a transfer applies, that transfer's TxId
// must be in the replay cache (applied), not the mempool (pending).
func TestStageAddReplayCacheReflectsAppliedTransfers(t *testing.T) {
	e := newTestEngine()
	addrA := testKey(t, 1).Address()
	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, addrA, 1000))); err != nil {
		t.Fatalf("AppendMined(genesis): %v", err)
	}

	shadow := newTestEngine()
	bobPriv := testKey(t, 60)
	bob := bobPriv.Address()
	carol := testKey(t, 61).Address()

	blk1 := buildBlock(shadow, rewardBody(shadow, bob, 1000))
	if _, err := shadow.AppendMined(blk1); err != nil {
		t.Fatalf("shadow AppendMined(height 1): %v", err)
	}
	bobBal, _ := shadow.GetBalanceByAddress(bob)
	genesisHash, _ := shadow.GetHash(1)

	carolBody := rewardBody(shadow, carol, 0)
	// carol's pending account id is assigned sequentially in the order
	// NewAccounts is processed; carolBody introduces exactly one new
	// account, so it is shadow.accounts.next before this block applies.
	carolID := shadow.accounts.next
	tx := signedTransfer(bobPriv, bobBal.AccountId, 1, genesisHash, carolID, 100, 1, 1)
	carolBody.Transfers = append(carolBody.Transfers, tx)

	blk2 := buildBlock(shadow, carolBody)
	if _, err := shadow.AppendMined(blk2); err != nil {
		t.Fatalf("shadow AppendMined(height 2): %v", err)
	}

	var headers []primitives.Header
	var blocks []primitives.Block
	for h := primitives.Height(1); h <= 2; h++ {
		hdr, _ := shadow.GetHeader(h)
		headers = append(headers, hdr)
		blk, _ := shadow.GetBlock(h)
		blocks = append(blocks, blk)
	}

	if _, err := e.StageSet(headers); err != nil {
		t.Fatalf("StageSet: %v", err)
	}
	update, err := e.StageAdd(blocks)
	if err != nil {
		t.Fatalf("StageAdd: %v", err)
	}
	if update.Fork == nil {
		t.Fatal("expected the heavier shadow chain to fork consensus")
	}

	pending, applied := e.LookupTx(tx.Id)
	if pending {
		t.Fatal("a transfer applied via a stage fork must not remain pending in the mempool")
	}
	if !applied {
		t.Fatal("a transfer applied via a stage fork must be recorded in the replay cache")
	}
}

