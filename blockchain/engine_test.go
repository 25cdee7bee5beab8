// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/warthog-network/node/internal/staging/primitives"
)

func TestAppendMinedGenesisAndSecondBlock(t *testing.T) {
	e := newTestEngine()

	alice := testKey(t, 1).Address()
	blk1 := buildBlock(e, rewardBody(e, alice, 5000))

	update, err := e.AppendMined(blk1)
	if err != nil {
		t.Fatalf("AppendMined(genesis): %v", err)
	}
	if update.Append == nil || update.Append.Height != 1 {
		t.Fatalf("expected AppendEvent at height 1, got %+v", update.Append)
	}

	bal, ok := e.GetBalanceByAddress(alice)
	if !ok || bal.Balance != 5000 {
		t.Fatalf("alice balance = %+v, ok=%v, want 5000", bal, ok)
	}

	tokenAfterFirst := e.InvalidationToken()
	if tokenAfterFirst == 0 {
		t.Fatal("InvalidationToken did not bump on append_mined")
	}

	bob := testKey(t, 2).Address()
	blk2 := buildBlock(e, rewardBody(e, bob, 2500))
	if _, err := e.AppendMined(blk2); err != nil {
		t.Fatalf("AppendMined(height 2): %v", err)
	}

	if e.InvalidationToken() == tokenAfterFirst {
		t.Fatal("InvalidationToken did not bump on second append_mined")
	}

	height, head, ok := e.Head()
	if !ok || height != 2 {
		t.Fatalf("Head height = %v, ok=%v, want 2", height, ok)
	}
	if head.PrevHash != identityHash(mustHeader(e, 1)) {
		t.Fatal("second header's PrevHash does not chain to the first (invariant 3)")
	}
}

// TestAppendMinedRejectsBadHeight covers append_mined's height-ordering
// guard (spec §4.1): a block proposed out of sequence is rejected
// without mutating state.
func TestAppendMinedRejectsBadHeight(t *testing.T) {
	e := newTestEngine()
	addr := testKey(t, 1).Address()
	blk := buildBlock(e, rewardBody(e, addr, 1000))
	blk.Height = primitives.MustNonzeroHeight(5)

	if _, err := e.AppendMined(blk); err == nil {
		t.Fatal("expected an error for a block proposed at the wrong height")
	}
	if height, _, ok := e.Head(); ok || height != 0 {
		t.Fatalf("rejected block must not mutate chain state, head height = %v ok=%v", height, ok)
	}
}

// TestAppendMinedRejectsBrokenLinkage covers invariant 3 (prevHash must
// chain to the identity hash of the preceding header).
func TestAppendMinedRejectsBrokenLinkage(t *testing.T) {
	e := newTestEngine()
	addr := testKey(t, 1).Address()
	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, addr, 1000))); err != nil {
		t.Fatalf("AppendMined(genesis): %v", err)
	}

	bob := testKey(t, 2).Address()
	blk2 := buildBlock(e, rewardBody(e, bob, 1000))
	blk2.Header.PrevHash[0] ^= 0xFF // corrupt linkage

	if _, err := e.AppendMined(blk2); err == nil {
		t.Fatal("expected EHeaderLink for a corrupted PrevHash")
	}
}

// TestWorksumEqualsSumOfBlockWork covers invariant 1: the chain's
// cumulative worksum must equal the sum of each applied block's
// target-derived work, independent of how it was accumulated
// incrementally.
func TestWorksumEqualsSumOfBlockWork(t *testing.T) {
	e := newTestEngine()
	addr := testKey(t, 1).Address()

	for i := 0; i < 5; i++ {
		blk := buildBlock(e, rewardBody(e, addr, 100))
		if _, err := e.AppendMined(blk); err != nil {
			t.Fatalf("AppendMined(height %d): %v", i+1, err)
		}
	}

	_, length, worksum, _ := e.GetGrid()
	if length != 5 {
		t.Fatalf("length = %v, want 5", length)
	}

	var want primitives.Worksum
	for h := primitives.Height(1); h <= length; h++ {
		hdr, ok := e.GetHeader(h)
		if !ok {
			t.Fatalf("missing header at height %d", h)
		}
		want = want.AddHeader(hdr.Target(h, e.params.V2ActivationHeight))
	}
	if want.Bytes() != worksum.Bytes() {
		t.Fatalf("worksum %x does not equal the sum of per-block work %x", worksum.Bytes(), want.Bytes())
	}
}

func mustHeader(e *Engine, h primitives.Height) primitives.Header {
	hdr, ok := e.GetHeader(h)
	if !ok {
		panic("missing header")
	}
	return hdr
}
