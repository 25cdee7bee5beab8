// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/wire"
)

// buildTwoBlockChain mines two simple reward blocks onto a fresh
// engine and returns it alongside the two account addresses credited.
func buildTwoBlockChain(t *testing.T, seedBase byte) (*Engine, primitives.Address, primitives.Address) {
	t.Helper()
	e := newTestEngine()
	a := testKey(t, seedBase).Address()
	b := testKey(t, seedBase+1).Address()
	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, a, 1000))); err != nil {
		t.Fatalf("AppendMined(height 1): %v", err)
	}
	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, b, 2000))); err != nil {
		t.Fatalf("AppendMined(height 2): %v", err)
	}
	return e, a, b
}

// TestSetSignedSnapshotAgreeingIsANoop covers the case where the
// advisory snapshot matches the chain as it already stands: priority is
// accepted but nothing is rolled back.
func TestSetSignedSnapshotAgreeingIsANoop(t *testing.T) {
	e, _, _ := buildTwoBlockChain(t, 10)
	height1Hash, _ := e.GetHash(1)

	update, err := e.SetSignedSnapshot(wire.SignedSnapshot{Height: 1, Hash: height1Hash, Priority: 1})
	if err != nil {
		t.Fatalf("SetSignedSnapshot: %v", err)
	}
	if update.Fork != nil {
		t.Fatalf("an agreeing snapshot must not fork, got %+v", update.Fork)
	}
	if height, _, _ := e.Head(); height != 2 {
		t.Fatalf("chain height changed on an agreeing snapshot: %d", height)
	}
}

// TestSetSignedSnapshotForcesRollback covers S4: a signed snapshot
// whose claimed hash disagrees with the chain forces a rollback to
// below the disputed height.
func TestSetSignedSnapshotForcesRollback(t *testing.T) {
	e, a, _ := buildTwoBlockChain(t, 20)

	var bogus chainhash.Hash
	bogus[0] = 0xAB
	update, err := e.SetSignedSnapshot(wire.SignedSnapshot{Height: 1, Hash: bogus, Priority: 1})
	if err != nil {
		t.Fatalf("SetSignedSnapshot: %v", err)
	}
	if update.Fork == nil || update.Fork.ForkHeight != 1 {
		t.Fatalf("expected a rollback to height 1's predecessor, got %+v", update.Fork)
	}
	if height, _, ok := e.Head(); ok || height != 0 {
		t.Fatalf("chain height after rollback = %d ok=%v, want 0", height, ok)
	}
	if _, ok := e.GetBalanceByAddress(a); ok {
		t.Fatal("rolled-back account should no longer exist")
	}

	// A second snapshot that does not raise the priority must be
	// rejected outright.
	if _, err := e.SetSignedSnapshot(wire.SignedSnapshot{Height: 1, Hash: bogus, Priority: 1}); err == nil {
		t.Fatal("expected ELowPriority rejecting a non-increasing snapshot priority")
	}
}

// TestAppendConflictingWithSnapshotIsRejected covers the remainder of
// S4: once a signed snapshot is installed at a height, an append_mined
// block at that height whose identity hash disagrees with the
// snapshot is rejected with ELeaderMismatch rather than accepted.
func TestAppendConflictingWithSnapshotIsRejected(t *testing.T) {
	e := newTestEngine()
	a := testKey(t, 40).Address()

	blk := buildBlock(e, rewardBody(e, a, 1000))
	if _, err := e.AppendMined(blk); err != nil {
		t.Fatalf("AppendMined(height 1): %v", err)
	}

	var bogus chainhash.Hash
	bogus[0] = 0xCD
	if _, err := e.SetSignedSnapshot(wire.SignedSnapshot{Height: 1, Hash: bogus, Priority: 5}); err != nil {
		t.Fatalf("SetSignedSnapshot: %v", err)
	}
	// The disagreeing snapshot already rolled height 1 back; reapplying
	// the original (now-conflicting) block must fail.
	if _, err := e.AppendMined(blk); err == nil {
		t.Fatal("expected ELeaderMismatch re-appending a block that conflicts with the installed snapshot")
	}
}

// TestRollbackThenReapplyIsByteIdentical covers invariant 9: rolling
// consensus back to genesis and reapplying the exact same blocks must
// reproduce the same worksum, grid, and tip.
func TestRollbackThenReapplyIsByteIdentical(t *testing.T) {
	e, a, b := buildTwoBlockChain(t, 30)

	_, wantLength, wantWorksum, wantGrid := e.GetGrid()
	_, wantHead, _ := e.Head()
	wantBalA, _ := e.GetBalanceByAddress(a)
	wantBalB, _ := e.GetBalanceByAddress(b)

	if _, err := e.SetSignedSnapshot(wire.SignedSnapshot{Height: 0, Hash: chainhash.Hash{}, Priority: 1}); err != nil {
		t.Fatalf("SetSignedSnapshot(full rollback): %v", err)
	}
	if height, _, ok := e.Head(); ok || height != 0 {
		t.Fatalf("expected a full rollback to height 0, got height=%d ok=%v", height, ok)
	}

	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, a, 1000))); err != nil {
		t.Fatalf("reapply height 1: %v", err)
	}
	if _, err := e.AppendMined(buildBlock(e, rewardBody(e, b, 2000))); err != nil {
		t.Fatalf("reapply height 2: %v", err)
	}

	_, gotLength, gotWorksum, gotGrid := e.GetGrid()
	_, gotHead, _ := e.Head()
	gotBalA, _ := e.GetBalanceByAddress(a)
	gotBalB, _ := e.GetBalanceByAddress(b)

	if gotLength != wantLength {
		t.Fatalf("length after reapply = %d, want %d", gotLength, wantLength)
	}
	if gotWorksum.Bytes() != wantWorksum.Bytes() {
		t.Fatalf("worksum after reapply = %x, want %x", gotWorksum.Bytes(), wantWorksum.Bytes())
	}
	if len(gotGrid) != len(wantGrid) {
		t.Fatalf("grid length after reapply = %d, want %d", len(gotGrid), len(wantGrid))
	}
	if identityHash(gotHead) != identityHash(wantHead) {
		t.Fatal("tip identity hash after reapply does not match the original chain")
	}
	if gotBalA != wantBalA || gotBalB != wantBalB {
		t.Fatalf("balances after reapply = (%+v, %+v), want (%+v, %+v)", gotBalA, gotBalB, wantBalA, wantBalB)
	}
}
