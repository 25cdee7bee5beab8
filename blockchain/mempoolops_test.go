// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// setupFundedEngine mines a genesis block crediting priv's account
// with amount, returning the engine and the account's id.
func setupFundedEngine(t *testing.T, seed byte, amount uint64) (*Engine, primitives.AccountId) {
	t.Helper()
	e := newTestEngine()
	priv := testKey(t, seed)
	addr := priv.Address()
	blk := buildBlock(e, rewardBody(e, addr, amount))
	if _, err := e.AppendMined(blk); err != nil {
		t.Fatalf("AppendMined(genesis): %v", err)
	}
	id, ok := e.GetBalanceByAddress(addr)
	if !ok {
		t.Fatal("funded account not found after genesis append")
	}
	return e, id.AccountId
}

// TestPutMempoolAcceptsAndAppliesTransfer exercises put_mempool end to
// end: a signed transfer is admitted, then picked up by get_mining and
// applied by append_mined.
func TestPutMempoolAcceptsAndAppliesTransfer(t *testing.T) {
	e, aliceID := setupFundedEngine(t, 1, 10_000)
	alicePriv := testKey(t, 1)
	bobPriv := testKey(t, 2)
	bob := bobPriv.Address()

	genesisHash, _ := e.GetHash(1)

	// bob must already exist as an account before a transfer can target
	// him; fund him too, as a second block.
	blk2 := buildBlock(e, rewardBody(e, bob, 0))
	if _, err := e.AppendMined(blk2); err != nil {
		t.Fatalf("AppendMined(height 2): %v", err)
	}
	bobBal, ok := e.GetBalanceByAddress(bob)
	if !ok {
		t.Fatal("bob account not created")
	}

	tx := signedTransfer(alicePriv, aliceID, 1, genesisHash, bobBal.AccountId, 1000, 10, 1)
	if _, err := e.PutMempool(tx); err != nil {
		t.Fatalf("PutMempool: %v", err)
	}

	template, err := e.GetMining(testKey(t, 3).Address())
	if err != nil {
		t.Fatalf("GetMining: %v", err)
	}
	if len(template.Body.Transfers) != 1 || template.Body.Transfers[0].Id != tx.Id {
		t.Fatalf("expected get_mining to pack the pending transfer, got %+v", template.Body.Transfers)
	}

	blk3 := buildBlock(e, template.Body)
	if _, err := e.AppendMined(blk3); err != nil {
		t.Fatalf("AppendMined(height 3): %v", err)
	}

	aliceBal, _ := e.GetBalanceByAccount(aliceID)
	if aliceBal.Balance != 10_000-1010 {
		t.Fatalf("alice balance after transfer = %d, want %d", aliceBal.Balance, 10_000-1010)
	}
	bobBal, _ = e.GetBalanceByAccount(bobBal.AccountId)
	if bobBal.Balance != 1000 {
		t.Fatalf("bob balance after transfer = %d, want 1000", bobBal.Balance)
	}
}

// TestPutMempoolRejectsReplayedTransfer covers S2 and invariant 8: once
// a TxId has been applied, it must be rejected both from the mempool
// and from a later append_mined (replay cache and mempool never
// simultaneously admit the same id).
func TestPutMempoolRejectsReplayedTransfer(t *testing.T) {
	e, aliceID := setupFundedEngine(t, 1, 10_000)
	alicePriv := testKey(t, 1)
	bob := testKey(t, 2).Address()

	genesisHash, _ := e.GetHash(1)
	blk2 := buildBlock(e, rewardBody(e, bob, 0))
	if _, err := e.AppendMined(blk2); err != nil {
		t.Fatalf("AppendMined(height 2): %v", err)
	}
	bobBal, _ := e.GetBalanceByAddress(bob)

	tx := signedTransfer(alicePriv, aliceID, 1, genesisHash, bobBal.AccountId, 1000, 10, 1)
	if _, err := e.PutMempool(tx); err != nil {
		t.Fatalf("PutMempool: %v", err)
	}

	blk3 := buildBlock(e, primitives.Body{Transfers: []primitives.TransferTx{tx}})
	if _, err := e.AppendMined(blk3); err != nil {
		t.Fatalf("AppendMined(height 3): %v", err)
	}

	if _, applied := e.LookupTx(tx.Id); !applied {
		t.Fatal("applied TxId should be reported as applied by LookupTx")
	}

	if _, err := e.PutMempool(tx); err == nil {
		t.Fatal("expected ENonce rejecting a replayed TxId from put_mempool")
	}

	blk4 := buildBlock(e, primitives.Body{Transfers: []primitives.TransferTx{tx}})
	if _, err := e.AppendMined(blk4); err == nil {
		t.Fatal("expected append_mined to reject a block replaying an already-applied TxId")
	}

	pending, applied := e.LookupTx(tx.Id)
	if pending {
		t.Fatal("a replayed TxId must never be admitted to the mempool (invariant 8)")
	}
	if !applied {
		t.Fatal("the original application of the TxId must still be recorded")
	}
}

// TestAppendMinedRejectsDuplicateTxIdWithinBlock covers the intra-block
// half of "Block application rejects any transaction whose id is
// already present": two transfers sharing one (accountId, pinHeight,
// nonceId) packed into the *same* block must both be rejected, not
// silently double-applied because neither is yet in the replay cache
// when the other is checked.
func TestAppendMinedRejectsDuplicateTxIdWithinBlock(t *testing.T) {
	e, aliceID := setupFundedEngine(t, 1, 10_000)
	alicePriv := testKey(t, 1)
	bob := testKey(t, 2).Address()

	genesisHash, _ := e.GetHash(1)
	blk2 := buildBlock(e, rewardBody(e, bob, 0))
	if _, err := e.AppendMined(blk2); err != nil {
		t.Fatalf("AppendMined(height 2): %v", err)
	}
	bobBal, _ := e.GetBalanceByAddress(bob)

	tx1 := signedTransfer(alicePriv, aliceID, 1, genesisHash, bobBal.AccountId, 1000, 10, 1)
	tx2 := signedTransfer(alicePriv, aliceID, 1, genesisHash, bobBal.AccountId, 500, 5, 1)
	if tx1.Id != tx2.Id {
		t.Fatalf("test setup: expected identical TxId, got %+v and %+v", tx1.Id, tx2.Id)
	}

	blk3 := buildBlock(e, primitives.Body{Transfers: []primitives.TransferTx{tx1, tx2}})
	if _, err := e.AppendMined(blk3); err == nil {
		t.Fatal("expected append_mined to reject a block with two transfers sharing one TxId")
	}

	if _, ok := e.GetHash(3); ok {
		t.Fatal("a rejected block must not advance consensus height")
	}
	if _, applied := e.LookupTx(tx1.Id); applied {
		t.Fatal("a rejected duplicate-id block must leave the replay cache untouched")
	}
}
