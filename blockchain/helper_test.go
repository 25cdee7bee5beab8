// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/warthog-network/node/chaincfg"
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/crypto"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// alwaysHasher satisfies primitives.PowHasher by returning the
// all-zero hash, which numerically compares <= any normalized target
// (Target.Compatible), so tests can drive AppendMined/StageAdd without
// a real proof-of-work search.
type alwaysHasher struct{}

func (alwaysHasher) PowHash(_ [primitives.HeaderSize]byte, _ primitives.Height) chainhash.Hash {
	return chainhash.Hash{}
}

// testParams is a copy of RegNetParams, whose short pin window means
// replay-window tests don't need to mine a hundred blocks.
func testParams() *chaincfg.Params {
	p := chaincfg.RegNetParams
	return &p
}

func newTestEngine() *Engine {
	return New(testParams(), alwaysHasher{}, nil)
}

// testKey derives a deterministic secp256k1 key from a single byte seed.
func testKey(t *testing.T, seed byte) crypto.PrivateKey {
	var raw [32]byte
	raw[31] = seed
	raw[0] = 1 // avoid the all-zero scalar, which secp256k1 rejects
	key, err := crypto.ParsePrivateKey(raw[:])
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	return key
}

// buildBlock assembles a Block on top of e's current consensus tip
// carrying body, computing the header fields (prevHash, timestamp,
// target, merkle root) the same way GetMining does, so it passes
// checkLinkAndPow/checkTimestamp/VerifyMerkle.
func buildBlock(e *Engine, body primitives.Body) primitives.Block {
	height := e.consensus.length() + 1
	target := nextTarget(&e.consensus, e.params)

	var prevHash chainhash.Hash
	var timestamp uint32 = 1
	if last, ok := e.consensus.headerAt(e.consensus.length()); ok {
		prevHash = identityHash(last)
		timestamp = last.Timestamp + 1
	}

	header := primitives.Header{
		Version:    1,
		PrevHash:   prevHash,
		Timestamp:  timestamp,
		TargetBits: target.Bytes(),
	}
	header.MerkleRoot = body.MerkleRoot(chainhash.HashFunc)

	return primitives.Block{Height: primitives.MustNonzeroHeight(height), Header: header, Body: body}
}

// rewardBody builds a Body with a single reward transaction paying
// amount to addr, registering addr as a new account if it isn't one
// already known to e.
func rewardBody(e *Engine, addr primitives.Address, amount uint64) primitives.Body {
	body := primitives.Body{}
	id, ok := e.accounts.lookup(addr)
	if !ok {
		id = e.accounts.next
		body.NewAccounts = append(body.NewAccounts, addr)
	}
	body.Rewards = append(body.Rewards, primitives.RewardTx{ToAccount: id, Amount: amount})
	return body
}

// signedTransfer builds a TransferTx from priv's account to toAccount,
// pinned at pinHeight/pinHash, signing the canonical serialization the
// way put_mempool/append_mined both verify against.
func signedTransfer(priv crypto.PrivateKey, fromAccount primitives.AccountId, pinHeight primitives.Height, pinHash chainhash.Hash, toAccount primitives.AccountId, amount, fee uint64, nonce uint32) primitives.TransferTx {
	tx := primitives.TransferTx{
		Id:        primitives.TxId{AccountId: fromAccount, PinHeight: pinHeight, NonceId: nonce},
		ToAccount: toAccount,
		Amount:    amount,
		Fee:       fee,
		PinHash:   pinHash,
	}
	digest := [32]byte(chainhash.HashFunc(tx.Serialize()))
	tx.Signature = priv.Sign(digest)
	return tx
}
