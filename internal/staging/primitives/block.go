// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import (
	"encoding/binary"

	"github.com/warthog-network/node/chaincfg/chainhash"
)

// RewardTx credits the block's miner (or, for the first transactions
// of the replay window's opening heights, any other protocol-defined
// payee). Reward transactions carry no TxId: they are not subject to
// replay protection since they are fully determined by height (spec
// §3 Body).
type RewardTx struct {
	ToAccount AccountId
	Amount    uint64
}

// Serialize returns the bytes hashed into the body's merkle tree.
func (tx RewardTx) Serialize() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(tx.ToAccount))
	binary.BigEndian.PutUint64(b[8:16], tx.Amount)
	return b
}

// TransferTx moves funds from one account to another, pinned against a
// recent chain height for replay protection (spec §3, §4.1 pin/nonce
// rule).
type TransferTx struct {
	Id        TxId
	ToAccount AccountId
	Amount    uint64
	Fee       uint64
	PinHash   chainhash.Hash
	Signature Signature
}

// Serialize returns the bytes hashed into the body's merkle tree and
// signed by Signature (the signature itself is excluded).
func (tx TransferTx) Serialize() []byte {
	b := make([]byte, 8+4+4+8+8+8+32)
	off := 0
	binary.BigEndian.PutUint64(b[off:], uint64(tx.Id.AccountId))
	off += 8
	binary.BigEndian.PutUint32(b[off:], uint32(tx.Id.PinHeight))
	off += 4
	binary.BigEndian.PutUint32(b[off:], tx.Id.NonceId)
	off += 4
	binary.BigEndian.PutUint64(b[off:], uint64(tx.ToAccount))
	off += 8
	binary.BigEndian.PutUint64(b[off:], tx.Amount)
	off += 8
	binary.BigEndian.PutUint64(b[off:], tx.Fee)
	off += 8
	copy(b[off:], tx.PinHash[:])
	return b
}

// TokenActionKind enumerates the optional token-layer operations a
// body may carry (spec §3 Body "optional token actions"); the core
// treats the payload opaquely, validating only that it is well formed
// enough to hash and store, not executing contract semantics (spec §1
// non-goal "arbitrary smart-contract execution").
type TokenActionKind uint8

const (
	TokenActionMint TokenActionKind = iota
	TokenActionTransfer
	TokenActionBurn
)

// TokenAction is an opaque token-layer operation attached to a block.
type TokenAction struct {
	Kind    TokenActionKind
	Account AccountId
	Payload []byte
}

// Serialize returns the bytes hashed into the body's merkle tree.
func (a TokenAction) Serialize() []byte {
	b := make([]byte, 9+len(a.Payload))
	b[0] = byte(a.Kind)
	binary.BigEndian.PutUint64(b[1:9], uint64(a.Account))
	copy(b[9:], a.Payload)
	return b
}

// Body holds everything a block commits to besides its header: the
// random seed used for tie-breaking/derivation, newly introduced
// accounts, reward and transfer transactions, and optional token
// actions (spec §3 Block).
type Body struct {
	RandomSeed   [4]byte
	NewAccounts  []Address
	Rewards      []RewardTx
	Transfers    []TransferTx
	TokenActions []TokenAction
}

// leaves returns the ordered list of serialized merkle-tree leaves:
// the random seed, then each new account, then each reward, transfer,
// and token action, matching the field order in spec §3 Body.
func (b Body) leaves() [][]byte {
	out := make([][]byte, 0, 1+len(b.NewAccounts)+len(b.Rewards)+len(b.Transfers)+len(b.TokenActions))
	out = append(out, append([]byte(nil), b.RandomSeed[:]...))
	for _, a := range b.NewAccounts {
		out = append(out, append([]byte(nil), a[:]...))
	}
	for _, r := range b.Rewards {
		out = append(out, r.Serialize())
	}
	for _, t := range b.Transfers {
		out = append(out, t.Serialize())
	}
	for _, a := range b.TokenActions {
		out = append(out, a.Serialize())
	}
	return out
}

// MerkleRoot computes the body's merkle root using hash as the leaf
// and interior node hash function (an external cryptographic
// primitive, spec §1).
func (b Body) MerkleRoot(hash func([]byte) chainhash.Hash) chainhash.Hash {
	return MerkleRoot(b.leaves(), hash)
}

// Block is (height, header, body); Merkle root is computed from the
// body and must match the header (spec §3 Block).
type Block struct {
	Height NonzeroHeight
	Header Header
	Body   Body
}

// VerifyMerkle reports whether the block's header MerkleRoot field
// matches the root computed from its body.
func (blk Block) VerifyMerkle(hash func([]byte) chainhash.Hash) bool {
	return blk.Header.MerkleRoot == blk.Body.MerkleRoot(hash)
}
