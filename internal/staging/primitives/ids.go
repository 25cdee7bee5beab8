// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import "fmt"

// Address is a 20-byte account address, ripemd160(sha256(pubkey))
// matching the crypto package's derivation (spec §3).
type Address [20]byte

// Signature is a 65-byte recoverable ECDSA signature: a 64-byte (r,s)
// pair plus a 1-byte recovery id (spec §3).
type Signature [65]byte

// AccountId identifies an account within the address table, assigned
// the first time the address appears in a block (spec §3 Body).
type AccountId uint64

// TxId is the triple that identifies a transaction for replay
// protection: the paying account, the height it pins against, and a
// per-account nonce slot (spec §3).
type TxId struct {
	AccountId AccountId
	PinHeight Height
	NonceId   uint32
}

// String renders a TxId for logs and error messages.
func (id TxId) String() string {
	return fmt.Sprintf("%d.%d.%d", id.AccountId, id.PinHeight, id.NonceId)
}

// Less provides a total order over TxId, used by the replay cache and
// mempool when deterministic iteration is required (e.g. tests).
func (id TxId) Less(other TxId) bool {
	if id.AccountId != other.AccountId {
		return id.AccountId < other.AccountId
	}
	if id.PinHeight != other.PinHeight {
		return id.PinHeight < other.PinHeight
	}
	return id.NonceId < other.NonceId
}
