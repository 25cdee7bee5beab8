// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// PrivateKey wraps a secp256k1 private key used to sign transactions
// and, when configured as leaderPrivateKey (spec §6.4), signed
// snapshots.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// ParsePrivateKey parses a 32-byte raw private key.
func ParsePrivateKey(b []byte) (PrivateKey, error) {
	if len(b) != 32 {
		return PrivateKey{}, fmt.Errorf("crypto: private key must be 32 bytes, got %d", len(b))
	}
	return PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PublicKey returns the compressed public key matching priv.
func (priv PrivateKey) PublicKey() [33]byte {
	var out [33]byte
	copy(out[:], priv.key.PubKey().SerializeCompressed())
	return out
}

// Address returns the account address derived from priv's public key.
func (priv PrivateKey) Address() primitives.Address {
	return DeriveAddress(priv.key.PubKey().SerializeCompressed())
}

// Sign produces a 65-byte recoverable signature over a 32-byte digest
// (spec §3 Signature), using compact recoverable ECDSA so a verifier
// can recover the signing public key without it being carried
// alongside the signature on the wire.
func (priv PrivateKey) Sign(digest [32]byte) primitives.Signature {
	compact := ecdsa.SignCompact(priv.key, digest[:], true)
	var sig primitives.Signature
	// ecdsa.SignCompact lays out [recoveryID+27(+4) | R | S]; normalize
	// to the wire-friendly [R | S | recoveryID] layout spec §3 expects.
	copy(sig[0:32], compact[1:33])
	copy(sig[32:64], compact[33:65])
	sig[64] = normalizeRecoveryID(compact[0])
	return sig
}

func normalizeRecoveryID(b byte) byte {
	if b >= 31 {
		return b - 31
	}
	if b >= 27 {
		return b - 27
	}
	return b
}

// Recover recovers the public key that produced sig over digest,
// returning an error if the signature is malformed (spec §7
// ECorruptedSig).
func Recover(sig primitives.Signature, digest [32]byte) (*secp256k1.PublicKey, error) {
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27 + 4 // compressed recoverable form
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])
	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: signature recovery failed: %w", err)
	}
	return pub, nil
}

// RecoverAddress recovers the account address that produced sig over
// digest, the form ChainEngine.put_mempool uses to authenticate a
// transaction's sender (spec §4.1 put_mempool).
func RecoverAddress(sig primitives.Signature, digest [32]byte) (primitives.Address, error) {
	pub, err := Recover(sig, digest)
	if err != nil {
		return primitives.Address{}, err
	}
	return DeriveAddress(pub.SerializeCompressed()), nil
}
