// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto derives account addresses from public keys and
// signs/verifies/recovers the recoverable ECDSA signatures spec §3
// defines as the node's Signature type. Everything here is a thin
// wrapper over vetted libraries; no curve or hash primitive is
// reimplemented (spec §1 non-goal).
package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address derivation, not a security-sensitive hash chain

	"github.com/warthog-network/node/internal/staging/primitives"
)

// DeriveAddress computes ripemd160(sha256(pubkey)), the 20-byte
// account address derived from an uncompressed or compressed
// secp256k1 public key encoding (spec §3 Address).
func DeriveAddress(pubKey []byte) primitives.Address {
	sha := sha256.Sum256(pubKey)
	r := ripemd160.New()
	r.Write(sha[:])
	sum := r.Sum(nil)
	var addr primitives.Address
	copy(addr[:], sum)
	return addr
}

// addressVersion is the base58check version byte prefixed before the
// 20-byte address payload. A single network-wide value suffices since
// the node never needs to distinguish address "types" the way a
// UTXO+script chain would (spec's addresses are flat account hashes).
const addressVersion = 0x49 // 'W'-adjacent byte, arbitrary but fixed

// String renders addr as a base58check string: version byte + payload
// + 4-byte double-SHA256 checksum, decoded by ParseAddressString.
func String(addr primitives.Address) string {
	payload := make([]byte, 1+len(addr))
	payload[0] = addressVersion
	copy(payload[1:], addr[:])
	checksum := doubleSHA256(payload)[:4]
	return base58.Encode(append(payload, checksum...))
}

// ParseAddressString decodes a base58check address string produced by
// String, validating its checksum and version byte.
func ParseAddressString(s string) (primitives.Address, error) {
	decoded := base58.Decode(s)
	if len(decoded) != 1+len(primitives.Address{})+4 {
		return primitives.Address{}, fmt.Errorf("crypto: invalid address length %d", len(decoded))
	}
	payload := decoded[:len(decoded)-4]
	checksum := decoded[len(decoded)-4:]
	want := doubleSHA256(payload)[:4]
	for i := range checksum {
		if checksum[i] != want[i] {
			return primitives.Address{}, fmt.Errorf("crypto: bad address checksum")
		}
	}
	if payload[0] != addressVersion {
		return primitives.Address{}, fmt.Errorf("crypto: unexpected address version byte 0x%x", payload[0])
	}
	var addr primitives.Address
	copy(addr[:], payload[1:])
	return addr, nil
}

func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
