// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the fixed-size hash type shared by every
// block header, transaction id, and worksum in the node.
package chainhash

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a hash.
const HashSize = 32

// Hash is a 32-byte hash as used throughout the chain: block identity,
// merkle roots, pin hashes, and signed-snapshot commitments.
type Hash [HashSize]byte

// String returns the big-endian (reversed) hex encoding of the hash, the
// conventional display order for block identifiers.
func (h Hash) String() string {
	var reversed Hash
	for i, b := range h[:] {
		reversed[HashSize-1-i] = b
	}
	return hex.EncodeToString(reversed[:])
}

// IsZero reports whether h is the all-zero hash, used as the
// placeholder prevHash of the genesis header.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// SetBytes copies b into h. It errors if b is not exactly HashSize
// bytes long.
func (h *Hash) SetBytes(b []byte) error {
	if len(b) != HashSize {
		return fmt.Errorf("chainhash: invalid hash length %d, expected %d", len(b), HashSize)
	}
	copy(h[:], b)
	return nil
}

// NewHash constructs a Hash from a byte slice, erroring on wrong length.
func NewHash(b []byte) (Hash, error) {
	var h Hash
	err := h.SetBytes(b)
	return h, err
}

// NewHashFromStr parses the big-endian hex representation produced by
// String back into a Hash.
func NewHashFromStr(s string) (Hash, error) {
	var h Hash
	if len(s) != HashSize*2 {
		return h, fmt.Errorf("chainhash: invalid hash string length %d", len(s))
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	for i, b := range buf {
		h[HashSize-1-i] = b
	}
	return h, nil
}
