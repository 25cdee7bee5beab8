// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/warthog-network/node/chaincfg/chainhash"
)

// HeaderSize is the bit-exact wire size of a Header (spec §3).
const HeaderSize = 80

// Header is the 80-byte block header:
//
//	version:u32 | prevHash:32 | merkleRoot:32 | timestamp:u32 | target:u32 | nonce:u32
type Header struct {
	Version    uint32
	PrevHash   chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	TargetBits [4]byte
	Nonce      uint32
}

// Time returns the header's timestamp as a time.Time in UTC.
func (h Header) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

// Serialize writes the bit-exact 80-byte wire encoding.
func (h Header) Serialize() [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint32(b[0:4], h.Version)
	copy(b[4:36], h.PrevHash[:])
	copy(b[36:68], h.MerkleRoot[:])
	binary.BigEndian.PutUint32(b[68:72], h.Timestamp)
	copy(b[72:76], h.TargetBits[:])
	binary.BigEndian.PutUint32(b[76:80], h.Nonce)
	return b
}

// ParseHeader decodes an 80-byte buffer produced by Serialize.
func ParseHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("primitives: header must be %d bytes, got %d", HeaderSize, len(b))
	}
	var h Header
	h.Version = binary.BigEndian.Uint32(b[0:4])
	copy(h.PrevHash[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = binary.BigEndian.Uint32(b[68:72])
	copy(h.TargetBits[:], b[72:76])
	h.Nonce = binary.BigEndian.Uint32(b[76:80])
	return h, nil
}

// PowHasher computes the proof-of-work hash of a serialized header at
// a given height. Two algorithm generations exist in the original
// (VerusHash v2.1/v2.2, spec §3) and are dispatched on height; this
// core treats the hash function itself as an external cryptographic
// primitive (spec §1) reached only through this interface, never
// implemented here.
type PowHasher interface {
	PowHash(serializedHeader [HeaderSize]byte, height Height) chainhash.Hash
}

// Hash returns the double-round identity hash used for header linkage
// (PrevHash chaining, spec §8 invariant 3), distinct from the PoW
// hash: it is always the chain-identity hash regardless of which PoW
// generation produced the block.
func (h Header) Hash(hasher func([HeaderSize]byte) chainhash.Hash) chainhash.Hash {
	return hasher(h.Serialize())
}

// Target decodes the header's 4-byte compact difficulty field using
// the encoding selected for height (spec §3/§9 V1/V2 dispatch).
func (h Header) Target(height Height, v2ActivationHeight uint32) Target {
	if ForHeight(uint32(height), v2ActivationHeight) {
		return NewTargetV2(h.TargetBits)
	}
	return NewTargetV1(h.TargetBits)
}
