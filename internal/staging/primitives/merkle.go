// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import "github.com/warthog-network/node/chaincfg/chainhash"

// MerkleRoot computes a binary merkle root over leaves using hash as
// both the leaf-hashing and interior-node-hashing function, duplicating
// the final node of a level with an odd count (the conventional
// Bitcoin-style construction the original's merkle.cpp also follows).
// Kept in spirit from the teacher's blockchain/standalone.CalcMerkleRoot
// helper (see DESIGN.md), generalized to operate over the account-based
// Body's leaf set rather than UTXO transaction hashes.
func MerkleRoot(leaves [][]byte, hash func([]byte) chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}
	level := make([]chainhash.Hash, len(leaves))
	for i, l := range leaves {
		level[i] = hash(l)
	}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		buf := make([]byte, 2*chainhash.HashSize)
		for i := range next {
			copy(buf[:chainhash.HashSize], level[2*i][:])
			copy(buf[chainhash.HashSize:], level[2*i+1][:])
			next[i] = hash(buf)
		}
		level = next
	}
	return level[0]
}
