// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "crypto/sha256"

// HashFunc computes the double-SHA256 identity hash used for header
// linkage (PrevHash chaining) and merkle tree nodes: an internal
// chain-bookkeeping hash, distinct from the externally supplied
// proof-of-work hash (VerusHash, reached only through
// primitives.PowHasher).
func HashFunc(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}
