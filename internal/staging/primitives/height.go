// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package primitives holds the wire-exact value types shared by both
// the canonical consensus chain and the stage chain being assembled
// from peer downloads: heights, headers, targets, worksums, batches,
// grids, and blocks (spec §3).
package primitives

import "fmt"

// Height is a block height. Height 0 is the (unstored) genesis
// reference point; the first real block is height 1.
type Height uint32

// NonzeroHeight is a Height known to be >= 1, the subtype spec §3
// requires for anything that indexes an actual stored block.
type NonzeroHeight struct {
	h Height
}

// NewNonzeroHeight validates h >= 1 and wraps it.
func NewNonzeroHeight(h Height) (NonzeroHeight, error) {
	if h == 0 {
		return NonzeroHeight{}, fmt.Errorf("primitives: height 0 is not a nonzero height")
	}
	return NonzeroHeight{h: h}, nil
}

// MustNonzeroHeight panics if h is zero; for call sites that have
// already checked (e.g. loop bodies starting at 1).
func MustNonzeroHeight(h Height) NonzeroHeight {
	nz, err := NewNonzeroHeight(h)
	if err != nil {
		panic(err)
	}
	return nz
}

// Value returns the underlying height.
func (n NonzeroHeight) Value() Height { return n.h }
