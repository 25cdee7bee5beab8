// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package apbf implements an age-partitioned bloom filter: a ring of N
// bloom-filter generations that ages out old members without the
// unbounded growth of a single filter or the cost of an exact set.
// It backs the "recently seen" dedup addrmgr and the Orchestrator's
// tx-announce flood suppression need (spec §4.2 TxNotify, §4.4).
package apbf

import (
	"math"

	"github.com/dchest/siphash"
)

// Filter is an age-partitioned bloom filter of generations partitions,
// each sized to hold roughly itemsPerGeneration items at falsePositive
// rate, keyed by a fixed siphash key so membership hashing is stable
// across the filter's lifetime.
type Filter struct {
	k0, k1         uint64
	partitions     []partition
	numHashes      int
	bitsPerPart    uint64
	current        int
	sinceRotate    int
	rotateInterval int
}

type partition struct {
	bits []uint64
}

func newPartition(bits uint64) partition {
	return partition{bits: make([]uint64, (bits+63)/64)}
}

func (p *partition) set(i uint64) {
	p.bits[i/64] |= 1 << (i % 64)
}

func (p *partition) test(i uint64) bool {
	return p.bits[i/64]&(1<<(i%64)) != 0
}

// New creates a Filter with the given number of generations, each
// generation sized for itemsPerGeneration inserts at falsePositive
// rate, rotating to a fresh generation every rotateInterval inserts.
// siphashKey seeds the keyed hash (spec's dropped-dependency ledger
// wires github.com/dchest/siphash here, the teacher's own declared
// dependency of this package, see DESIGN.md).
func New(generations int, itemsPerGeneration int, falsePositive float64, rotateInterval int, siphashKey [16]byte) *Filter {
	if generations < 1 {
		generations = 1
	}
	bitsPerItem := -math.Log(falsePositive) / (math.Ln2 * math.Ln2)
	bits := uint64(math.Ceil(float64(itemsPerGeneration) * bitsPerItem))
	if bits == 0 {
		bits = 1
	}
	numHashes := int(math.Round(math.Ln2 * bitsPerItem))
	if numHashes < 1 {
		numHashes = 1
	}
	f := &Filter{
		k0:             uint64From(siphashKey[0:8]),
		k1:             uint64From(siphashKey[8:16]),
		partitions:     make([]partition, generations),
		numHashes:      numHashes,
		bitsPerPart:    bits,
		rotateInterval: rotateInterval,
	}
	for i := range f.partitions {
		f.partitions[i] = newPartition(bits)
	}
	return f
}

func uint64From(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// indexes returns the numHashes bit positions data maps to within a
// single generation, derived from one siphash-2-4 evaluation split
// into independent slices (the standard double-hashing bloom-filter
// construction, avoiding numHashes separate hash evaluations).
func (f *Filter) indexes(data []byte) []uint64 {
	h1, h2 := siphash.Hash128(f.k0, f.k1, data)
	out := make([]uint64, f.numHashes)
	for i := 0; i < f.numHashes; i++ {
		out[i] = (h1 + uint64(i)*h2) % f.bitsPerPart
	}
	return out
}

// Insert adds data to the current generation, rotating to a fresh
// generation (dropping the oldest) every rotateInterval inserts.
func (f *Filter) Insert(data []byte) {
	idx := f.indexes(data)
	cur := &f.partitions[f.current]
	for _, i := range idx {
		cur.set(i)
	}
	f.sinceRotate++
	if f.rotateInterval > 0 && f.sinceRotate >= f.rotateInterval {
		f.rotate()
	}
}

func (f *Filter) rotate() {
	f.sinceRotate = 0
	f.current = (f.current + 1) % len(f.partitions)
	f.partitions[f.current] = newPartition(f.bitsPerPart)
}

// Contains reports whether data was (probably) inserted within the
// last len(partitions) rotation windows. False positives are possible;
// false negatives are not.
func (f *Filter) Contains(data []byte) bool {
	idx := f.indexes(data)
	for p := range f.partitions {
		all := true
		for _, i := range idx {
			if !f.partitions[p].test(i) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
