// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import (
	"encoding/binary"
	"math"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/math/uint256"
)

// Target is a compact 4-byte difficulty encoding. Two incompatible bit
// layouts exist side by side (spec §3, §9 open question): TargetV1
// (8-bit zero count, 24-bit mantissa) used before a network's
// V2ActivationHeight, and TargetV2 (10-bit zero count, 22-bit mantissa)
// from that height on. Both are preserved exactly rather than unified,
// per spec §9's explicit instruction not to guess away the original's
// two encodings. Compatibility/expansion is computed via a 256-bit
// numeric comparison, which is equivalent to (and far less error-prone
// than) the original's manual byte-shifting.
type Target struct {
	v2   bool
	data [4]byte
}

// ForHeight selects the wire-compatible encoding for height under the
// given network's V2 activation rule.
func ForHeight(height uint32, v2ActivationHeight uint32) bool {
	return height >= v2ActivationHeight
}

// NewTargetV1 wraps raw V1-encoded bytes.
func NewTargetV1(data [4]byte) Target { return Target{v2: false, data: data} }

// NewTargetV2 wraps raw V2-encoded bytes.
func NewTargetV2(data [4]byte) Target { return Target{v2: true, data: data} }

// IsV2 reports which encoding this target uses.
func (t Target) IsV2() bool { return t.v2 }

// Bytes returns the raw 4-byte wire encoding.
func (t Target) Bytes() [4]byte { return t.data }

const (
	zeroBitsV1, mantissaBitsV1 = 8, 24
	zeroBitsV2, mantissaBitsV2 = 10, 22
)

func (t Target) fields() (zeros, mantissa, mantissaBits uint32) {
	raw := binary.BigEndian.Uint32(t.data[:])
	if t.v2 {
		return raw >> mantissaBitsV2, raw & ((1 << mantissaBitsV2) - 1), mantissaBitsV2
	}
	return raw >> mantissaBitsV1, raw & ((1 << mantissaBitsV1) - 1), mantissaBitsV1
}

func pack(v2 bool, zeros, mantissa uint32) [4]byte {
	bits := uint32(mantissaBitsV1)
	if v2 {
		bits = mantissaBitsV2
	}
	raw := (zeros << bits) | (mantissa & ((1 << bits) - 1))
	var data [4]byte
	binary.BigEndian.PutUint32(data[:], raw)
	return data
}

// expanded returns the full 256-bit value this target represents:
// mantissa, normalized so its top bit is 1, shifted left so that
// `zeros` leading zero bits precede it.
func (t Target) expanded() uint256.Uint256 {
	zeros, mantissa, mantissaBits := t.fields()
	shift := 256 - int(zeros) - int(mantissaBits)
	var u uint256.Uint256
	if shift < 0 {
		u.SetLimb(0, mantissa>>uint(-shift))
		return u
	}
	u.SetLimb(0, mantissa)
	return u.ShiftLeft(uint(shift))
}

// Compatible reports whether hash numerically satisfies this target:
// hash, read as a big-endian 256-bit integer, must be <= the target's
// expanded value (spec §3: "compatible(hash) returns true iff the hash
// numerically <= the expanded target").
func (t Target) Compatible(hash chainhash.Hash) bool {
	_, mantissa, mantissaBits := t.fields()
	if mantissa>>(mantissaBits-1) == 0 {
		return false // top mantissa bit must be set (normalized form)
	}
	h := uint256.FromBytes(hash)
	return h.LessOrEqual(t.expanded())
}

// scaleGeneric implements the shared ±1-exponent-per-step rescale rule
// used by both encodings (ported from the original's Target::scale).
func scaleGeneric(zeros int, mantissa uint64, mantissaBits uint, easier, harder uint32) (int, uint64) {
	if easier == 0 {
		easier = 1
	}
	if harder == 0 {
		harder = 1
	}
	if easier >= 0x80000000 {
		easier = 0x7fffffff
	}
	if harder >= 0x80000000 {
		harder = 0x7fffffff
	}
	maxMantissa := uint64(1)<<mantissaBits - 1
	switch {
	case harder >= 2*easier:
		zeros++
	case easier >= 2*harder:
		zeros--
	default:
		if harder > easier {
			easier <<= 1
			zeros++
		}
		mantissa = (mantissa * uint64(easier)) / uint64(harder)
		if mantissa > maxMantissa {
			mantissa >>= 1
			zeros--
		}
	}
	return zeros, mantissa
}

// Scale rescales the target by (easier, harder), capping the leading
// zero-count change to ±1 per call and clamping to the network's
// genesis floor and each encoding's hardest representable value (spec
// §3 Target, invariant tested by property 6).
func (t Target) Scale(easier, harder uint32, genesisExponent uint8) Target {
	zeros, mantissa, mantissaBits := t.fields()
	newZeros, newMantissa := scaleGeneric(int(zeros), uint64(mantissa), uint(mantissaBits), easier, harder)

	floor := int(genesisExponent)
	ceil := (1 << boolToInt(t.v2, zeroBitsV2, zeroBitsV1)) - 1
	if newZeros < floor {
		return t.genesisLike(genesisExponent)
	}
	if newZeros > ceil {
		newZeros = ceil
		newMantissa = (1 << mantissaBits) - 1
	}
	return Target{v2: t.v2, data: pack(t.v2, uint32(newZeros), uint32(newMantissa))}
}

func boolToInt(b bool, ifTrue, ifFalse int) int {
	if b {
		return ifTrue
	}
	return ifFalse
}

func (t Target) genesisLike(exponent uint8) Target {
	if t.v2 {
		return GenesisV2(exponent)
	}
	return GenesisV1(exponent)
}

// Difficulty converts the target to a floating point difficulty value
// relative to the easiest representable target of its encoding.
func (t Target) Difficulty() float64 {
	zeros, mantissa, mantissaBits := t.fields()
	return math.Ldexp(1/float64(mantissa), int(zeros)+int(mantissaBits))
}

// GenesisV1 returns the easiest V1 target for the given genesis
// difficulty exponent (the number of required leading zero bits).
func GenesisV1(exponent uint8) Target {
	return Target{v2: false, data: pack(false, uint32(exponent), (1<<mantissaBitsV1)-1)}
}

// GenesisV2 returns the easiest V2 target with the given leading-zero
// exponent.
func GenesisV2(exponent uint8) Target {
	return Target{v2: true, data: pack(true, uint32(exponent), (1<<mantissaBitsV2)-1)}
}
