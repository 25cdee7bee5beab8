// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package uint256 implements a fixed-width, allocation-free 256-bit
// unsigned integer. It exists for exactly one reason: Worksum needs
// O(1) add/compare without the heap churn of math/big, the same
// tradeoff the original node's own Worksum makes with a plain
// std::array<uint32_t,8>.
package uint256

import "encoding/binary"

// limbs is the number of 32-bit words in a 256-bit integer.
const limbs = 8

// Uint256 is an unsigned 256-bit integer stored as 8 little-endian
// 32-bit limbs, limb 0 being the least significant.
type Uint256 struct {
	w [limbs]uint32
}

// Max returns the largest representable value, all bits set.
func Max() Uint256 {
	var u Uint256
	for i := range u.w {
		u.w[i] = 0xffffffff
	}
	return u
}

// FromBytes interprets b (must be 32 bytes, big-endian) as a Uint256.
func FromBytes(b [32]byte) Uint256 {
	var u Uint256
	for i := 0; i < limbs; i++ {
		// limb i covers big-endian bytes [32-4*(i+1), 32-4*i)
		u.w[i] = binary.BigEndian.Uint32(b[32-4*(i+1) : 32-4*i])
	}
	return u
}

// Bytes serializes u as 32 big-endian bytes.
func (u Uint256) Bytes() [32]byte {
	var b [32]byte
	for i := 0; i < limbs; i++ {
		binary.BigEndian.PutUint32(b[32-4*(i+1):32-4*i], u.w[i])
	}
	return b
}

// IsZero reports whether u is the additive identity.
func (u Uint256) IsZero() bool {
	return u == Uint256{}
}

// Add returns u+v with wraparound on overflow (Worksum accumulation
// never overflows in practice; callers needing the exact semantics of
// the reference implementation rely on that same assumption).
func (u Uint256) Add(v Uint256) Uint256 {
	var out Uint256
	var carry uint64
	for i := 0; i < limbs; i++ {
		n := carry + uint64(u.w[i]) + uint64(v.w[i])
		out.w[i] = uint32(n)
		carry = n >> 32
	}
	return out
}

// Sub returns u-v, wrapping modulo 2^256 on underflow; every caller
// (rollback bookkeeping, Div) subtracts a value known not to exceed
// the minuend.
func (u Uint256) Sub(v Uint256) Uint256 {
	var out Uint256
	var borrow uint64
	for i := 0; i < limbs; i++ {
		borrow += uint64(v.w[i])
		if uint64(u.w[i]) >= borrow {
			out.w[i] = uint32(uint64(u.w[i]) - borrow)
			borrow = 0
		} else {
			out.w[i] = uint32((uint64(u.w[i]) + (1 << 32)) - borrow)
			borrow = 1
		}
	}
	return out
}

// MulSmall returns u*factor.
func (u Uint256) MulSmall(factor uint32) Uint256 {
	var out Uint256
	var carry uint64
	for i := 0; i < limbs; i++ {
		n := carry + uint64(u.w[i])*uint64(factor)
		out.w[i] = uint32(n)
		carry = n >> 32
	}
	return out
}

// Cmp returns -1, 0, or 1 as u is less than, equal to, or greater than
// v, comparing from the most significant limb down as the original's
// operator< does.
func (u Uint256) Cmp(v Uint256) int {
	for i := limbs - 1; i >= 0; i-- {
		if u.w[i] != v.w[i] {
			if u.w[i] < v.w[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether u < v.
func (u Uint256) Less(v Uint256) bool { return u.Cmp(v) < 0 }

// LessOrEqual reports whether u <= v.
func (u Uint256) LessOrEqual(v Uint256) bool { return u.Cmp(v) <= 0 }

// Float64 approximates u as a float64, most significant limb weighted
// heaviest, matching Worksum::getdouble in the original.
func (u Uint256) Float64() float64 {
	factor := 1.0
	sum := float64(u.w[0])
	for i := 1; i < limbs; i++ {
		factor *= 4294967296.0
		sum += factor * float64(u.w[i])
	}
	return sum
}

// ShiftLeft returns u<<n, discarding bits shifted out past the top.
func (u Uint256) ShiftLeft(n uint) Uint256 {
	if n == 0 {
		return u
	}
	if n >= 256 {
		return Uint256{}
	}
	limbShift := int(n / 32)
	bitShift := n % 32
	var out Uint256
	for i := limbs - 1; i >= 0; i-- {
		src := i - limbShift
		if src < 0 {
			continue
		}
		var v uint32
		v = u.w[src] << bitShift
		if bitShift > 0 && src > 0 {
			v |= u.w[src-1] >> (32 - bitShift)
		}
		out.w[i] = v
	}
	return out
}

// SetLimb sets limb index i (0 = least significant) to v; used by
// difficulty-target-to-worksum conversion which must place a single
// computed word at a known offset.
func (u *Uint256) SetLimb(i int, v uint32) {
	u.w[i] = v
}

// Limb returns limb index i (0 = least significant).
func (u Uint256) Limb(i int) uint32 {
	return u.w[i]
}

// NumLimbs is the number of 32-bit limbs backing a Uint256.
const NumLimbs = limbs

// One returns the multiplicative identity.
func One() Uint256 {
	var u Uint256
	u.w[0] = 1
	return u
}

// bit reports the value of bit i (0 = least significant).
func (u Uint256) bit(i uint) uint32 {
	return (u.w[i/32] >> (i % 32)) & 1
}

// setBit sets bit i to 1.
func (u *Uint256) setBit(i uint) {
	u.w[i/32] |= 1 << (i % 32)
}

// Div returns the truncated quotient u/v via schoolbook binary long
// division. Division only happens once per header (converting an
// expanded target into its worksum contribution), never on the
// Add/Cmp hot path invariant 1 exercises, so the O(256) shift-compare
// loop costs nothing that matters.
func (u Uint256) Div(v Uint256) Uint256 {
	if v.IsZero() {
		return Max()
	}
	var quotient, remainder Uint256
	for i := 255; i >= 0; i-- {
		remainder = remainder.ShiftLeft(1)
		if u.bit(uint(i)) != 0 {
			remainder.w[0] |= 1
		}
		if !remainder.Less(v) {
			remainder = remainder.Sub(v)
			quotient.setBit(uint(i))
		}
	}
	return quotient
}
