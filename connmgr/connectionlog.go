// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import "github.com/jrick/bitset"

// ConnectionLog is a compact bit-pattern encoding of the last several
// outbound-connection successes/failures for one schedule entry,
// ported verbatim (spec §4 SUPPLEMENTED FEATURES) from the original's
// connection_schedule.cpp ConnectionLog: the low 5 bits count how many
// of the trailing attempts are "active" (known), and the remaining
// bits are a shift register of success(1)/failure(0) flags, most
// recent in the lowest position. consecutive_failures() counts
// trailing zero bits in that shift register, capped by how many
// attempts are actually known.
//
// It is backed by jrick/bitset.Bytes rather than a raw uint32 so the
// "this is a bit-pattern, not a counter" framing from the original is
// explicit in the Go rendering (see DESIGN.md).
type ConnectionLog struct {
	bits bitset.Bytes
}

// NewConnectionLog returns a fresh, empty log.
func NewConnectionLog() ConnectionLog {
	return ConnectionLog{bits: bitset.NewBytes(32)}
}

func (l ConnectionLog) raw() uint32 {
	var v uint32
	for i := 0; i < 32; i++ {
		if l.bits.Get(i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

func (l *ConnectionLog) setRaw(v uint32) {
	l.bits = bitset.NewBytes(32)
	for i := 0; i < 32; i++ {
		if v&(1<<uint(i)) != 0 {
			l.bits.Set(i)
		}
	}
}

func activeBits(v uint32) uint32 { return v & 0x1f }

// ConsecutiveFailures returns how many of the most recent (known)
// attempts failed in a row.
func (l ConnectionLog) ConsecutiveFailures() int {
	v := l.raw()
	shiftReg := v >> 5
	z := trailingZeros32(shiftReg)
	active := int(activeBits(v))
	if z > active {
		return active
	}
	return z
}

func trailingZeros32(v uint32) int {
	if v == 0 {
		return 32
	}
	n := 0
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

// LastConnectionFailed reports whether the most recent attempt failed.
func (l ConnectionLog) LastConnectionFailed() bool {
	return (l.raw() & (1 << 5)) == 0
}

// LogFailure records a failed attempt.
func (l *ConnectionLog) LogFailure() {
	v := l.raw()
	active := activeBits(v) + 1
	if active>>5 > 0 {
		active = 0x1f
	}
	logBits := v >> 5
	l.setRaw((logBits << 6) | active)
}

// LogSuccess records a successful attempt.
func (l *ConnectionLog) LogSuccess() {
	v := l.raw()
	active := activeBits(v) + 1
	if active>>5 > 0 {
		active = 0x1f
	}
	l.setRaw((((v >> 4) | 1) << 5) | active)
}
