// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import "encoding/binary"

// Table prefixes realize the §6.3 table set as a flat keyspace.
var (
	PrefixBlocks         = []byte{0x01}
	PrefixConsensus      = []byte{0x02}
	PrefixState          = []byte{0x03}
	PrefixHistory        = []byte{0x04}
	PrefixAccountHistory = []byte{0x05}
	PrefixBadblocks      = []byte{0x06}
	PrefixDeleteSchedule = []byte{0x07}
	PrefixPeers          = []byte{0x08}
	PrefixBans           = []byte{0x09}
	PrefixOffenses       = []byte{0x0a}
	PrefixUndo           = []byte{0x0b}
)

// HeightKey builds a big-endian height key under prefix, keeping
// lexicographic and numeric order aligned so range scans (e.g.
// get_history's before-id paging) iterate in height order.
func HeightKey(prefix []byte, height uint32) []byte {
	k := make([]byte, len(prefix)+4)
	copy(k, prefix)
	binary.BigEndian.PutUint32(k[len(prefix):], height)
	return k
}

// StringKey builds a key from prefix and a plain string suffix (IP
// addresses, account ids formatted as fixed-width hex, etc.).
func StringKey(prefix []byte, s string) []byte {
	k := make([]byte, len(prefix)+len(s))
	copy(k, prefix)
	copy(k[len(prefix):], s)
	return k
}

// Uint64Key builds a big-endian uint64 key under prefix (account ids,
// history cursors).
func Uint64Key(prefix []byte, v uint64) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], v)
	return k
}
