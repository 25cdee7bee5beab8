// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"github.com/warthog-network/node/container/apbf"
)

// seenGenerations/seenPerGeneration/seenRotate size the recently-seen
// address filter for a few thousand live addresses aged out over a
// handful of rotation windows (spec §4.4 "recently seen peer
// addresses").
const (
	seenGenerations    = 4
	seenPerGeneration  = 4096
	seenFalsePositive  = 0.001
	seenRotateInterval = 2048
)

// SeenAddresses deduplicates peer addresses gossiped via Pong (spec
// §4.2) so the same address isn't repeatedly re-queued by the
// connection schedule.
type SeenAddresses struct {
	filter *apbf.Filter
}

// NewSeenAddresses creates a SeenAddresses filter keyed by key (a
// random per-process key suffices; it only needs to be stable for the
// process lifetime).
func NewSeenAddresses(key [16]byte) *SeenAddresses {
	return &SeenAddresses{
		filter: apbf.New(seenGenerations, seenPerGeneration, seenFalsePositive, seenRotateInterval, key),
	}
}

// MarkSeen records addr as seen and reports whether it had already
// been seen (a dedup-and-test-in-one convenience for Pong handling).
func (s *SeenAddresses) MarkSeen(addr string) (alreadySeen bool) {
	alreadySeen = s.filter.Contains([]byte(addr))
	s.filter.Insert([]byte(addr))
	return alreadySeen
}
