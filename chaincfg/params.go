// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network parameters that distinguish
// mainnet, testnet, and regtest: handshake magics, genesis difficulty,
// retarget constants, and the replay/pin window size.
package chaincfg

import "time"

// Params groups every network-specific constant a ChainEngine or
// TransportManager needs in order to validate and gossip blocks.
type Params struct {
	// Name is the human readable network name ("mainnet", "testnet").
	Name string

	// HandshakeMagicRequest/Reply are the 14-byte greeting magics sent
	// by the connecting and accepting side respectively (spec §6.1).
	HandshakeMagicRequest string
	HandshakeMagicReply   string

	// DefaultPort is the default P2P listen port for this network.
	DefaultPort string

	// MinPeerVersion is the lowest wire protocol version accepted from
	// a peer; anything lower is closed with EVERSION.
	MinPeerVersion uint32

	// GenesisDifficultyExponent is the number of leading zero bits the
	// genesis (and any underflowing retarget) target encodes.
	GenesisDifficultyExponent uint8

	// V2ActivationHeight is the height at which TargetV2 encoding
	// (JANUSV2RETARGETSTART in the original) replaces TargetV1. See
	// DESIGN.md "Open Question decisions".
	V2ActivationHeight uint32

	// RetargetWindow is the number of trailing blocks examined when
	// computing the next difficulty target.
	RetargetWindow uint32

	// TargetBlockTime is the intended average spacing between blocks.
	TargetBlockTime time.Duration

	// ClockTolerance bounds how far into the future a block timestamp
	// may claim to be relative to wall-clock (spec §4.1 timestamp rule).
	ClockTolerance time.Duration

	// MedianTimeSpan is the number of trailing blocks used to compute
	// the median-time-past a new block's timestamp must exceed.
	MedianTimeSpan int

	// PinWindow is the number of trailing heights within which a
	// transaction's pinHeight must fall, and the size of the replay
	// cache (spec §3, §4.1 pin/nonce rule).
	PinWindow uint32

	// MaxConnectionsPerIP caps simultaneous connections sharing a
	// source IP (spec §4.2 admission policy).
	MaxConnectionsPerIP int

	// MaxHeadersPerBatch bounds a single header batch (spec §3 Batch).
	MaxHeadersPerBatch int

	// MaxBlocksPerRange bounds a single block-body download range
	// (spec §4.2 BlockDownload).
	MaxBlocksPerRange int
}

// MainNetParams are the parameters for the production network.
var MainNetParams = Params{
	Name:                      "mainnet",
	HandshakeMagicRequest:     "WARTHOG GRUNT?",
	HandshakeMagicReply:       "WARTHOG GRUNT!",
	DefaultPort:               "9186",
	MinPeerVersion:            1,
	GenesisDifficultyExponent: 16,
	V2ActivationHeight:        1_300_000,
	RetargetWindow:            100,
	TargetBlockTime:           10 * time.Second,
	ClockTolerance:            20 * time.Second,
	MedianTimeSpan:            11,
	PinWindow:                 32,
	MaxConnectionsPerIP:       3,
	MaxHeadersPerBatch:        100,
	MaxBlocksPerRange:         100,
}

// TestNetParams are the parameters for the public test network. The
// V2 target encoding activates from genesis on testnet, matching the
// original's practice of trialing format changes there first.
var TestNetParams = Params{
	Name:                      "testnet",
	HandshakeMagicRequest:     "TESTNET GRUNT?",
	HandshakeMagicReply:       "TESTNET GRUNT!",
	DefaultPort:               "19186",
	MinPeerVersion:            1,
	GenesisDifficultyExponent: 2,
	V2ActivationHeight:        0,
	RetargetWindow:            100,
	TargetBlockTime:           10 * time.Second,
	ClockTolerance:            2 * time.Minute,
	MedianTimeSpan:            11,
	PinWindow:                 32,
	MaxConnectionsPerIP:       3,
	MaxHeadersPerBatch:        100,
	MaxBlocksPerRange:         100,
}

// RegNetParams are parameters for an isolated local regression-test
// network: trivial difficulty, short pin window, fast clock tolerance.
var RegNetParams = Params{
	Name:                      "regnet",
	HandshakeMagicRequest:     "REGTEST GRUNT?",
	HandshakeMagicReply:       "REGTEST GRUNT!",
	DefaultPort:               "19586",
	MinPeerVersion:            1,
	GenesisDifficultyExponent: 0,
	V2ActivationHeight:        0,
	RetargetWindow:            10,
	TargetBlockTime:           time.Second,
	ClockTolerance:            time.Minute,
	MedianTimeSpan:            11,
	PinWindow:                 8,
	MaxConnectionsPerIP:       3,
	MaxHeadersPerBatch:        100,
	MaxBlocksPerRange:         100,
}
