// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sort"

	"github.com/warthog-network/node/chaincfg"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// nextTarget computes the target the block at height length+1 must
// satisfy, from the trailing params.RetargetWindow headers of chain
// (spec §4.1 "Difficulty retarget"). With fewer than two blocks of
// history the genesis target for the active encoding applies.
func nextTarget(chain *headerChain, params *chaincfg.Params) primitives.Target {
	length := chain.length()
	nextHeight := uint32(length) + 1
	v2 := primitives.ForHeight(nextHeight, params.V2ActivationHeight)
	if length == 0 {
		if v2 {
			return primitives.GenesisV2(params.GenesisDifficultyExponent)
		}
		return primitives.GenesisV1(params.GenesisDifficultyExponent)
	}

	window := primitives.Height(params.RetargetWindow)
	if window > length {
		window = length
	}
	if window < 2 {
		last, _ := chain.headerAt(length)
		return last.Target(length, params.V2ActivationHeight)
	}

	first, _ := chain.headerAt(length - window + 1)
	last, _ := chain.headerAt(length)

	actual := int64(last.Timestamp) - int64(first.Timestamp)
	if actual < 1 {
		actual = 1
	}
	target := int64(window-1) * int64(params.TargetBlockTime.Seconds())
	if target < 1 {
		target = 1
	}

	lastTarget := last.Target(length, params.V2ActivationHeight)
	// A higher actual-vs-target ratio means blocks arrived slower than
	// intended, so the target should get easier; scaleGeneric's
	// (easier, harder) pair expresses "make it `harder`/`easier` times
	// as hard", so target time plays the harder role whenever the
	// chain is running ahead of schedule (spec invariant 6).
	return lastTarget.Scale(clampFactor(actual), clampFactor(target), params.GenesisDifficultyExponent)
}

// clampFactor fits a duration-derived ratio term into Target.Scale's
// uint32 (easier, harder) factor arguments.
func clampFactor(v int64) uint32 {
	if v < 1 {
		return 1
	}
	if v > 0x7fffffff {
		return 0x7fffffff
	}
	return uint32(v)
}

// medianTimePast returns the median timestamp of the trailing
// params.MedianTimeSpan headers of chain (spec §4.1 timestamp rule:
// "must exceed median of trailing 11 blocks").
func medianTimePast(chain *headerChain, params *chaincfg.Params) uint32 {
	length := chain.length()
	span := primitives.Height(params.MedianTimeSpan)
	if span > length {
		span = length
	}
	if span == 0 {
		return 0
	}
	times := make([]uint32, 0, span)
	for h := length - span + 1; h <= length; h++ {
		hdr, ok := chain.headerAt(h)
		if !ok {
			continue
		}
		times = append(times, hdr.Timestamp)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times[len(times)/2]
}
