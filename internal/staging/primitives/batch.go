// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import "fmt"

// MaxBatchSize is the largest number of headers a single Batch may
// hold (spec §3 Batch, §4.2 BatchReq/BatchRep).
const MaxBatchSize = 100

// Batch is an ordered, contiguous run of up to MaxBatchSize headers:
// the unit of header download (spec Glossary).
type Batch struct {
	StartHeight NonzeroHeight
	Headers     []Header
}

// NewBatch validates headers is non-empty and within MaxBatchSize.
func NewBatch(start NonzeroHeight, headers []Header) (Batch, error) {
	if len(headers) == 0 {
		return Batch{}, fmt.Errorf("primitives: empty batch")
	}
	if len(headers) > MaxBatchSize {
		return Batch{}, fmt.Errorf("primitives: batch of %d exceeds max %d", len(headers), MaxBatchSize)
	}
	return Batch{StartHeight: start, Headers: headers}, nil
}

// EndHeight returns the height of the last header in the batch.
func (b Batch) EndHeight() Height {
	return b.StartHeight.Value() + Height(len(b.Headers)) - 1
}

// Complete reports whether the batch reached MaxBatchSize headers
// (only a complete batch contributes a final entry to the Grid).
func (b Batch) Complete() bool { return len(b.Headers) == MaxBatchSize }

// Final returns the last header of the batch.
func (b Batch) Final() Header { return b.Headers[len(b.Headers)-1] }
