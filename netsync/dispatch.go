// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"time"

	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/peer"
	"github.com/warthog-network/node/wire"
)

// dispatch routes one decoded message to its handler (spec §4.2
// message-handling table). Every handler runs on the Orchestrator's
// single event-loop goroutine.
func (o *Orchestrator) dispatch(id peer.ConnectionId, msg wire.Message) {
	s, ok := o.table.Get(id)
	if !ok {
		return
	}

	if !s.Initialized {
		m, isInit := msg.(*wire.MsgInit)
		if !isInit {
			o.offend(id, chainerr.EHandshake)
			return
		}
		o.handleInit(id, s, m)
		return
	}
	if _, isInit := msg.(*wire.MsgInit); isInit {
		o.offend(id, chainerr.EHandshake)
		return
	}

	switch m := msg.(type) {
	case *wire.MsgAppend:
		o.handleAppend(id, s, m)
	case *wire.MsgFork:
		o.handleFork(id, s, m)
	case *wire.MsgSignedPinRollback:
		o.handleSignedPinRollback(id, s, m)
	case *wire.MsgLeader:
		o.handleLeader(id, s, m)
	case *wire.MsgBatchReq:
		o.handleBatchReq(id, s, m)
	case *wire.MsgBatchRep:
		o.handleBatchRep(id, s, m)
	case *wire.MsgProbeReq:
		o.handleProbeReq(id, s, m)
	case *wire.MsgProbeRep:
		o.handleProbeRep(id, s, m)
	case *wire.MsgBlockReq:
		o.handleBlockReq(id, s, m)
	case *wire.MsgBlockRep:
		o.handleBlockRep(id, s, m)
	case *wire.MsgPing:
		o.handlePing(id, s, m)
	case *wire.MsgPong:
		o.handlePong(id, s, m)
	case *wire.MsgTxNotify:
		o.handleTxNotify(id, s, m)
	case *wire.MsgTxReq:
		o.handleTxReq(id, s, m)
	case *wire.MsgTxRep:
		o.handleTxRep(id, s, m)
	default:
		o.offend(id, chainerr.EMsgType)
	}
}

// ---- Init ----

func (o *Orchestrator) handleInit(id peer.ConnectionId, s *peer.State, m *wire.MsgInit) {
	if m.Version < 1 {
		o.offend(id, chainerr.EVersion)
		return
	}
	s.ClaimedVersion = m.Version
	s.ClaimedPort = m.ListenPort
	s.PeerChain = peer.DescriptedChainState{
		Length:  primitives.Height(m.ChainLength),
		Worksum: primitives.FromBytes(m.Worksum),
		Grid:    m.Grid,
	}
	s.PinHeight = primitives.Height(m.PinHeight)
	s.PinHash = m.PinHash
	s.Initialized = true

	_, _, ourWorksum, _ := o.chain.GetGrid()
	if s.PeerChain.Worksum.GreaterThan(ourWorksum) {
		_, ourLength, _, _ := o.chain.GetGrid()
		o.hdl.Register(id, s.PeerChain, ourLength)
		o.issueProbe(id, s)
	}
	o.runSyncDecisions()
}

// issueProbe sends the next probe request HeaderDownload wants for id,
// if any, tracking it as the peer's outstanding probe request (spec
// §4.2 "Only one outstanding request per peer of each of three
// kinds").
func (o *Orchestrator) issueProbe(id peer.ConnectionId, s *peer.State) {
	if s.HasOutstanding(peer.RequestProbe) {
		return
	}
	descriptor, height, ok := o.hdl.NextProbe(id)
	if !ok {
		return
	}
	nonce := o.nextNonce()
	s.SetOutstanding(peer.RequestProbe, nonce, requestTimeout)
	o.send(id, &wire.MsgProbeReq{Nonce: nonce, Descriptor: descriptor, Height: uint32(height)})
}

// issueBatchRequest sends the next header-batch request a leader
// candidate should serve, if any.
func (o *Orchestrator) issueBatchRequest(id peer.ConnectionId, s *peer.State) {
	if s.HasOutstanding(peer.RequestHeaderBatch) {
		return
	}
	sel, ok := o.hdl.NextBatchRequest(id)
	if !ok {
		return
	}
	nonce := o.nextNonce()
	s.SetOutstanding(peer.RequestHeaderBatch, nonce, requestTimeout)
	o.send(id, &wire.MsgBatchReq{Nonce: nonce, Selector: sel})
}

// issueBlockRequest assigns id an outstanding block-range request from
// the active BlockDownload target, if one is set and id has none.
func (o *Orchestrator) issueBlockRequest(id peer.ConnectionId, s *peer.State) {
	if o.bdl == nil || s.HasOutstanding(peer.RequestBlockRange) {
		return
	}
	sel, ok := o.bdl.NextAssignment(id)
	if !ok {
		return
	}
	nonce := o.nextNonce()
	s.SetOutstanding(peer.RequestBlockRange, nonce, requestTimeout)
	o.send(id, &wire.MsgBlockReq{Nonce: nonce, Selector: sel})
}

// ---- Append / Fork ----

func (o *Orchestrator) handleAppend(id peer.ConnectionId, s *peer.State, m *wire.MsgAppend) {
	if primitives.Height(m.Height) != s.PeerChain.Length+1 {
		o.offend(id, chainerr.EAppend)
		return
	}
	s.OnConsensusAppend(m.Header, primitives.FromBytes(m.WorksumDelta), m.GridDelta)
	o.runSyncDecisions()
}

func (o *Orchestrator) handleFork(id peer.ConnectionId, s *peer.State, m *wire.MsgFork) {
	if primitives.Height(m.ForkHeight) > s.PeerChain.Length+1 {
		o.offend(id, chainerr.EForkHeight)
		return
	}
	s.OnConsensusFork(primitives.Height(m.ForkHeight), primitives.FromBytes(m.Worksum), m.GridSuffix)
	o.hdl.Unregister(id)
	o.runSyncDecisions()
}

// ---- Snapshot / Leader ----

func (o *Orchestrator) handleSignedPinRollback(id peer.ConnectionId, s *peer.State, m *wire.MsgSignedPinRollback) {
	if m.Snapshot.Priority <= s.Snapshot.Theirs {
		return
	}
	s.Snapshot.Theirs = m.Snapshot.Priority
	update, err := o.chain.SetSignedSnapshot(m.Snapshot)
	if err != nil {
		return
	}
	o.publish(update)
}

func (o *Orchestrator) handleLeader(id peer.ConnectionId, s *peer.State, m *wire.MsgLeader) {
	if m.Snapshot.Priority <= s.Snapshot.Theirs {
		return
	}
	s.Snapshot.Theirs = m.Snapshot.Priority
	update, err := o.chain.SetSignedSnapshot(m.Snapshot)
	if err != nil {
		return
	}
	o.publish(update)
}

// ---- Batch request/reply ----

func (o *Orchestrator) handleBatchReq(id peer.ConnectionId, s *peer.State, m *wire.MsgBatchReq) {
	descriptor, length, _, _ := o.chain.GetGrid()
	rep := &wire.MsgBatchRep{Nonce: m.Nonce}
	if m.Selector.Descriptor != descriptor {
		o.send(id, rep)
		return
	}
	start := primitives.Height(m.Selector.StartHeight)
	for i := uint32(0); i < m.Selector.Length; i++ {
		height := start + primitives.Height(i)
		if height > length {
			break
		}
		h, ok := o.chain.GetHeader(height)
		if !ok {
			break
		}
		rep.Headers = append(rep.Headers, h)
	}
	o.send(id, rep)
}

func (o *Orchestrator) handleBatchRep(id peer.ConnectionId, s *peer.State, m *wire.MsgBatchRep) {
	req, matched := s.ClearOutstanding(peer.RequestHeaderBatch, m.Nonce)
	if !matched {
		o.offend(id, chainerr.EUnrequested)
		return
	}
	if len(m.Headers) == 0 {
		o.offend(id, chainerr.ENoBatch)
		return
	}
	start := o.batchStartFor(id, req)
	if err := o.hdl.HandleBatchReply(id, start, m.Headers); err != nil {
		if code, ok := err.(chainerr.Code); ok {
			o.offend(id, code)
			return
		}
		o.offend(id, chainerr.EBadMismatch)
		return
	}
	o.runSyncDecisions()
}

// batchStartFor recovers the StartHeight a now-cleared batch request
// was sent with: the start HeaderDownload recorded for id on its most
// recent NextBatchRequest call (0 if none), rather than threading the
// selector through SetOutstanding.
func (o *Orchestrator) batchStartFor(id peer.ConnectionId, req peer.OutstandingRequest) primitives.Height {
	_ = req
	if sel, ok := o.hdl.lastRequested(id); ok {
		return primitives.Height(sel.StartHeight)
	}
	return 0
}

// ---- Probe request/reply ----

func (o *Orchestrator) handleProbeReq(id peer.ConnectionId, s *peer.State, m *wire.MsgProbeReq) {
	descriptor, length, _, _ := o.chain.GetGrid()
	rep := &wire.MsgProbeRep{Nonce: m.Nonce}
	if m.Descriptor == descriptor {
		if h, ok := o.chain.GetHeader(primitives.Height(m.Height)); ok {
			rep.HasReq = true
			rep.Requested = h
		}
	}
	if primitives.Height(m.Height) <= length {
		if h, ok := o.chain.GetHeader(primitives.Height(m.Height)); ok {
			rep.HasCurrent = true
			rep.Current = h
		}
	}
	o.send(id, rep)
}

func (o *Orchestrator) handleProbeRep(id peer.ConnectionId, s *peer.State, m *wire.MsgProbeRep) {
	_, matched := s.ClearOutstanding(peer.RequestProbe, m.Nonce)
	if !matched {
		o.offend(id, chainerr.EUnrequested)
		return
	}
	height, ok := o.hdl.pendingProbeHeight(id)
	if !ok {
		return
	}
	ourHeader, weHaveOurs := o.chain.GetHeader(height)
	if err := o.hdl.HandleProbeReply(id, height, m.Requested, ourHeader, weHaveOurs); err != nil {
		if code, ok := err.(chainerr.Code); ok {
			o.offend(id, code)
			return
		}
	}
	o.runSyncDecisions()
}

// ---- Block request/reply ----

func (o *Orchestrator) handleBlockReq(id peer.ConnectionId, s *peer.State, m *wire.MsgBlockReq) {
	descriptor, length, _, _ := o.chain.GetGrid()
	rep := &wire.MsgBlockRep{Nonce: m.Nonce}
	if m.Selector.Descriptor == descriptor {
		start := primitives.Height(m.Selector.StartHeight)
		for i := uint32(0); i < m.Selector.Length; i++ {
			height := start + primitives.Height(i)
			if height > length {
				break
			}
			blk, ok := o.chain.GetBlock(height)
			if !ok {
				break
			}
			rep.Bodies = append(rep.Bodies, wire.EncodedBody{
				RandomSeed:   blk.Body.RandomSeed,
				NewAccounts:  blk.Body.NewAccounts,
				Rewards:      blk.Body.Rewards,
				Transfers:    blk.Body.Transfers,
				TokenActions: blk.Body.TokenActions,
			})
		}
	}
	o.send(id, rep)
}

func (o *Orchestrator) handleBlockRep(id peer.ConnectionId, s *peer.State, m *wire.MsgBlockRep) {
	req, matched := s.ClearOutstanding(peer.RequestBlockRange, m.Nonce)
	_ = req
	if !matched {
		o.offend(id, chainerr.EUnrequested)
		return
	}
	if o.bdl == nil {
		return
	}
	start, ok := o.bdl.assignedStart(id)
	if !ok {
		return
	}
	bodies := make([]primitives.Body, len(m.Bodies))
	for i, b := range m.Bodies {
		bodies[i] = primitives.Body{
			RandomSeed:   b.RandomSeed,
			NewAccounts:  b.NewAccounts,
			Rewards:      b.Rewards,
			Transfers:    b.Transfers,
			TokenActions: b.TokenActions,
		}
	}
	badHeight, ok := o.bdl.HandleBodies(id, start, bodies, identityHashFn)
	if !ok {
		o.offend(id, chainerr.NewHeightError(chainerr.EMerkleRoot, uint32(badHeight)))
		return
	}
	o.runSyncDecisions()
}

// ---- Ping / Pong ----

func (o *Orchestrator) handlePing(id peer.ConnectionId, s *peer.State, m *wire.MsgPing) {
	if !s.PingLimit.Allow(time.Now()) {
		o.offend(id, chainerr.ERestricted)
		return
	}
	s.Snapshot.Theirs = maxUint64(s.Snapshot.Theirs, m.SnapshotPrio)

	addrCount := int(m.MaxAddresses)
	if addrCount > maxSampleAddresses {
		addrCount = maxSampleAddresses
	}
	txCount := int(m.MaxTransaction)
	if txCount > maxSampleTxIds {
		txCount = maxSampleTxIds
	}

	rep := &wire.MsgPong{Nonce: m.Nonce, Addresses: o.sched.Sample(addrCount)}
	for _, tx := range o.chain.GetMempool(txCount) {
		rep.TxIds = append(rep.TxIds, tx.Id)
	}
	o.send(id, rep)
}

func (o *Orchestrator) handlePong(id peer.ConnectionId, s *peer.State, m *wire.MsgPong) {
	if !s.Ping.Sent || s.Ping.OutstandingNonce != m.Nonce {
		o.offend(id, chainerr.EUnrequested)
		return
	}
	s.Ping = peer.PingState{NextPingAt: time.Now().Add(pingInterval)}

	for _, addr := range m.Addresses {
		o.sched.AddCandidate(addr, s.PeerAddr)
	}

	var unknown []primitives.TxId
	for _, txid := range m.TxIds {
		if pending, applied := o.chain.LookupTx(txid); !pending && !applied {
			unknown = append(unknown, txid)
		}
	}
	if len(unknown) > 0 {
		o.send(id, &wire.MsgTxReq{TxIds: unknown})
	}
}

// ---- Tx gossip ----

func (o *Orchestrator) handleTxNotify(id peer.ConnectionId, s *peer.State, m *wire.MsgTxNotify) {
	if !s.TxNotifyLimit.Allow(time.Now()) {
		o.offend(id, chainerr.ERestricted)
		return
	}
	var unknown []primitives.TxId
	for _, txid := range m.TxIds {
		if pending, applied := o.chain.LookupTx(txid); !pending && !applied {
			unknown = append(unknown, txid)
		}
	}
	if len(unknown) > 0 {
		o.send(id, &wire.MsgTxReq{TxIds: unknown})
	}
}

func (o *Orchestrator) handleTxReq(id peer.ConnectionId, s *peer.State, m *wire.MsgTxReq) {
	rep := &wire.MsgTxRep{}
	for _, txid := range m.TxIds {
		for _, tx := range o.chain.GetMempool(0) {
			if tx.Id == txid {
				rep.Transfers = append(rep.Transfers, tx)
				break
			}
		}
	}
	o.send(id, rep)
}

func (o *Orchestrator) handleTxRep(id peer.ConnectionId, s *peer.State, m *wire.MsgTxRep) {
	for _, tx := range m.Transfers {
		if _, err := o.chain.PutMempool(tx); err != nil {
			continue
		}
	}
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
