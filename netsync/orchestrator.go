// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netsync implements the Orchestrator: the network event loop
// (spec §4.2) that owns the connection table, per-peer sync state, the
// HeaderDownload and BlockDownload sub-components, and the connection
// schedule. It is grounded on spec §4.2 directly and on the probe /
// leader-election / rescheduling flow of the original eventloop.cpp.
package netsync

import (
	"sync/atomic"
	"time"

	"github.com/warthog-network/node/addrmgr"
	"github.com/warthog-network/node/blockchain"
	"github.com/warthog-network/node/chaincfg"
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/connmgr"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/peer"
	"github.com/warthog-network/node/wire"

	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger configures package-wide logging.
func UseLogger(l slog.Logger) { log = l }

// requestTimeout bounds how long an outstanding request may sit
// unanswered (spec §4.2 "default 2 minutes, shorter in tests").
const requestTimeout = 2 * time.Minute

// pingInterval and pongTimeout implement the ping-scheduling rule
// (spec §4.2 "after a successful Pong, sleep 10s... if no Pong in 60s,
// close").
const (
	pingInterval = 10 * time.Second
	pongTimeout  = 60 * time.Second
)

// maxPerIP is the admission-policy cap (spec §4.2, §8 invariant 10).
const maxPerIP = 3

// maxHeadersPerBatch and maxBodyRange bound BatchReq/BlockReq replies
// (spec §3 Batch "up to 100 headers"; §4.2 BlockDownload "ranges of up
// to 100 blocks").
const (
	maxHeadersPerBatch = 100
	maxBodyRange       = 100
)

// maxSampleAddresses and maxSampleTxIds bound what a Pong may offer,
// regardless of what the Ping requested (spec §4.2 "min(nAddr, bucket
// cap)").
const (
	maxSampleAddresses = 100
	maxSampleTxIds     = 500
)

// transportSender is the subset of *transport.Manager the Orchestrator
// needs; kept as an interface so tests can substitute a fake without
// opening real sockets.
type transportSender interface {
	SendMessage(id peer.ConnectionId, msg wire.Message) error
	CloseConnection(id peer.ConnectionId, reason error)
	Dial(addr string) (peer.ConnectionId, error)
	PeerAddr(id peer.ConnectionId) (string, bool)
}

// peerAuth is the subset of *addrmgr.PeerStore the Orchestrator needs.
type peerAuth interface {
	IsBanned(ip string) bool
	Offend(ip string, code chainerr.Code) error
}

// schedule is the subset of *connmgr.ConnectionSchedule the
// Orchestrator needs.
type schedule interface {
	Due(now time.Time, max int) []string
	ConnectionEstablished(addr string)
	OutboundConnectionEnded(addr string, state connmgr.ConnectionState)
	Sample(n int) []string
	AddCandidate(addr, source string)
}

// chainEngine is the subset of *blockchain.Engine the Orchestrator
// needs, named so dispatch.go and orchestrator.go share one contract.
type chainEngine interface {
	GetGrid() (descriptor uint32, length primitives.Height, worksum primitives.Worksum, grid primitives.Grid)
	GetHeader(height primitives.Height) (primitives.Header, bool)
	GetBlock(height primitives.Height) (primitives.Block, bool)
	StageSet(headers []primitives.Header) (primitives.Height, error)
	StageAdd(blocks []primitives.Block) (*blockchain.StateUpdate, error)
	SetSignedSnapshot(snap wire.SignedSnapshot) (*blockchain.StateUpdate, error)
	Snapshot() (wire.SignedSnapshot, bool)
	PutMempool(tx primitives.TransferTx) (chainhash.Hash, error)
	GetMempool(limit int) []primitives.TransferTx
	LookupTx(id primitives.TxId) (pending, applied bool)
}

// Orchestrator is the network event loop described by spec §4.2. Every
// exported method that touches its internal state must be called from
// a single goroutine (the event loop itself); the Deliver/Closed/
// Established hooks and Run's timer tick all funnel through the same
// events channel to preserve that invariant (spec §5 "a private mutex
// inside each actor guards the event queue only" — here, the channel
// plays that role instead of a mutex).
type Orchestrator struct {
	params    *chaincfg.Params
	chain     chainEngine
	transport transportSender
	peers     peerAuth
	sched     schedule

	table *connTable
	hdl   *HeaderDownload
	bdl   *BlockDownload

	nonceCounter uint64
	events       chan func()
	closing      chan struct{}

	// isolated suppresses all scheduler-driven outbound connects (spec
	// §6.4 configuration option of the same name).
	isolated bool
}

// SetIsolated toggles the isolated configuration option.
func (o *Orchestrator) SetIsolated(isolated bool) { o.isolated = isolated }

// New constructs an Orchestrator. It does not start the event loop;
// call Run in its own goroutine.
func New(params *chaincfg.Params, chain chainEngine, transport transportSender, peers peerAuth, sched schedule) *Orchestrator {
	return &Orchestrator{
		params:    params,
		chain:     chain,
		transport: transport,
		peers:     peers,
		sched:     sched,
		table:     newConnTable(maxPerIP),
		hdl:       NewHeaderDownload(maxHeadersPerBatch),
		events:    make(chan func(), 256),
		closing:   make(chan struct{}),
	}
}

// nextNonce hands out a unique per-request nonce (spec §4.2 "each
// request carries a nonce chosen by the requester").
func (o *Orchestrator) nextNonce() uint64 { return atomic.AddUint64(&o.nonceCounter, 1) }

// Run drives the event loop until Close is called: a timer tick every
// second feeds ping-scheduling, request-timeout, and outbound-connect
// decisions, interleaved with whatever Deliver/Closed/Established
// enqueue (spec §5 "await occurs only at the top of each actor's
// loop").
func (o *Orchestrator) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-o.closing:
			return
		case fn := <-o.events:
			fn()
		case now := <-ticker.C:
			o.tick(now)
		}
	}
}

// Close stops Run. It does not close any connection.
func (o *Orchestrator) Close() {
	close(o.closing)
}

// AllowIncoming is passed to transport.Manager.Listen as the pre-
// handshake admission check: banned IPs are refused before a single
// byte is exchanged. The per-source-IP cap is applied after the
// handshake, when handleEstablished inserts the connection into the
// table.
func (o *Orchestrator) AllowIncoming(ip string) error {
	if o.peers.IsBanned(ip) {
		return chainerr.ERefused
	}
	return nil
}

// Established implements transport.Inbox: it creates the PeerState for
// a freshly handshaked connection and applies the admission policy
// (spec §4.2 "Admission policy on insert").
func (o *Orchestrator) Established(id peer.ConnectionId, addr string, inbound bool) {
	o.events <- func() { o.handleEstablished(id, addr, inbound) }
}

func (o *Orchestrator) handleEstablished(id peer.ConnectionId, addr string, inbound bool) {
	ip := hostOf(addr)
	s := peer.New(id, inbound, addr)
	res, evicted := o.table.Insert(s, ip, false)
	if res == rejected {
		o.transport.CloseConnection(id, chainerr.EMaxConnections)
		return
	}
	if res == admittedAfterEviction {
		o.transport.CloseConnection(evicted, chainerr.EDuplicateConnection)
	}
	if !inbound {
		o.sched.ConnectionEstablished(addr)
	}
	o.sendInit(id)
}

// Deliver implements transport.Inbox.
func (o *Orchestrator) Deliver(id peer.ConnectionId, msg wire.Message) {
	o.events <- func() { o.dispatch(id, msg) }
}

// Closed implements transport.Inbox: it retires id from every
// component's table (spec §9 "a single Closed(id) message retires the
// id from every other actor's table").
func (o *Orchestrator) Closed(id peer.ConnectionId, reason error) {
	o.events <- func() { o.handleClosed(id, reason) }
}

func (o *Orchestrator) handleClosed(id peer.ConnectionId, reason error) {
	s, ok := o.table.Get(id)
	o.table.Remove(id)
	o.hdl.Unregister(id)
	if o.bdl != nil {
		o.bdl.Reschedule(id)
	}
	if !ok {
		return
	}
	if !s.Inbound {
		state := connmgr.ConnectedInitialized
		if !s.Initialized {
			state = connmgr.ConnectedUninitialized
		}
		if reason != nil {
			if code, isCode := reason.(chainerr.Code); isCode && code == chainerr.ETimeout {
				state = connmgr.NotConnected
			}
		}
		o.sched.OutboundConnectionEnded(s.PeerAddr, state)
	}
	if code, isCode := reason.(chainerr.Code); isCode && code.LeadsToBan() {
		o.peers.Offend(hostOf(s.PeerAddr), code)
	}
}

func hostOf(addr string) string {
	return addrmgr.NormalizeIP(stringAddr(addr))
}

// stringAddr adapts a bare "host:port" string to the net.Addr shape
// addrmgr.NormalizeIP expects.
type stringAddr string

func (a stringAddr) Network() string { return "tcp" }
func (a stringAddr) String() string  { return string(a) }

// sendInit sends our Init message immediately after a connection is
// admitted (spec §4.2 "Send our Init in reply" — sent unconditionally
// first here since either side may open).
func (o *Orchestrator) sendInit(id peer.ConnectionId) {
	descriptor, length, worksum, grid := o.chain.GetGrid()
	snap, _ := o.chain.Snapshot()
	_ = descriptor // Init carries no descriptor field (spec §4.2); it is
	// implicit in the length/worksum/grid triple the peer compares.
	msg := &wire.MsgInit{
		Version:     1,
		ChainLength: uint32(length),
		Worksum:     worksum.Bytes(),
		Grid:        grid,
		PinHeight:   snap.Height,
		PinHash:     snap.Hash,
	}
	o.send(id, msg)
}

func (o *Orchestrator) send(id peer.ConnectionId, msg wire.Message) {
	if err := o.transport.SendMessage(id, msg); err != nil {
		log.Debugf("send to %d failed: %v", id, err)
	}
}

// offend reports ip's peer for code and closes the connection; used
// throughout dispatch.go on protocol violations.
func (o *Orchestrator) offend(id peer.ConnectionId, code chainerr.Code) {
	if s, ok := o.table.Get(id); ok {
		o.peers.Offend(hostOf(s.PeerAddr), code)
	}
	o.transport.CloseConnection(id, code)
}

// publish forwards a ChainEngine StateUpdate to every initialized peer
// and updates every peerChain (spec §4.2 Publishing).
func (o *Orchestrator) publish(update *blockchain.StateUpdate) {
	if update == nil {
		return
	}
	if update.Append != nil {
		a := update.Append
		msg := &wire.MsgAppend{
			Height:       uint32(a.Height),
			Header:       a.Header,
			WorksumDelta: a.WorksumDelta.Bytes(),
			GridDelta:    a.GridDelta,
		}
		o.table.Each(func(s *peer.State) {
			if !s.Initialized {
				return
			}
			s.OnConsensusAppend(a.Header, a.WorksumDelta, a.GridDelta)
			o.send(s.Id, msg)
		})
	}
	if update.Fork != nil {
		f := update.Fork
		msg := &wire.MsgFork{
			ForkHeight: uint32(f.ForkHeight),
			Worksum:    f.Worksum.Bytes(),
			NewHead:    f.NewHead,
			GridSuffix: f.GridSuffix,
		}
		o.table.Each(func(s *peer.State) {
			if !s.Initialized {
				return
			}
			s.OnConsensusFork(f.ForkHeight, f.Worksum, f.GridSuffix)
			o.send(s.Id, msg)
		})
	}
	o.runSyncDecisions()
}

// tick drives the per-second timer work: ping scheduling, request
// timeouts, and scheduler-driven outbound connects (spec §5
// "Cancellation and timeouts").
func (o *Orchestrator) tick(now time.Time) {
	var toClose []peer.ConnectionId
	o.table.Each(func(s *peer.State) {
		for kind, req := range s.Outstanding {
			if now.After(req.Deadline) {
				toClose = append(toClose, s.Id)
				_ = kind
				return
			}
		}
		if s.Ping.Sent {
			if now.Sub(s.Ping.SentAt) > pongTimeout {
				toClose = append(toClose, s.Id)
			}
			return
		}
		if s.Initialized && (s.Ping.NextPingAt.IsZero() || !now.Before(s.Ping.NextPingAt)) {
			o.sendPing(s)
		}
	})
	for _, id := range toClose {
		o.offend(id, chainerr.ETimeout)
	}

	if !o.isolated {
		for _, addr := range o.sched.Due(now, 8) {
			if _, err := o.transport.Dial(addr); err != nil {
				o.sched.OutboundConnectionEnded(addr, connmgr.NotConnected)
			}
		}
	}
}

func (o *Orchestrator) sendPing(s *peer.State) {
	if !s.PingLimit.Allow(time.Now()) {
		return
	}
	var prio uint64
	if snap, ok := o.chain.Snapshot(); ok {
		prio = snap.Priority
	}
	nonce := o.nextNonce()
	s.Ping = peer.PingState{OutstandingNonce: nonce, Sent: true, SentAt: time.Now()}
	o.send(s.Id, &wire.MsgPing{
		Nonce:          nonce,
		SnapshotPrio:   prio,
		MaxAddresses:   maxSampleAddresses,
		MaxTransaction: maxSampleTxIds,
	})
}
