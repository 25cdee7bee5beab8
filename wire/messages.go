// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// maxGridEntries/maxTxIdsPerMsg/maxTxsPerMsg/maxAddrsPerMsg bound
// variable-length fields against a malicious or buggy peer (spec §4.3
// "Maximum frame size per type is bounded").
const (
	maxGridEntries  = 1 << 20
	maxTxIdsPerMsg  = 50_000
	maxTxsPerMsg    = 10_000
	maxAddrsPerMsg  = 10_000
	maxHeadersInMsg = primitives.MaxBatchSize
	maxBodiesInMsg  = primitives.MaxBatchSize
)

func writeGrid(w io.Writer, g primitives.Grid) error {
	if err := writeUint32(w, uint32(len(g))); err != nil {
		return err
	}
	for _, h := range g {
		if err := writeHash(w, h); err != nil {
			return err
		}
	}
	return nil
}

func readGrid(r io.Reader) (primitives.Grid, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > maxGridEntries {
		return nil, messageError("readGrid", "grid too large")
	}
	g := make(primitives.Grid, n)
	for i := range g {
		g[i], err = readHash(r)
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func writeTxId(w io.Writer, id primitives.TxId) error {
	if err := writeUint64(w, uint64(id.AccountId)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(id.PinHeight)); err != nil {
		return err
	}
	return writeUint32(w, id.NonceId)
}

func readTxId(r io.Reader) (primitives.TxId, error) {
	acc, err := readUint64(r)
	if err != nil {
		return primitives.TxId{}, err
	}
	pin, err := readUint32(r)
	if err != nil {
		return primitives.TxId{}, err
	}
	nonce, err := readUint32(r)
	if err != nil {
		return primitives.TxId{}, err
	}
	return primitives.TxId{AccountId: primitives.AccountId(acc), PinHeight: primitives.Height(pin), NonceId: nonce}, nil
}

func writeTransferTx(w io.Writer, tx primitives.TransferTx) error {
	if err := writeTxId(w, tx.Id); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(tx.ToAccount)); err != nil {
		return err
	}
	if err := writeUint64(w, tx.Amount); err != nil {
		return err
	}
	if err := writeUint64(w, tx.Fee); err != nil {
		return err
	}
	if err := writeHash(w, tx.PinHash); err != nil {
		return err
	}
	_, err := w.Write(tx.Signature[:])
	return err
}

func readTransferTx(r io.Reader) (primitives.TransferTx, error) {
	var tx primitives.TransferTx
	var err error
	if tx.Id, err = readTxId(r); err != nil {
		return tx, err
	}
	acc, err := readUint64(r)
	if err != nil {
		return tx, err
	}
	tx.ToAccount = primitives.AccountId(acc)
	if tx.Amount, err = readUint64(r); err != nil {
		return tx, err
	}
	if tx.Fee, err = readUint64(r); err != nil {
		return tx, err
	}
	if tx.PinHash, err = readHash(r); err != nil {
		return tx, err
	}
	if _, err = io.ReadFull(r, tx.Signature[:]); err != nil {
		return tx, err
	}
	return tx, nil
}

// ---- Init ----

// MsgInit is the mandatory first message on every connection (spec
// §4.2): each side announces its claimed chain summary.
type MsgInit struct {
	Version     uint32
	ChainLength uint32
	Worksum     [32]byte
	Grid        primitives.Grid
	PinHeight   uint32
	PinHash     chainhash.Hash
	ListenPort  uint16
}

func (m *MsgInit) Command() string { return CmdInit }

func (m *MsgInit) Encode(w io.Writer) error {
	for _, fn := range []func() error{
		func() error { return writeUint32(w, m.Version) },
		func() error { return writeUint32(w, m.ChainLength) },
		func() error { _, err := w.Write(m.Worksum[:]); return err },
		func() error { return writeGrid(w, m.Grid) },
		func() error { return writeUint32(w, m.PinHeight) },
		func() error { return writeHash(w, m.PinHash) },
		func() error { return writeUint16(w, m.ListenPort) },
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgInit) Decode(r io.Reader) error {
	var err error
	if m.Version, err = readUint32(r); err != nil {
		return err
	}
	if m.ChainLength, err = readUint32(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.Worksum[:]); err != nil {
		return err
	}
	if m.Grid, err = readGrid(r); err != nil {
		return err
	}
	if m.PinHeight, err = readUint32(r); err != nil {
		return err
	}
	if m.PinHash, err = readHash(r); err != nil {
		return err
	}
	if m.ListenPort, err = readUint16(r); err != nil {
		return err
	}
	return nil
}

// ---- Append ----

// MsgAppend announces a single new block appended to the sender's
// chain (spec §4.2).
type MsgAppend struct {
	Height       uint32
	Header       primitives.Header
	WorksumDelta [32]byte
	GridDelta    primitives.Grid
}

func (m *MsgAppend) Command() string { return CmdAppend }

func (m *MsgAppend) Encode(w io.Writer) error {
	if err := writeUint32(w, m.Height); err != nil {
		return err
	}
	if err := writeHeader(w, m.Header); err != nil {
		return err
	}
	if _, err := w.Write(m.WorksumDelta[:]); err != nil {
		return err
	}
	return writeGrid(w, m.GridDelta)
}

func (m *MsgAppend) Decode(r io.Reader) error {
	var err error
	if m.Height, err = readUint32(r); err != nil {
		return err
	}
	if m.Header, err = readHeader(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.WorksumDelta[:]); err != nil {
		return err
	}
	if m.GridDelta, err = readGrid(r); err != nil {
		return err
	}
	return nil
}

// ---- Fork ----

// MsgFork announces the sender has reorganized onto a new chain from
// forkHeight (spec §4.2).
type MsgFork struct {
	ForkHeight uint32
	Worksum    [32]byte
	NewHead    primitives.Header
	GridSuffix primitives.Grid
}

func (m *MsgFork) Command() string { return CmdFork }

func (m *MsgFork) Encode(w io.Writer) error {
	if err := writeUint32(w, m.ForkHeight); err != nil {
		return err
	}
	if _, err := w.Write(m.Worksum[:]); err != nil {
		return err
	}
	if err := writeHeader(w, m.NewHead); err != nil {
		return err
	}
	return writeGrid(w, m.GridSuffix)
}

func (m *MsgFork) Decode(r io.Reader) error {
	var err error
	if m.ForkHeight, err = readUint32(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.Worksum[:]); err != nil {
		return err
	}
	if m.NewHead, err = readHeader(r); err != nil {
		return err
	}
	if m.GridSuffix, err = readGrid(r); err != nil {
		return err
	}
	return nil
}

// ---- SignedPinRollback / Leader ----

// SignedSnapshot is the advisory finality marker spec's Glossary
// describes: (height, hash, priority, signature).
type SignedSnapshot struct {
	Height    uint32
	Hash      chainhash.Hash
	Priority  uint64
	Signature primitives.Signature
}

func writeSnapshot(w io.Writer, s SignedSnapshot) error {
	if err := writeUint32(w, s.Height); err != nil {
		return err
	}
	if err := writeHash(w, s.Hash); err != nil {
		return err
	}
	if err := writeUint64(w, s.Priority); err != nil {
		return err
	}
	_, err := w.Write(s.Signature[:])
	return err
}

func readSnapshot(r io.Reader) (SignedSnapshot, error) {
	var s SignedSnapshot
	var err error
	if s.Height, err = readUint32(r); err != nil {
		return s, err
	}
	if s.Hash, err = readHash(r); err != nil {
		return s, err
	}
	if s.Priority, err = readUint64(r); err != nil {
		return s, err
	}
	if _, err = io.ReadFull(r, s.Signature[:]); err != nil {
		return s, err
	}
	return s, nil
}

// MsgSignedPinRollback carries a signed snapshot that may force a
// rollback to (at least) its height (spec §4.2).
type MsgSignedPinRollback struct {
	Snapshot     SignedSnapshot
	ShrinkLength uint32
}

func (m *MsgSignedPinRollback) Command() string { return CmdSignedPinRollback }

func (m *MsgSignedPinRollback) Encode(w io.Writer) error {
	if err := writeSnapshot(w, m.Snapshot); err != nil {
		return err
	}
	return writeUint32(w, m.ShrinkLength)
}

func (m *MsgSignedPinRollback) Decode(r io.Reader) error {
	var err error
	if m.Snapshot, err = readSnapshot(r); err != nil {
		return err
	}
	m.ShrinkLength, err = readUint32(r)
	return err
}

// MsgLeader carries a signed snapshot unconditionally (spec §4.2):
// forwarded to ChainEngine whenever its priority exceeds what the
// peer has acknowledged.
type MsgLeader struct {
	Snapshot SignedSnapshot
}

func (m *MsgLeader) Command() string { return CmdLeader }

func (m *MsgLeader) Encode(w io.Writer) error { return writeSnapshot(w, m.Snapshot) }

func (m *MsgLeader) Decode(r io.Reader) error {
	s, err := readSnapshot(r)
	m.Snapshot = s
	return err
}

// ---- Batch request/reply ----

// Selector identifies which chain instance (by descriptor) and which
// height range a BatchReq/BlockReq wants served from (spec §4.2).
type Selector struct {
	Descriptor  uint32
	StartHeight uint32
	Length      uint32
}

func writeSelector(w io.Writer, s Selector) error {
	if err := writeUint32(w, s.Descriptor); err != nil {
		return err
	}
	if err := writeUint32(w, s.StartHeight); err != nil {
		return err
	}
	return writeUint32(w, s.Length)
}

func readSelector(r io.Reader) (Selector, error) {
	var s Selector
	var err error
	if s.Descriptor, err = readUint32(r); err != nil {
		return s, err
	}
	if s.StartHeight, err = readUint32(r); err != nil {
		return s, err
	}
	s.Length, err = readUint32(r)
	return s, err
}

// MsgBatchReq requests up to Selector.Length headers starting at
// Selector.StartHeight from the chain identified by
// Selector.Descriptor (spec §4.2).
type MsgBatchReq struct {
	Nonce    uint64
	Selector Selector
}

func (m *MsgBatchReq) Command() string { return CmdBatchReq }

func (m *MsgBatchReq) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	return writeSelector(w, m.Selector)
}

func (m *MsgBatchReq) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	m.Selector, err = readSelector(r)
	return err
}

// MsgBatchRep answers a MsgBatchReq; Headers is empty if the
// requested descriptor was unknown (spec §4.2).
type MsgBatchRep struct {
	Nonce   uint64
	Headers []primitives.Header
}

func (m *MsgBatchRep) Command() string { return CmdBatchRep }

func (m *MsgBatchRep) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(m.Headers))); err != nil {
		return err
	}
	for _, h := range m.Headers {
		if err := writeHeader(w, h); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgBatchRep) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	n, err := readUint32(r)
	if err != nil {
		return err
	}
	if n > maxHeadersInMsg {
		return messageError("MsgBatchRep.Decode", "too many headers")
	}
	m.Headers = make([]primitives.Header, n)
	for i := range m.Headers {
		if m.Headers[i], err = readHeader(r); err != nil {
			return err
		}
	}
	return nil
}

// ---- Probe request/reply ----

// MsgProbeReq asks a peer for the header at (Descriptor, Height), used
// for fork-height binary search (spec §4.2).
type MsgProbeReq struct {
	Nonce      uint64
	Descriptor uint32
	Height     uint32
}

func (m *MsgProbeReq) Command() string { return CmdProbeReq }

func (m *MsgProbeReq) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeUint32(w, m.Descriptor); err != nil {
		return err
	}
	return writeUint32(w, m.Height)
}

func (m *MsgProbeReq) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	if m.Descriptor, err = readUint32(r); err != nil {
		return err
	}
	m.Height, err = readUint32(r)
	return err
}

// MsgProbeRep answers MsgProbeReq with the requested header (if the
// descriptor is known to us, possibly from a recently-retired chain),
// plus our current header at the same height regardless (spec §4.2).
type MsgProbeRep struct {
	Nonce      uint64
	HasReq     bool
	Requested  primitives.Header
	HasCurrent bool
	Current    primitives.Header
}

func (m *MsgProbeRep) Command() string { return CmdProbeRep }

func (m *MsgProbeRep) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeUint8(w, boolByte(m.HasReq)); err != nil {
		return err
	}
	if m.HasReq {
		if err := writeHeader(w, m.Requested); err != nil {
			return err
		}
	}
	if err := writeUint8(w, boolByte(m.HasCurrent)); err != nil {
		return err
	}
	if m.HasCurrent {
		if err := writeHeader(w, m.Current); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgProbeRep) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	b, err := readUint8(r)
	if err != nil {
		return err
	}
	m.HasReq = b != 0
	if m.HasReq {
		if m.Requested, err = readHeader(r); err != nil {
			return err
		}
	}
	b, err = readUint8(r)
	if err != nil {
		return err
	}
	m.HasCurrent = b != 0
	if m.HasCurrent {
		if m.Current, err = readHeader(r); err != nil {
			return err
		}
	}
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// ---- Block request/reply ----

// MsgBlockReq requests bodies for Selector's range, provided the
// responder can serve from that descriptor (spec §4.2).
type MsgBlockReq struct {
	Nonce    uint64
	Selector Selector
}

func (m *MsgBlockReq) Command() string { return CmdBlockReq }

func (m *MsgBlockReq) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	return writeSelector(w, m.Selector)
}

func (m *MsgBlockReq) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	m.Selector, err = readSelector(r)
	return err
}

// EncodedBody is a wire-ready rendering of primitives.Body: seed, new
// accounts, rewards, transfers, token actions.
type EncodedBody struct {
	RandomSeed   [4]byte
	NewAccounts  []primitives.Address
	Rewards      []primitives.RewardTx
	Transfers    []primitives.TransferTx
	TokenActions []primitives.TokenAction
}

func writeBody(w io.Writer, b EncodedBody) error {
	if _, err := w.Write(b.RandomSeed[:]); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(b.NewAccounts))); err != nil {
		return err
	}
	for _, a := range b.NewAccounts {
		if _, err := w.Write(a[:]); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(b.Rewards))); err != nil {
		return err
	}
	for _, rw := range b.Rewards {
		if err := writeUint64(w, uint64(rw.ToAccount)); err != nil {
			return err
		}
		if err := writeUint64(w, rw.Amount); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(b.Transfers))); err != nil {
		return err
	}
	for _, t := range b.Transfers {
		if err := writeTransferTx(w, t); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(b.TokenActions))); err != nil {
		return err
	}
	for _, a := range b.TokenActions {
		if err := writeUint8(w, uint8(a.Kind)); err != nil {
			return err
		}
		if err := writeUint64(w, uint64(a.Account)); err != nil {
			return err
		}
		if err := writeVarBytes(w, a.Payload); err != nil {
			return err
		}
	}
	return nil
}

func readBody(r io.Reader) (EncodedBody, error) {
	var b EncodedBody
	if _, err := io.ReadFull(r, b.RandomSeed[:]); err != nil {
		return b, err
	}
	n, err := readUint32(r)
	if err != nil {
		return b, err
	}
	if n > maxAddrsPerMsg {
		return b, messageError("readBody", "too many new accounts")
	}
	b.NewAccounts = make([]primitives.Address, n)
	for i := range b.NewAccounts {
		if _, err := io.ReadFull(r, b.NewAccounts[i][:]); err != nil {
			return b, err
		}
	}
	if n, err = readUint32(r); err != nil {
		return b, err
	}
	b.Rewards = make([]primitives.RewardTx, n)
	for i := range b.Rewards {
		acc, err := readUint64(r)
		if err != nil {
			return b, err
		}
		amt, err := readUint64(r)
		if err != nil {
			return b, err
		}
		b.Rewards[i] = primitives.RewardTx{ToAccount: primitives.AccountId(acc), Amount: amt}
	}
	if n, err = readUint32(r); err != nil {
		return b, err
	}
	if n > maxTxsPerMsg {
		return b, messageError("readBody", "too many transfers")
	}
	b.Transfers = make([]primitives.TransferTx, n)
	for i := range b.Transfers {
		if b.Transfers[i], err = readTransferTx(r); err != nil {
			return b, err
		}
	}
	if n, err = readUint32(r); err != nil {
		return b, err
	}
	b.TokenActions = make([]primitives.TokenAction, n)
	for i := range b.TokenActions {
		kind, err := readUint8(r)
		if err != nil {
			return b, err
		}
		acc, err := readUint64(r)
		if err != nil {
			return b, err
		}
		payload, err := readVarBytes(r, MaxVarBytesLen)
		if err != nil {
			return b, err
		}
		b.TokenActions[i] = primitives.TokenAction{Kind: primitives.TokenActionKind(kind), Account: primitives.AccountId(acc), Payload: payload}
	}
	return b, nil
}

// MsgBlockRep answers MsgBlockReq with the requested bodies, in the
// same order as the requested range.
type MsgBlockRep struct {
	Nonce  uint64
	Bodies []EncodedBody
}

func (m *MsgBlockRep) Command() string { return CmdBlockRep }

func (m *MsgBlockRep) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(m.Bodies))); err != nil {
		return err
	}
	for _, b := range m.Bodies {
		if err := writeBody(w, b); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgBlockRep) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	n, err := readUint32(r)
	if err != nil {
		return err
	}
	if n > maxBodiesInMsg {
		return messageError("MsgBlockRep.Decode", "too many bodies")
	}
	m.Bodies = make([]EncodedBody, n)
	for i := range m.Bodies {
		if m.Bodies[i], err = readBody(r); err != nil {
			return err
		}
	}
	return nil
}

// ---- Ping / Pong ----

// MsgPing carries the sender's current snapshot priority and how many
// addresses/tx-ids it is willing to receive in reply (spec §4.2).
type MsgPing struct {
	Nonce          uint64
	SnapshotPrio   uint64
	MaxAddresses   uint32
	MaxTransaction uint32
}

func (m *MsgPing) Command() string { return CmdPing }

func (m *MsgPing) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeUint64(w, m.SnapshotPrio); err != nil {
		return err
	}
	if err := writeUint32(w, m.MaxAddresses); err != nil {
		return err
	}
	return writeUint32(w, m.MaxTransaction)
}

func (m *MsgPing) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	if m.SnapshotPrio, err = readUint64(r); err != nil {
		return err
	}
	if m.MaxAddresses, err = readUint32(r); err != nil {
		return err
	}
	m.MaxTransaction, err = readUint32(r)
	return err
}

// MsgPong replies to MsgPing with a bucket-balanced address sample and
// a mempool tx-id sample (spec §4.2).
type MsgPong struct {
	Nonce     uint64
	Addresses []string
	TxIds     []primitives.TxId
}

func (m *MsgPong) Command() string { return CmdPong }

func (m *MsgPong) Encode(w io.Writer) error {
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(m.Addresses))); err != nil {
		return err
	}
	for _, a := range m.Addresses {
		if err := writeString(w, a); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(m.TxIds))); err != nil {
		return err
	}
	for _, id := range m.TxIds {
		if err := writeTxId(w, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgPong) Decode(r io.Reader) error {
	var err error
	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}
	n, err := readUint32(r)
	if err != nil {
		return err
	}
	if n > maxAddrsPerMsg {
		return messageError("MsgPong.Decode", "too many addresses")
	}
	m.Addresses = make([]string, n)
	for i := range m.Addresses {
		if m.Addresses[i], err = readString(r, 256); err != nil {
			return err
		}
	}
	if n, err = readUint32(r); err != nil {
		return err
	}
	if n > maxTxIdsPerMsg {
		return messageError("MsgPong.Decode", "too many txids")
	}
	m.TxIds = make([]primitives.TxId, n)
	for i := range m.TxIds {
		if m.TxIds[i], err = readTxId(r); err != nil {
			return err
		}
	}
	return nil
}

// ---- Tx gossip ----

// MsgTxNotify announces newly seen mempool tx-ids (spec §4.2).
type MsgTxNotify struct {
	TxIds []primitives.TxId
}

func (m *MsgTxNotify) Command() string { return CmdTxNotify }

func (m *MsgTxNotify) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(m.TxIds))); err != nil {
		return err
	}
	for _, id := range m.TxIds {
		if err := writeTxId(w, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgTxNotify) Decode(r io.Reader) error {
	n, err := readUint32(r)
	if err != nil {
		return err
	}
	if n > maxTxIdsPerMsg {
		return messageError("MsgTxNotify.Decode", "too many txids")
	}
	m.TxIds = make([]primitives.TxId, n)
	for i := range m.TxIds {
		if m.TxIds[i], err = readTxId(r); err != nil {
			return err
		}
	}
	return nil
}

// MsgTxReq requests the full transactions for the listed ids (spec
// §4.2).
type MsgTxReq struct {
	TxIds []primitives.TxId
}

func (m *MsgTxReq) Command() string { return CmdTxReq }

func (m *MsgTxReq) Encode(w io.Writer) error { return (&MsgTxNotify{TxIds: m.TxIds}).Encode(w) }

func (m *MsgTxReq) Decode(r io.Reader) error {
	var n MsgTxNotify
	if err := n.Decode(r); err != nil {
		return err
	}
	m.TxIds = n.TxIds
	return nil
}

// MsgTxRep answers MsgTxReq with the available transactions (spec
// §4.2).
type MsgTxRep struct {
	Transfers []primitives.TransferTx
}

func (m *MsgTxRep) Command() string { return CmdTxRep }

func (m *MsgTxRep) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(m.Transfers))); err != nil {
		return err
	}
	for _, t := range m.Transfers {
		if err := writeTransferTx(w, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgTxRep) Decode(r io.Reader) error {
	n, err := readUint32(r)
	if err != nil {
		return err
	}
	if n > maxTxsPerMsg {
		return messageError("MsgTxRep.Decode", "too many transfers")
	}
	m.Transfers = make([]primitives.TransferTx, n)
	for i := range m.Transfers {
		if m.Transfers[i], err = readTransferTx(r); err != nil {
			return err
		}
	}
	return nil
}
