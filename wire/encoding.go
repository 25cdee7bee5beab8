// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// MaxVarBytesLen caps any single varbytes-prefixed field, preventing a
// malicious length prefix from driving an unbounded allocation.
const MaxVarBytesLen = 32 * 1024 * 1024

func writeUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func readUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeHash(w io.Writer, h chainhash.Hash) error {
	_, err := w.Write(h[:])
	return err
}

func readHash(r io.Reader) (chainhash.Hash, error) {
	var h chainhash.Hash
	_, err := io.ReadFull(r, h[:])
	return h, err
}

func writeVarBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readVarBytes(r io.Reader, max int) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if int(n) > max {
		return nil, fmt.Errorf("wire: varbytes length %d exceeds max %d", n, max)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeHeader(w io.Writer, h primitives.Header) error {
	b := h.Serialize()
	_, err := w.Write(b[:])
	return err
}

func readHeader(r io.Reader) (primitives.Header, error) {
	var b [primitives.HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return primitives.Header{}, err
	}
	return primitives.ParseHeader(b[:])
}

func writeString(w io.Writer, s string) error {
	return writeVarBytes(w, []byte(s))
}

func readString(r io.Reader, max int) (string, error) {
	b, err := readVarBytes(r, max)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
