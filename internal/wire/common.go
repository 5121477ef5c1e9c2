package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

var le = binary.LittleEndian

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return le.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return le.Uint64(b[:]), nil
}

func readHash(r io.Reader, h *chainhash.Hash) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	le.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	le.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadVarInt reads a compact size integer. Encodings using more bytes than needed
// for the value are rejected so that every accepted encoding re-encodes identically.
func ReadVarInt(r io.Reader) (uint64, error) {
	var v bt.VarInt
	n, err := v.ReadFrom(r)
	if err != nil {
		return 0, err
	}

	if n != int64(v.Length()) {
		return 0, fmt.Errorf("%w: value %d encoded in %d bytes", ErrNonCanonical, uint64(v), n)
	}

	return uint64(v), nil
}

// WriteVarInt writes v using the 1, 3, 5 or 9 byte compact size encoding.
func WriteVarInt(w io.Writer, v uint64) error {
	_, err := w.Write(bt.VarInt(v).Bytes())
	return err
}

// VarIntSerializeSize returns the number of bytes WriteVarInt produces for v.
func VarIntSerializeSize(v uint64) int {
	return bt.VarInt(v).Length()
}

// ReadVarBytes reads a compact size prefixed byte slice of at most maxAllowed bytes.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > maxAllowed {
		return nil, fmt.Errorf("%w: %s is %d bytes, max %d", ErrTooManyElements, fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err = io.ReadFull(r, b); err != nil {
		return nil, err
	}

	return b, nil
}

// WriteVarBytes writes b prefixed with its compact size length.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}

	_, err := w.Write(b)
	return err
}
