package wire

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

// BlockHeaderLen is the serialized size of a block header.
const BlockHeaderLen = 80

// Smallest serialized sizes, used to bound element counts read from a peer.
const (
	minTxPayload    = 10
	minTxInPayload  = chainhash.HashSize + 4 + 1 + 4
	minTxOutPayload = 8 + 1
)

// BlockHeader is the 80 byte header identifying a block.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// BlockHash computes the double SHA-256 of the serialized header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(BlockHeaderLen)
	_ = h.Serialize(&buf)

	return chainhash.DoubleHashH(buf.Bytes())
}

func (h *BlockHeader) Deserialize(r io.Reader) error {
	var b [BlockHeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}

	h.Version = int32(le.Uint32(b[0:4])) // #nosec G115
	copy(h.PrevBlock[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = le.Uint32(b[68:72])
	h.Bits = le.Uint32(b[72:76])
	h.Nonce = le.Uint32(b[76:80])

	return nil
}

func (h *BlockHeader) Serialize(w io.Writer) error {
	var b [BlockHeaderLen]byte
	le.PutUint32(b[0:4], uint32(h.Version)) // #nosec G115
	copy(b[4:36], h.PrevBlock[:])
	copy(b[36:68], h.MerkleRoot[:])
	le.PutUint32(b[68:72], h.Timestamp)
	le.PutUint32(b[72:76], h.Bits)
	le.PutUint32(b[76:80], h.Nonce)

	_, err := w.Write(b[:])
	return err
}

// MsgBlock is a block header followed by its transactions. Transactions are kept as
// their raw serialized bytes.
type MsgBlock struct {
	Header       BlockHeader
	Transactions [][]byte
}

func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header:       *header,
		Transactions: make([][]byte, 0),
	}
}

// NewBlockFromBytes decodes a block message payload, as produced by EncodePayload.
func NewBlockFromBytes(payload []byte) (*MsgBlock, error) {
	r := bytes.NewReader(payload)

	msg := &MsgBlock{}
	if err := msg.Decode(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after block", ErrMalformedPayload, r.Len())
	}

	return msg, nil
}

func (msg *MsgBlock) AddTransaction(rawTx []byte) {
	msg.Transactions = append(msg.Transactions, rawTx)
}

// BlockHash returns the hash of the block header.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns the double SHA-256 of every raw transaction, in block order.
func (msg *MsgBlock) TxHashes() []*chainhash.Hash {
	hashes := make([]*chainhash.Hash, 0, len(msg.Transactions))
	for _, raw := range msg.Transactions {
		h := chainhash.DoubleHashH(raw)
		hashes = append(hashes, &h)
	}

	return hashes
}

func (msg *MsgBlock) Decode(r io.Reader) error {
	if err := msg.Header.Deserialize(r); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	if count > math.MaxUint32/minTxPayload {
		return fmt.Errorf("%w: %d transactions", ErrTooManyElements, count)
	}

	if err = checkRemaining(r, count, minTxPayload); err != nil {
		return fmt.Errorf("transaction count: %w", err)
	}

	msg.Transactions = make([][]byte, 0, min(count, 1<<16))

	var raw bytes.Buffer
	for i := uint64(0); i < count; i++ {
		raw.Reset()

		if err = copyTx(&raw, r); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}

		msg.Transactions = append(msg.Transactions, bytes.Clone(raw.Bytes()))
	}

	return nil
}

// copyTx copies one serialized transaction from r to w without interpreting it. Lengths
// read from the stream never size an allocation, and are checked against the bytes left
// when r knows its length.
func copyTx(w *bytes.Buffer, r io.Reader) error {
	tr := io.TeeReader(r, w)

	if _, err := io.CopyN(w, r, 4); err != nil {
		return err
	}

	inputs, err := ReadVarInt(tr)
	if err != nil {
		return err
	}

	if err = checkRemaining(r, inputs, minTxInPayload); err != nil {
		return fmt.Errorf("input count: %w", err)
	}

	for range inputs {
		// previous outpoint
		if _, err = io.CopyN(w, r, chainhash.HashSize+4); err != nil {
			return err
		}

		if err = copyScript(w, tr, r); err != nil {
			return err
		}

		// sequence
		if _, err = io.CopyN(w, r, 4); err != nil {
			return err
		}
	}

	outputs, err := ReadVarInt(tr)
	if err != nil {
		return err
	}

	if err = checkRemaining(r, outputs, minTxOutPayload); err != nil {
		return fmt.Errorf("output count: %w", err)
	}

	for range outputs {
		// satoshis
		if _, err = io.CopyN(w, r, 8); err != nil {
			return err
		}

		if err = copyScript(w, tr, r); err != nil {
			return err
		}
	}

	// lock time
	_, err = io.CopyN(w, r, 4)
	return err
}

func copyScript(w *bytes.Buffer, tr, r io.Reader) error {
	l, err := ReadVarInt(tr)
	if err != nil {
		return err
	}

	if err = checkRemaining(r, l, 1); err != nil {
		return fmt.Errorf("script length: %w", err)
	}

	if l > math.MaxInt64 {
		return fmt.Errorf("%w: script length %d", ErrTooManyElements, l)
	}

	_, err = io.CopyN(w, r, int64(l))
	return err
}

// checkRemaining fails when n elements of at least size bytes each cannot fit into what is
// left of r. Readers not reporting their length are not checked.
func checkRemaining(r io.Reader, n uint64, size uint64) error {
	lr, ok := r.(interface{ Len() int })
	if !ok {
		return nil
	}

	left := uint64(max(lr.Len(), 0))
	if n > left/size {
		return fmt.Errorf("%w: %d elements of at least %d bytes, %d bytes left", ErrTooManyElements, n, size, left)
	}

	return nil
}

func (msg *MsgBlock) Encode(w io.Writer) error {
	if err := msg.Header.Serialize(w); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}

	for _, raw := range msg.Transactions {
		if _, err := w.Write(raw); err != nil {
			return err
		}
	}

	return nil
}

func (msg *MsgBlock) Command() string {
	return CmdBlock
}

func (msg *MsgBlock) MaxPayloadLength() uint64 {
	return math.MaxUint32
}
