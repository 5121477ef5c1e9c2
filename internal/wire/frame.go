package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ccoveille/go-safecast"
	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

const (
	// MessageHeaderSize is the size of the frame header: magic, command, length and checksum.
	MessageHeaderSize = 24

	// CommandSize is the fixed size of the NUL padded command field.
	CommandSize = 12

	// DefaultMaxPayload limits the payload size accepted by Decode unless overridden.
	DefaultMaxPayload uint64 = 32 * 1024 * 1024
)

// Header is the decoded fixed size part of a frame.
type Header struct {
	Net      BitcoinNet
	Command  string
	Length   uint32
	Checksum [4]byte
}

type decodeConfig struct {
	maxPayload uint64
}

type DecodeOption func(c *decodeConfig)

// WithMaxPayload overrides DefaultMaxPayload.
func WithMaxPayload(n uint64) DecodeOption {
	return func(c *decodeConfig) {
		c.maxPayload = n
	}
}

func checksum(payload []byte) [4]byte {
	var sum [4]byte
	copy(sum[:], chainhash.DoubleHashB(payload)[:4])
	return sum
}

// EncodePayload serializes msg without the frame header.
func EncodePayload(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode serializes msg into a complete frame for network net.
func Encode(msg Message, net BitcoinNet) ([]byte, error) {
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		return nil, fmt.Errorf("%w: command %q is longer than %d bytes", ErrMalformedCommand, cmd, CommandSize)
	}

	payload, err := EncodePayload(msg)
	if err != nil {
		return nil, err
	}

	length, err := safecast.ToUint32(len(payload))
	if err != nil {
		return nil, errors.Join(ErrPayloadTooLarge, err)
	}

	if uint64(length) > msg.MaxPayloadLength() {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, max %d", ErrPayloadTooLarge, cmd, length, msg.MaxPayloadLength())
	}

	frame := make([]byte, MessageHeaderSize, MessageHeaderSize+len(payload))
	le.PutUint32(frame[0:4], uint32(net))
	copy(frame[4:4+CommandSize], cmd)
	le.PutUint32(frame[16:20], length)
	sum := checksum(payload)
	copy(frame[20:24], sum[:])

	return append(frame, payload...), nil
}

// WriteMessage writes msg framed for network net to w.
func WriteMessage(w io.Writer, msg Message, net BitcoinNet) (int, error) {
	frame, err := Encode(msg, net)
	if err != nil {
		return 0, err
	}

	return w.Write(frame)
}

// DecodeHeader parses the first MessageHeaderSize bytes of b.
func DecodeHeader(b []byte) (Header, error) {
	var hdr Header
	if len(b) < MessageHeaderSize {
		return hdr, ErrTruncated
	}

	hdr.Net = BitcoinNet(le.Uint32(b[0:4]))

	cmd, err := parseCommand(b[4 : 4+CommandSize])
	if err != nil {
		return hdr, err
	}

	hdr.Command = cmd
	hdr.Length = le.Uint32(b[16:20])
	copy(hdr.Checksum[:], b[20:24])

	return hdr, nil
}

func parseCommand(field []byte) (string, error) {
	end := bytes.IndexByte(field, 0)
	if end == -1 {
		end = len(field)
	}

	for _, c := range field[end:] {
		if c != 0 {
			return "", fmt.Errorf("%w: non-zero padding", ErrMalformedCommand)
		}
	}

	for _, c := range field[:end] {
		if c < 0x20 || c > 0x7e {
			return "", fmt.Errorf("%w: non printable character 0x%02x", ErrMalformedCommand, c)
		}
	}

	return string(field[:end]), nil
}

// Decode parses the frame at the start of b. It returns the message and the number of
// bytes the frame occupies.
//
// ErrTruncated is returned with n == 0 when b holds less than a full frame; the caller
// should retry once more bytes are available. ErrChecksumMismatch, ErrUnknownCommand
// and ErrMalformedPayload report n as the full frame length so the frame can be skipped.
func Decode(b []byte, net BitcoinNet, opts ...DecodeOption) (Message, int, error) {
	cfg := decodeConfig{maxPayload: DefaultMaxPayload}
	for _, opt := range opts {
		opt(&cfg)
	}

	hdr, err := DecodeHeader(b)
	if err != nil {
		return nil, 0, err
	}

	if hdr.Net != net {
		return nil, 0, fmt.Errorf("%w: expected %s, got %s", ErrNetworkMismatch, net, hdr.Net)
	}

	if uint64(hdr.Length) > cfg.maxPayload {
		return nil, 0, fmt.Errorf("%w: %s payload is %d bytes, max %d", ErrPayloadTooLarge, hdr.Command, hdr.Length, cfg.maxPayload)
	}

	frameLen := MessageHeaderSize + int(hdr.Length)
	if len(b) < frameLen {
		return nil, 0, ErrTruncated
	}

	payload := b[MessageHeaderSize:frameLen]
	if checksum(payload) != hdr.Checksum {
		return nil, frameLen, fmt.Errorf("%w: %s", ErrChecksumMismatch, hdr.Command)
	}

	msg, err := makeEmptyMessage(hdr.Command)
	if err != nil {
		return nil, frameLen, err
	}

	if uint64(hdr.Length) > msg.MaxPayloadLength() {
		return nil, frameLen, fmt.Errorf("%w: %s payload is %d bytes, max %d", ErrPayloadTooLarge, hdr.Command, hdr.Length, msg.MaxPayloadLength())
	}

	r := bytes.NewReader(payload)
	if err = msg.Decode(r); err != nil {
		return nil, frameLen, errors.Join(ErrMalformedPayload, fmt.Errorf("%s: %w", hdr.Command, err))
	}

	if r.Len() != 0 {
		return nil, frameLen, fmt.Errorf("%w: %s has %d trailing bytes", ErrMalformedPayload, hdr.Command, r.Len())
	}

	return msg, frameLen, nil
}
