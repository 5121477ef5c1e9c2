package p2p

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

const defaultReadBufferSize = 4096

// WireReader decodes consecutive frames from a byte stream. Partial frames are kept in
// an internal buffer until the rest arrives; frames with an unknown command are skipped.
type WireReader struct {
	r          io.Reader
	network    wire.BitcoinNet
	maxPayload uint64
	logger     *slog.Logger

	buf     []byte
	chunk   []byte
	readErr error
}

func NewWireReader(r io.Reader, network wire.BitcoinNet, maxPayload uint64, logger *slog.Logger) *WireReader {
	return NewWireReaderSize(r, network, maxPayload, defaultReadBufferSize, logger)
}

func NewWireReaderSize(r io.Reader, network wire.BitcoinNet, maxPayload uint64, buffSize int, logger *slog.Logger) *WireReader {
	if buffSize <= 0 {
		buffSize = defaultReadBufferSize
	}

	return &WireReader{
		r:          r,
		network:    network,
		maxPayload: maxPayload,
		logger:     logger,
		chunk:      make([]byte, buffSize),
	}
}

// ReadNextMsg blocks until a complete frame was decoded or ctx is done. A canceled read
// leaves the underlying reader in use until it returns, so the reader must not be used
// again after ctx is done, only closed.
func (r *WireReader) ReadNextMsg(ctx context.Context) (wire.Message, error) {
	result := make(chan readResult, 1)
	go func() {
		msg, err := r.readMsg()
		result <- readResult{msg, err}
	}()

	// block until read complete or context is canceled
	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case readMsg := <-result:
		return readMsg.msg, readMsg.err
	}
}

type readResult struct {
	msg wire.Message
	err error
}

func (r *WireReader) readMsg() (wire.Message, error) {
	for {
		if len(r.buf) > 0 {
			msg, n, err := wire.Decode(r.buf, r.network, wire.WithMaxPayload(r.maxPayload))
			r.consume(n)

			switch {
			case err == nil:
				return msg, nil

			case errors.Is(err, wire.ErrUnknownCommand):
				// ignore unknown msg
				r.logger.Debug("Skipped frame", slog.String(errKey, err.Error()))
				continue

			case !errors.Is(err, wire.ErrTruncated):
				return nil, err
			}
		}

		if r.readErr != nil {
			if errors.Is(r.readErr, io.EOF) && len(r.buf) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, r.readErr
		}

		n, err := r.r.Read(r.chunk)
		r.buf = append(r.buf, r.chunk[:n]...)
		r.readErr = err
	}
}

func (r *WireReader) consume(n int) {
	if n == 0 {
		return
	}

	if n == len(r.buf) {
		// drop the backing array, it may hold a large block
		r.buf = nil
		return
	}

	r.buf = r.buf[n:]
}
