package chainwalk

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/blockfetch/internal/blockstore"
	"github.com/bitcoin-sv/blockfetch/internal/tracing"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var (
	ErrHeightUnderflow = errors.New("walk would go below height 0")
	ErrInvalidCount    = errors.New("count must not be negative")
)

const defaultRequestTimeout = 2 * time.Minute

// BlockSource resolves a block by hash.
type BlockSource interface {
	RequestBlock(ctx context.Context, hash chainhash.Hash, timeout time.Duration) (*wire.MsgBlock, error)
}

// Sink persists a block under a name.
type Sink interface {
	Store(block *wire.MsgBlock, name string) (blockstore.Artifact, error)
}

// StepError reports the step a walk failed at. Last is the artifact stored by the step
// before, nil if the first step failed.
type StepError struct {
	Height int64
	Hash   chainhash.Hash
	Last   *blockstore.Artifact
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("block %s at height %d: %v", e.Hash, e.Height, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Walker follows the previous block links from a start block backwards, storing every
// block it receives.
type Walker struct {
	logger         *slog.Logger
	source         BlockSource
	sink           Sink
	namer          blockstore.Namer
	requestTimeout time.Duration

	tracingEnabled    bool
	tracingAttributes []attribute.KeyValue
}

type Option func(w *Walker)

func WithRequestTimeout(d time.Duration) Option {
	return func(w *Walker) {
		w.requestTimeout = d
	}
}

func WithNamer(n blockstore.Namer) Option {
	return func(w *Walker) {
		w.namer = n
	}
}

func WithTracer(attr ...attribute.KeyValue) Option {
	return func(w *Walker) {
		w.tracingEnabled = true
		if len(attr) > 0 {
			w.tracingAttributes = append(w.tracingAttributes, attr...)
		}

		_, file, _, ok := runtime.Caller(1)
		if ok {
			w.tracingAttributes = append(w.tracingAttributes, attribute.String("file", file))
		}
	}
}

func NewWalker(logger *slog.Logger, source BlockSource, sink Sink, opts ...Option) *Walker {
	w := &Walker{
		logger:         logger.With(slog.String("module", "chain-walker")),
		source:         source,
		sink:           sink,
		namer:          blockstore.DefaultNamer,
		requestTimeout: defaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Walk lazily fetches count blocks, starting with start at startHeight and following
// PrevBlock. The artifact of height h is named by the namer for h. The sequence ends
// after count blocks or with the first error, which is a *StepError.
//
// A walk which would need a height below 0 fails with ErrHeightUnderflow before any
// block is requested.
func (w *Walker) Walk(ctx context.Context, start chainhash.Hash, count int, startHeight int64) iter.Seq2[blockstore.Artifact, error] {
	return func(yield func(blockstore.Artifact, error) bool) {
		if err := validate(count, startHeight); err != nil {
			yield(blockstore.Artifact{}, &StepError{Height: startHeight, Hash: start, Err: err})
			return
		}

		current := start
		height := startHeight

		var last *blockstore.Artifact

		for i := 0; i < count; i++ {
			artifact, err := w.step(ctx, current, height)
			if err != nil {
				w.logger.Error("Walk failed", slog.Int64("height", height), slog.String("hash", current.String()), slog.String("err", err.Error()))
				yield(blockstore.Artifact{}, &StepError{Height: height, Hash: current, Last: last, Err: err})
				return
			}

			last = &artifact
			if !yield(artifact, nil) {
				return
			}

			current = artifact.PrevHash
			height--
		}
	}
}

// FetchChain runs Walk to completion. On failure it returns the artifacts stored so far
// together with the *StepError.
func (w *Walker) FetchChain(ctx context.Context, start chainhash.Hash, count int, startHeight int64) ([]blockstore.Artifact, error) {
	artifacts := make([]blockstore.Artifact, 0, max(count, 0))

	for artifact, err := range w.Walk(ctx, start, count, startHeight) {
		if err != nil {
			return artifacts, err
		}

		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

func (w *Walker) step(ctx context.Context, hash chainhash.Hash, height int64) (artifact blockstore.Artifact, err error) {
	ctx, span := tracing.StartTracing(ctx, "Walker_step", w.tracingEnabled, slices.Concat(w.tracingAttributes, []attribute.KeyValue{attribute.Int64("height", height), attribute.String("hash", hash.String())})...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	if err = ctx.Err(); err != nil {
		return blockstore.Artifact{}, err
	}

	block, err := w.source.RequestBlock(ctx, hash, w.requestTimeout)
	if err != nil {
		return blockstore.Artifact{}, err
	}

	artifact, err = w.sink.Store(block, w.namer.Name(height))
	if err != nil {
		return blockstore.Artifact{}, err
	}

	w.logger.Info("Stored block",
		slog.Int64("height", height),
		slog.String("hash", hash.String()),
		slog.String("file", artifact.Path),
		slog.Int("txs", len(block.Transactions)),
	)

	return artifact, nil
}

func validate(count int, startHeight int64) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	if count > 0 && startHeight-int64(count)+1 < 0 {
		return fmt.Errorf("%w: %d blocks from height %d", ErrHeightUnderflow, count, startHeight)
	}

	return nil
}
