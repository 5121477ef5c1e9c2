package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/libsv/go-bc"
	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"golang.org/x/sync/errgroup"

	"github.com/bitcoin-sv/blockfetch/internal/blockstore"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var (
	ErrBrokenLink          = errors.New("previous block hash does not match the block below")
	ErrMerkleRootMismatch  = errors.New("merkle root mismatch")
	ErrInvalidRange        = errors.New("invalid height range")
	ErrVerificationFailure = errors.New("verification failed")
)

const defaultParallel = 8

// Loader reads a stored block by artifact name.
type Loader interface {
	Load(name string) (*wire.MsgBlock, error)
}

// Result is the outcome of checking the artifact of one height.
type Result struct {
	Height   int64
	Name     string
	Hash     chainhash.Hash
	PrevHash chainhash.Hash
	Txs      int
	Err      error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Report holds one result per height, highest height first.
type Report struct {
	Results []Result
}

// Err joins the errors of all failed results, nil if every block passed.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("height %d: %w", res.Height, res.Err))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrVerificationFailure}, errs...)...)
}

type Verifier struct {
	logger   *slog.Logger
	loader   Loader
	namer    blockstore.Namer
	parallel int
}

type Option func(v *Verifier)

func WithNamer(n blockstore.Namer) Option {
	return func(v *Verifier) {
		v.namer = n
	}
}

// WithParallel limits the number of artifacts loaded at the same time.
func WithParallel(n int) Option {
	return func(v *Verifier) {
		v.parallel = n
	}
}

func New(logger *slog.Logger, loader Loader, opts ...Option) *Verifier {
	v := &Verifier{
		logger:   logger.With(slog.String("module", "verifier")),
		loader:   loader,
		namer:    blockstore.DefaultNamer,
		parallel: defaultParallel,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify checks the artifacts of the heights startHeight down to startHeight-count+1:
// every artifact must decode, its merkle root must match its transactions and its
// previous block hash must equal the hash of the artifact one height below. The last
// artifact of the range is not linked to anything.
//
// Failures of single blocks are reported in the Report; the returned error is only set
// for an invalid range or a canceled context.
func (v *Verifier) Verify(ctx context.Context, startHeight int64, count int) (*Report, error) {
	if count <= 0 || startHeight-int64(count)+1 < 0 {
		return nil, fmt.Errorf("%w: %d blocks from height %d", ErrInvalidRange, count, startHeight)
	}

	results := make([]Result, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.parallel)

	for i := range results {
		height := startHeight - int64(i)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = v.check(height)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 0; i+1 < len(results); i++ {
		upper, lower := &results[i], results[i+1]
		if upper.Err != nil || lower.Err != nil {
			continue
		}

		if upper.PrevHash != lower.Hash {
			upper.Err = fmt.Errorf("%w: %s points to %s, height %d is %s", ErrBrokenLink, upper.Hash, upper.PrevHash, lower.Height, lower.Hash)
		}
	}

	report := &Report{Results: results}
	for _, res := range results {
		if res.Err != nil {
			v.logger.Warn("Block failed verification", slog.Int64("height", res.Height), slog.String("file", res.Name), slog.String("err", res.Err.Error()))
		}
	}

	return report, nil
}

func (v *Verifier) check(height int64) Result {
	res := Result{Height: height, Name: v.namer.Name(height)}

	block, err := v.loader.Load(res.Name)
	if err != nil {
		res.Err = err
		return res
	}

	res.Hash = block.BlockHash()
	res.PrevHash = block.Header.PrevBlock
	res.Txs = len(block.Transactions)

	if res.Txs == 0 {
		res.Err = fmt.Errorf("%w: block %s has no transactions", ErrMerkleRootMismatch, res.Hash)
		return res
	}

	tree := bc.BuildMerkleTreeStoreChainHash(block.TxHashes())
	if !block.Header.MerkleRoot.IsEqual(tree[len(tree)-1]) {
		res.Err = fmt.Errorf("%w: block %s header %s, calculated %s", ErrMerkleRootMismatch, res.Hash, block.Header.MerkleRoot, tree[len(tree)-1])
	}

	return res
}
