package blockfetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/blockfetch/internal/p2p"
	"github.com/bitcoin-sv/blockfetch/internal/tracing"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrRequestTimeout   = errors.New("block request timed out")
	ErrBlockNotFound    = errors.New("block not found")
)

const (
	defaultAnnouncementTTL = 10 * time.Minute
	announcementCleanup    = time.Minute
)

// BlockRequester sends getdata for a block to the network.
type BlockRequester interface {
	RequestBlock(hash *chainhash.Hash) (p2p.PeerI, error)
}

var _ p2p.MessageHandlerI = (*Fetcher)(nil)

// Fetcher correlates block messages received from a peer with outstanding block requests.
// Requests are keyed by block hash: concurrent requests for the same hash share one
// getdata and one result.
type Fetcher struct {
	logger    *slog.Logger
	requester BlockRequester
	stats     *Stats
	now       func() time.Time

	announced       *cache.Cache
	announcementTTL time.Duration

	mu       sync.Mutex
	pending  map[chainhash.Hash]*pendingRequest
	closed   bool
	closeErr error

	tracingEnabled    bool
	tracingAttributes []attribute.KeyValue
}

type pendingRequest struct {
	done        chan struct{}
	block       *wire.MsgBlock
	err         error
	waiters     int
	requestedAt time.Time
}

func (r *pendingRequest) complete(block *wire.MsgBlock, err error) {
	r.block = block
	r.err = err
	close(r.done)
}

func NewFetcher(logger *slog.Logger, requester BlockRequester, opts ...Option) *Fetcher {
	f := &Fetcher{
		logger:          logger.With(slog.String("module", "block-fetcher")),
		requester:       requester,
		now:             time.Now,
		announcementTTL: defaultAnnouncementTTL,
		pending:         make(map[chainhash.Hash]*pendingRequest),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.stats == nil {
		f.stats = NewStats()
	}

	f.announced = cache.New(f.announcementTTL, announcementCleanup)

	return f
}

// RequestBlock returns the block with the given hash. Only the first of concurrent callers
// for the same hash sends getdata; all of them receive the same block or error.
//
// The request fails with ErrRequestTimeout for every waiter once timeout elapses for any
// of them. Canceling ctx only detaches the calling waiter.
func (f *Fetcher) RequestBlock(ctx context.Context, hash chainhash.Hash, timeout time.Duration) (block *wire.MsgBlock, err error) {
	ctx, span := tracing.StartTracing(ctx, "Fetcher_RequestBlock", f.tracingEnabled, slices.Concat(f.tracingAttributes, []attribute.KeyValue{attribute.String("hash", hash.String())})...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	req, first, err := f.attach(hash)
	if err != nil {
		return nil, err
	}

	if first {
		peer, reqErr := f.requester.RequestBlock(&hash)
		if reqErr != nil {
			f.logger.Warn("Failed to send block request", slog.String("hash", hash.String()), slog.String("err", reqErr.Error()))
			f.fail(hash, req, errors.Join(ErrConnectionClosed, reqErr))
		} else {
			f.stats.requested.Inc()
			f.logger.Debug("Requested block", slog.String("hash", hash.String()), slog.String("peer", peer.String()))
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-req.done:
		return req.block, req.err

	case <-timer.C:
		if f.fail(hash, req, fmt.Errorf("%w: %s after %s", ErrRequestTimeout, hash, timeout)) {
			f.stats.failed.WithLabelValues(reasonTimeout).Inc()
		}

		// the request may have completed concurrently
		<-req.done
		return req.block, req.err

	case <-ctx.Done():
		f.detach(hash, req)
		return nil, ctx.Err()
	}
}

func (f *Fetcher) attach(hash chainhash.Hash) (*pendingRequest, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, false, f.closeErr
	}

	req, found := f.pending[hash]
	if !found {
		req = &pendingRequest{done: make(chan struct{}), requestedAt: f.now()}
		f.pending[hash] = req
		f.stats.pending.Inc()
	}

	req.waiters++

	return req, !found, nil
}

// detach removes a waiter; the request is dropped when no waiter is left.
func (f *Fetcher) detach(hash chainhash.Hash, req *pendingRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req.waiters--
	if req.waiters > 0 || f.pending[hash] != req {
		return
	}

	delete(f.pending, hash)
	f.stats.pending.Dec()
	req.complete(nil, context.Canceled)
}

// take removes the pending request for hash. Only the caller which took a request may
// complete it.
func (f *Fetcher) take(hash chainhash.Hash) (*pendingRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, found := f.pending[hash]
	if found {
		delete(f.pending, hash)
		f.stats.pending.Dec()
	}

	return req, found
}

// fail completes req with err if it is still the pending request for hash.
func (f *Fetcher) fail(hash chainhash.Hash, req *pendingRequest, err error) bool {
	f.mu.Lock()
	if f.pending[hash] != req {
		f.mu.Unlock()
		return false
	}

	delete(f.pending, hash)
	f.stats.pending.Dec()
	f.mu.Unlock()

	req.complete(nil, err)
	return true
}

// Pending returns the number of outstanding requests.
func (f *Fetcher) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.pending)
}

func (f *Fetcher) OnReceive(msg wire.Message, peer p2p.PeerI) {
	switch m := msg.(type) {
	case *wire.MsgBlock:
		f.handleBlock(m, peer)

	case *wire.MsgNotFound:
		f.handleNotFound(m, peer)

	case *wire.MsgInv:
		f.handleInv(m, peer)

	default:
		// ignore other messages
	}
}

func (f *Fetcher) handleBlock(block *wire.MsgBlock, peer p2p.PeerI) {
	hash := block.BlockHash()

	req, found := f.take(hash)
	if !found {
		f.stats.discarded.Inc()
		f.logger.Debug("Discarded unrequested block", slog.String("hash", hash.String()), slog.String("peer", peer.String()))
		return
	}

	f.stats.received.Inc()
	f.stats.requestDuration.Observe(f.now().Sub(req.requestedAt).Seconds())
	f.logger.Debug("Received block",
		slog.String("hash", hash.String()),
		slog.Int("txs", len(block.Transactions)),
		slog.String("peer", peer.String()),
	)

	req.complete(block, nil)
}

func (f *Fetcher) handleNotFound(msg *wire.MsgNotFound, peer p2p.PeerI) {
	for _, iv := range msg.InvList {
		if iv.Type != wire.InvTypeBlock {
			continue
		}

		req, found := f.take(iv.Hash)
		if !found {
			continue
		}

		f.stats.failed.WithLabelValues(reasonNotFound).Inc()
		f.logger.Warn("Block not found by peer", slog.String("hash", iv.Hash.String()), slog.String("peer", peer.String()))

		req.complete(nil, fmt.Errorf("%w: %s", ErrBlockNotFound, iv.Hash))
	}
}

func (f *Fetcher) handleInv(msg *wire.MsgInv, peer p2p.PeerI) {
	for _, iv := range msg.InvList {
		// ignore INV with transaction or error
		if iv.Type != wire.InvTypeBlock {
			continue
		}

		key := iv.Hash.String()
		if _, found := f.announced.Get(key); found {
			continue
		}

		f.announced.SetDefault(key, struct{}{})
		f.logger.Info("Block announced", slog.String("hash", key), slog.String("peer", peer.String()))
	}
}

func (f *Fetcher) OnSend(msg wire.Message, peer p2p.PeerI) {
	if msg.Command() == wire.CmdGetData {
		f.logger.Log(context.Background(), slogLvlTrace, "Sent GETDATA", slog.String("peer", peer.String()))
	}
}

// OnClose fails all outstanding requests with ErrConnectionClosed. Later requests fail
// immediately.
func (f *Fetcher) OnClose(peer p2p.PeerI, cause error) {
	closeErr := ErrConnectionClosed
	if cause != nil {
		closeErr = errors.Join(ErrConnectionClosed, cause)
	}

	f.mu.Lock()
	f.closed = true
	f.closeErr = closeErr

	requests := make([]*pendingRequest, 0, len(f.pending))
	for hash, req := range f.pending {
		requests = append(requests, req)
		delete(f.pending, hash)
	}
	f.stats.pending.Set(0)
	f.mu.Unlock()

	f.logger.Info("Connection closed", slog.String("peer", peer.String()), slog.Int("failed_requests", len(requests)))

	for _, req := range requests {
		f.stats.failed.WithLabelValues(reasonConnectionClosed).Inc()
		req.complete(nil, closeErr)
	}
}
