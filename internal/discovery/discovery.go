package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoCandidates = errors.New("no peer candidates found")
	ErrInvalidPort  = errors.New("invalid port")
)

const (
	defaultLookupTimeout = 10 * time.Second
	maxParallelLookups   = 8
)

// Provider returns the addresses (host:port) of peers to try, in the order they should be
// tried.
type Provider interface {
	Candidates(ctx context.Context) ([]string, error)
}

// Static returns a fixed list of peers.
type Static struct {
	addrs []string
}

func NewStatic(addrs ...string) *Static {
	return &Static{addrs: addrs}
}

func (s *Static) Candidates(_ context.Context) ([]string, error) {
	if len(s.addrs) == 0 {
		return nil, ErrNoCandidates
	}

	out := make([]string, len(s.addrs))
	copy(out, s.addrs)

	return out, nil
}

// Resolver resolves a host name into IP addresses. *net.Resolver implements it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNSSeeds resolves seed host names into peer addresses on the network's default port.
type DNSSeeds struct {
	logger        *slog.Logger
	seeds         []string
	port          int
	resolver      Resolver
	lookupTimeout time.Duration
	shuffle       func(n int, swap func(i, j int))
}

type Option func(d *DNSSeeds)

func WithResolver(r Resolver) Option {
	return func(d *DNSSeeds) {
		d.resolver = r
	}
}

func WithLookupTimeout(timeout time.Duration) Option {
	return func(d *DNSSeeds) {
		d.lookupTimeout = timeout
	}
}

// WithShuffle replaces the random permutation of the resolved addresses.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(d *DNSSeeds) {
		d.shuffle = shuffle
	}
}

func NewDNSSeeds(logger *slog.Logger, seeds []string, port int, opts ...Option) (*DNSSeeds, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	d := &DNSSeeds{
		logger:        logger.With(slog.String("module", "dns-seeds")),
		seeds:         seeds,
		port:          port,
		resolver:      net.DefaultResolver,
		lookupTimeout: defaultLookupTimeout,
		shuffle:       rand.Shuffle,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Candidates resolves all seeds concurrently. A seed failing to resolve is skipped; the
// call fails only when no seed yields an address.
func (d *DNSSeeds) Candidates(ctx context.Context) ([]string, error) {
	var (
		mu       sync.Mutex
		seen     = make(map[string]struct{})
		addrs    []string
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)

	for _, seed := range d.seeds {
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(gctx, d.lookupTimeout)
			defer cancel()

			ips, err := d.resolver.LookupHost(lookupCtx, seed)
			if err != nil {
				d.logger.Warn("Failed to resolve seed", slog.String("seed", seed), slog.String("err", err.Error()))

				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", seed, err))
				mu.Unlock()
				return nil
			}

			d.logger.Debug("Resolved seed", slog.String("seed", seed), slog.Int("addresses", len(ips)))

			mu.Lock()
			defer mu.Unlock()

			for _, ip := range ips {
				addr := net.JoinHostPort(ip, strconv.Itoa(d.port))
				if _, found := seen[addr]; found {
					continue
				}

				seen[addr] = struct{}{}
				addrs = append(addrs, addr)
			}

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(addrs) == 0 {
		return nil, errors.Join(append([]error{ErrNoCandidates}, failures...)...)
	}

	d.shuffle(len(addrs), func(i, j int) {
		addrs[i], addrs[j] = addrs[j], addrs[i]
	})

	return addrs, nil
}
