package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/blockfetch/config"
	"github.com/bitcoin-sv/blockfetch/internal/blockfetch"
	"github.com/bitcoin-sv/blockfetch/internal/blockstore"
	"github.com/bitcoin-sv/blockfetch/internal/chainwalk"
	"github.com/bitcoin-sv/blockfetch/internal/discovery"
	"github.com/bitcoin-sv/blockfetch/internal/p2p"
	"github.com/bitcoin-sv/blockfetch/internal/p2p/p2ptest"
	"github.com/bitcoin-sv/blockfetch/internal/testdata"
	"github.com/bitcoin-sv/blockfetch/internal/verifier"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(t *testing.T, start string, count int, height int64) *config.BlockfetchConfig {
	t.Helper()

	return &config.BlockfetchConfig{
		Network: "regtest",
		Peer: &config.PeerConfig{
			ConnectTimeout:   time.Second,
			HandshakeTimeout: time.Second,
			PingInterval:     time.Minute,
			HealthThreshold:  time.Minute,
			RetryInterval:    time.Millisecond,
			MaxPayload:       wire.DefaultMaxPayload,
			WriteTimeout:     time.Second,
			ReadBufferSize:   1024,
			WriteChannelSize: 8,
			Services:         uint64(wire.SFNodeNetwork),
			UserAgentName:    "blockfetch",
			UserAgentVersion: "test",
		},
		Fetch: &config.FetchConfig{
			StartHash:       start,
			Count:           count,
			StartHeight:     height,
			OutputDir:       t.TempDir(),
			RequestTimeout:  time.Second,
			AnnouncementTTL: time.Minute,
		},
	}
}

func serveNode(t *testing.T, node *p2ptest.Node) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		node.Close()
	})

	go func() {
		if err := node.Handshake(ctx); err != nil {
			return
		}
		_ = node.Serve(ctx)
	}()
}

func Test_runFetch(t *testing.T) {
	chain := testdata.NewChain(3, 2)

	t.Run("fetch and verify", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(wire.RegTest, p2ptest.WithBlocks(chain...))
		serveNode(t, node)

		cfg := testConfig(t, chain[0].BlockHash().String(), 3, 12)
		reg := prometheus.NewRegistry()

		// when
		artifacts, err := runFetch(context.Background(), logger, cfg, discovery.NewStatic("localhost:18444"), reg, p2p.WithDialer(node))

		// then
		require.NoError(t, err)
		require.Len(t, artifacts, 3)
		require.Equal(t, "blocks_12.dat", artifacts[0].Name)
		require.Equal(t, "blocks_10.dat", artifacts[2].Name)
		require.Equal(t, wire.SFNodeNetwork, node.PeerVersion().Services)

		// stats are unregistered once the run ends
		count, err := testutil.GatherAndCount(reg)
		require.NoError(t, err)
		require.Equal(t, 0, count)

		sink, err := blockstore.NewFileSink(logger, cfg.Fetch.OutputDir)
		require.NoError(t, err)
		report, err := verifier.New(logger, sink).Verify(context.Background(), 12, 3)
		require.NoError(t, err)
		require.NoError(t, report.Err())

		var out bytes.Buffer
		renderReport(&out, report)
		require.Contains(t, out.String(), chain[1].BlockHash().String())
		require.Contains(t, out.String(), "0/3")
	})

	t.Run("node does not reply", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(wire.RegTest, p2ptest.WithoutReplies())
		serveNode(t, node)

		cfg := testConfig(t, chain[0].BlockHash().String(), 2, 12)
		cfg.Fetch.RequestTimeout = 100 * time.Millisecond

		// when
		artifacts, err := runFetch(context.Background(), logger, cfg, discovery.NewStatic("localhost:18444"), nil, p2p.WithDialer(node))

		// then
		require.ErrorIs(t, err, blockfetch.ErrRequestTimeout)
		require.Empty(t, artifacts)

		var stepErr *chainwalk.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, int64(12), stepErr.Height)
	})

	t.Run("no peer reachable", func(t *testing.T) {
		// given
		cfg := testConfig(t, chain[0].BlockHash().String(), 1, 12)
		dialer := failingDialer{}

		// when
		_, err := runFetch(context.Background(), logger, cfg, discovery.NewStatic("localhost:18444"), nil, p2p.WithDialer(dialer))

		// then
		require.ErrorIs(t, err, p2p.ErrNoPeerAvailable)
	})

	t.Run("no candidates", func(t *testing.T) {
		// given
		cfg := testConfig(t, chain[0].BlockHash().String(), 1, 12)

		// when
		_, err := runFetch(context.Background(), logger, cfg, discovery.NewStatic(), nil)

		// then
		require.ErrorIs(t, err, discovery.ErrNoCandidates)
	})
}

type failingDialer struct{}

func (failingDialer) DialContext(_ context.Context, _, _ string) (net.Conn, error) {
	return nil, errors.New("connection refused")
}

func Test_newProvider(t *testing.T) {
	t.Run("peer flags first", func(t *testing.T) {
		// given
		cfg := &config.BlockfetchConfig{
			Network:   "mainnet",
			Discovery: &config.DiscoveryConfig{Peers: []*config.PeerAddressConfig{{Host: "10.0.0.1", Port: 8333}}},
		}

		// when
		provider, err := newProvider(logger, cfg, []string{"10.0.0.9:8333"})
		require.NoError(t, err)
		addrs, err := provider.Candidates(context.Background())

		// then
		require.NoError(t, err)
		require.Equal(t, []string{"10.0.0.9:8333"}, addrs)
	})

	t.Run("configured peers", func(t *testing.T) {
		// given
		cfg := &config.BlockfetchConfig{
			Network: "mainnet",
			Discovery: &config.DiscoveryConfig{Peers: []*config.PeerAddressConfig{
				{Host: "10.0.0.1", Port: 8333},
				{Host: "::1", Port: 18333},
			}},
		}

		// when
		provider, err := newProvider(logger, cfg, nil)
		require.NoError(t, err)
		addrs, err := provider.Candidates(context.Background())

		// then
		require.NoError(t, err)
		require.Equal(t, []string{"10.0.0.1:8333", "[::1]:18333"}, addrs)
	})

	t.Run("peer without port", func(t *testing.T) {
		// given
		cfg := &config.BlockfetchConfig{
			Network:   "mainnet",
			Discovery: &config.DiscoveryConfig{Peers: []*config.PeerAddressConfig{{Host: "10.0.0.1"}}},
		}

		// when
		_, err := newProvider(logger, cfg, nil)

		// then
		require.Error(t, err)
	})

	t.Run("dns seeds", func(t *testing.T) {
		// given
		cfg := &config.BlockfetchConfig{
			Network:   "testnet",
			Discovery: &config.DiscoveryConfig{DNSSeeds: []string{"seed.example"}},
		}

		// when
		provider, err := newProvider(logger, cfg, nil)

		// then
		require.NoError(t, err)
		require.IsType(t, &discovery.DNSSeeds{}, provider)
	})
}

func Test_newProvider_defaultSeeds(t *testing.T) {
	// given
	cfg := &config.BlockfetchConfig{
		Network:   "regtest",
		Discovery: &config.DiscoveryConfig{},
	}

	// when
	provider, err := newProvider(logger, cfg, nil)
	require.NoError(t, err)
	_, err = provider.Candidates(context.Background())

	// then
	require.ErrorIs(t, err, discovery.ErrNoCandidates)
}

func Test_logFetchFailure(t *testing.T) {
	tt := []struct {
		name      string
		artifacts []blockstore.Artifact

		expectedLastHeight string
	}{
		{
			name:               "nothing stored",
			expectedLastHeight: "last_height=none",
		},
		{
			name:               "two blocks stored",
			artifacts:          make([]blockstore.Artifact, 2),
			expectedLastHeight: "last_height=99",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			l := slog.New(slog.NewTextHandler(&buf, nil))

			// when
			logFetchFailure(l, 100, tc.artifacts, blockfetch.ErrRequestTimeout)

			// then
			require.Contains(t, buf.String(), "Fetch failed")
			require.Contains(t, buf.String(), tc.expectedLastHeight)
			require.Contains(t, buf.String(), blockfetch.ErrRequestTimeout.Error())
		})
	}
}

func Test_renderArtifacts(t *testing.T) {
	// given
	chain := testdata.NewChain(2, 1)
	artifacts := []blockstore.Artifact{
		{Name: "blocks_5.dat", Path: "/out/blocks_5.dat", Hash: chain[0].BlockHash(), Size: 120},
		{Name: "blocks_4.dat", Path: "/out/blocks_4.dat", Hash: chain[1].BlockHash(), Size: 121},
	}
	var out bytes.Buffer

	// when
	renderArtifacts(&out, 5, artifacts)

	// then
	require.Contains(t, out.String(), "/out/blocks_5.dat")
	require.Contains(t, out.String(), chain[1].BlockHash().String())
	require.Contains(t, out.String(), "HEIGHT")
}
