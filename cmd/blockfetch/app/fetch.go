package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bitcoin-sv/blockfetch/config"
	"github.com/bitcoin-sv/blockfetch/internal/blockfetch"
	"github.com/bitcoin-sv/blockfetch/internal/blockstore"
	"github.com/bitcoin-sv/blockfetch/internal/chainwalk"
	"github.com/bitcoin-sv/blockfetch/internal/discovery"
	"github.com/bitcoin-sv/blockfetch/internal/p2p"
	"github.com/bitcoin-sv/blockfetch/internal/tracing"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

const (
	serviceName            = "blockfetch"
	metricsShutdownTimeout = 5 * time.Second
)

var FetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch blocks walking back from a start block and store them as files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		if err = cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stopMetrics := startMetrics(logger, cfg.Prometheus)
		defer stopMetrics()

		if cfg.Tracing.IsEnabled() {
			cleanup, err := tracing.Enable(logger, serviceName, cfg.Tracing.DialAddr, cfg.Tracing.Sample)
			if err != nil {
				return fmt.Errorf("failed to enable tracing: %w", err)
			}
			defer cleanup()
		}

		provider, err := newProvider(logger, cfg, viper.GetStringSlice("peerAddrs"))
		if err != nil {
			return err
		}

		artifacts, err := runFetch(ctx, logger, cfg, provider, prometheus.DefaultRegisterer)
		if err != nil {
			logFetchFailure(logger, cfg.Fetch.StartHeight, artifacts, err)
			return errors.Join(ErrCommandFailed, err)
		}

		renderArtifacts(os.Stdout, cfg.Fetch.StartHeight, artifacts)
		logger.Info("Fetch finished", slog.Int("blocks", len(artifacts)), slog.String("dir", cfg.Fetch.OutputDir))

		return nil
	},
}

func init() {
	var err error

	FetchCmd.Flags().String("hash", "", "hash of the first (newest) block")
	err = viper.BindPFlag("fetch.startHash", FetchCmd.Flags().Lookup("hash"))
	if err != nil {
		log.Fatal(err)
	}

	FetchCmd.Flags().Duration("timeout", 0, "time to wait for each block")
	err = viper.BindPFlag("fetch.requestTimeout", FetchCmd.Flags().Lookup("timeout"))
	if err != nil {
		log.Fatal(err)
	}

	FetchCmd.Flags().StringSlice("peer", []string{}, "peer address host:port, may be repeated; overrides discovery")
	err = viper.BindPFlag("peerAddrs", FetchCmd.Flags().Lookup("peer"))
	if err != nil {
		log.Fatal(err)
	}
}

// runFetch connects to the first reachable candidate and fetches the configured range.
// The artifacts stored before a failure are returned together with the error.
func runFetch(ctx context.Context, logger *slog.Logger, cfg *config.BlockfetchConfig, provider discovery.Provider, reg prometheus.Registerer, peerOpts ...p2p.PeerOptions) ([]blockstore.Artifact, error) {
	network, err := config.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	start, err := chainhash.NewHashFromStr(cfg.Fetch.StartHash)
	if err != nil {
		return nil, fmt.Errorf("invalid start hash: %w", err)
	}

	candidates, err := provider.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find peers: %w", err)
	}

	stats := blockfetch.NewStats()
	if reg != nil {
		if err = stats.Register(reg); err != nil {
			return nil, err
		}
		defer stats.Unregister(reg)
	}

	fetcherOpts := []blockfetch.Option{
		blockfetch.WithStats(stats),
		blockfetch.WithAnnouncementTTL(cfg.Fetch.AnnouncementTTL),
	}
	walkerOpts := []chainwalk.Option{
		chainwalk.WithRequestTimeout(cfg.Fetch.RequestTimeout),
	}
	if cfg.Tracing.IsEnabled() {
		fetcherOpts = append(fetcherOpts, blockfetch.WithTracer(cfg.Tracing.KeyValueAttributes...))
		walkerOpts = append(walkerOpts, chainwalk.WithTracer(cfg.Tracing.KeyValueAttributes...))
	}

	opts := []p2p.PeerOptions{
		p2p.WithUserAgent(cfg.Peer.UserAgentName, cfg.Peer.UserAgentVersion),
		p2p.WithMaxPayload(cfg.Peer.MaxPayload),
		p2p.WithConnectionTimeout(cfg.Peer.ConnectTimeout),
		p2p.WithHandshakeTimeout(cfg.Peer.HandshakeTimeout),
		p2p.WithPingInterval(cfg.Peer.PingInterval, cfg.Peer.HealthThreshold),
		p2p.WithWriteTimeout(cfg.Peer.WriteTimeout),
		p2p.WithServiceFlag(wire.ServiceFlag(cfg.Peer.Services)),
	}
	if cfg.Peer.ReadBufferSize > 0 {
		opts = append(opts, p2p.WithReadBufferSize(cfg.Peer.ReadBufferSize))
	}
	if cfg.Peer.WriteChannelSize > 0 {
		opts = append(opts, p2p.WithWriteChannelSize(cfg.Peer.WriteChannelSize))
	}
	opts = append(opts, peerOpts...)

	var fetcher *blockfetch.Fetcher
	pm := p2p.NewPeerManager(logger, network, func(address string) p2p.PeerI {
		return p2p.NewPeer(logger, fetcher, address, network, opts...)
	}, p2p.WithConnectRetries(cfg.Peer.ConnectRetries, cfg.Peer.RetryInterval))
	defer pm.Shutdown()

	fetcher = blockfetch.NewFetcher(logger, p2p.NewNetworkMessenger(pm), fetcherOpts...)

	peer, err := pm.ConnectFirst(ctx, candidates)
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to peer", slog.String("peer", peer.String()), slog.String("network", network.String()))

	sink, err := blockstore.NewFileSink(logger, cfg.Fetch.OutputDir)
	if err != nil {
		return nil, err
	}

	walker := chainwalk.NewWalker(logger, fetcher, sink, walkerOpts...)

	return walker.FetchChain(ctx, *start, cfg.Fetch.Count, cfg.Fetch.StartHeight)
}

// newProvider prefers peers given as flags, then configured peers, then DNS seeds.
func newProvider(logger *slog.Logger, cfg *config.BlockfetchConfig, peerAddrs []string) (discovery.Provider, error) {
	if len(peerAddrs) > 0 {
		return discovery.NewStatic(peerAddrs...), nil
	}

	if cfg.Discovery != nil && len(cfg.Discovery.Peers) > 0 {
		addrs := make([]string, 0, len(cfg.Discovery.Peers))
		for _, p := range cfg.Discovery.Peers {
			addr, err := p.GetP2PUrl()
			if err != nil {
				return nil, err
			}
			addrs = append(addrs, addr)
		}

		return discovery.NewStatic(addrs...), nil
	}

	network, err := config.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	port := config.DefaultPort(network)
	if cfg.Peer != nil && cfg.Peer.DefaultPort != 0 {
		port = cfg.Peer.DefaultPort
	}

	seeds := config.DefaultDNSSeeds(network)
	if cfg.Discovery != nil && len(cfg.Discovery.DNSSeeds) > 0 {
		seeds = cfg.Discovery.DNSSeeds
	}

	return discovery.NewDNSSeeds(logger, seeds, port)
}

func startMetrics(logger *slog.Logger, cfg *config.PrometheusConfig) func() {
	if !cfg.IsEnabled() {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting prometheus", slog.String("addr", cfg.Addr), slog.String("endpoint", cfg.Endpoint))

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start prometheus server", slog.String("err", err.Error()))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}

func logFetchFailure(logger *slog.Logger, startHeight int64, artifacts []blockstore.Artifact, err error) {
	lastHeight := "none"
	if len(artifacts) > 0 {
		lastHeight = strconv.FormatInt(startHeight-int64(len(artifacts))+1, 10)
	}

	logger.Error("Fetch failed",
		slog.Int("stored", len(artifacts)),
		slog.String("last_height", lastHeight),
		slog.String("err", err.Error()),
	)
}

func renderArtifacts(w io.Writer, startHeight int64, artifacts []blockstore.Artifact) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Height", "Hash", "File", "Size"})

	for i, a := range artifacts {
		t.AppendRow(table.Row{startHeight - int64(i), a.Hash.String(), a.Path, a.Size})
	}

	fmt.Fprintln(w, t.Render())
}
