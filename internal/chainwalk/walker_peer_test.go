package chainwalk_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/blockfetch/internal/blockfetch"
	"github.com/bitcoin-sv/blockfetch/internal/chainwalk"
	"github.com/bitcoin-sv/blockfetch/internal/p2p"
	"github.com/bitcoin-sv/blockfetch/internal/p2p/p2ptest"
	"github.com/bitcoin-sv/blockfetch/internal/testdata"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

const network = wire.RegTest

func connectWalker(t *testing.T, node *p2ptest.Node, opts ...chainwalk.Option) (*chainwalk.Walker, afero.Fs) {
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

	var fetcher *blockfetch.Fetcher
	pm := p2p.NewPeerManager(logger, network, func(address string) p2p.PeerI {
		return p2p.NewPeer(logger, fetcher, address, network, p2p.WithDialer(node))
	}, p2p.WithConnectRetries(0, time.Millisecond))
	fetcher = blockfetch.NewFetcher(logger, p2p.NewNetworkMessenger(pm))

	_, err := pm.ConnectFirst(ctx, []string{"localhost:18444"})
	require.NoError(t, err)
	t.Cleanup(pm.Shutdown)

	sink, fs := memSink(t)

	return chainwalk.NewWalker(logger, fetcher, sink, opts...), fs
}

func TestWalker_WithPeer(t *testing.T) {
	chain := testdata.NewChain(3, 2)

	t.Run("two blocks stored newest first", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithBlocks(chain...))
		sut, fs := connectWalker(t, node, chainwalk.WithRequestTimeout(time.Second))

		// when
		artifacts, err := sut.FetchChain(context.Background(), chain[0].BlockHash(), 2, 101)

		// then
		require.NoError(t, err)
		require.Len(t, artifacts, 2)

		require.Equal(t, "/out/blocks_101.dat", artifacts[0].Path)
		require.Equal(t, "/out/blocks_100.dat", artifacts[1].Path)
		require.Equal(t, chain[0].Header.PrevBlock, artifacts[1].Hash)

		for i, artifact := range artifacts {
			payload, err := afero.ReadFile(fs, artifact.Path)
			require.NoError(t, err)

			expected, err := wire.EncodePayload(chain[i])
			require.NoError(t, err)
			require.Equal(t, expected, payload)
			require.Equal(t, 1, node.Requested(chain[i].BlockHash()))
		}
		require.Equal(t, 0, node.Requested(chain[2].BlockHash()))
	})

	t.Run("silent node - step times out", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithoutReplies())
		sut, fs := connectWalker(t, node, chainwalk.WithRequestTimeout(100*time.Millisecond))

		// when
		artifacts, err := sut.FetchChain(context.Background(), chain[0].BlockHash(), 2, 101)

		// then
		require.ErrorIs(t, err, blockfetch.ErrRequestTimeout)
		require.Empty(t, artifacts)

		var stepErr *chainwalk.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, int64(101), stepErr.Height)
		require.Nil(t, stepErr.Last)

		exists, err := afero.Exists(fs, "/out/blocks_101.dat")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("chain ends at unknown block", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithBlocks(chain[:2]...))
		sut, _ := connectWalker(t, node, chainwalk.WithRequestTimeout(time.Second))

		// when
		artifacts, err := sut.FetchChain(context.Background(), chain[0].BlockHash(), 3, 2)

		// then
		require.ErrorIs(t, err, blockfetch.ErrBlockNotFound)
		require.Len(t, artifacts, 2)

		var stepErr *chainwalk.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, int64(0), stepErr.Height)
		require.Equal(t, artifacts[1].Path, stepErr.Last.Path)
	})
}
