package blockfetch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/blockfetch/internal/blockfetch"
	"github.com/bitcoin-sv/blockfetch/internal/p2p"
	"github.com/bitcoin-sv/blockfetch/internal/p2p/p2ptest"
	"github.com/bitcoin-sv/blockfetch/internal/testdata"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

const network = wire.RegTest

// connectFetcher connects a Fetcher to node through a PeerManager, the way the fetch
// command wires them.
func connectFetcher(t *testing.T, node *p2ptest.Node) (*blockfetch.Fetcher, *p2p.PeerManager) {
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

	return fetcher, pm
}

func TestFetcher_WithPeer(t *testing.T) {
	chain := testdata.NewChain(2, 2)

	t.Run("block served by node", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithBlocks(chain...))
		sut, _ := connectFetcher(t, node)

		// when
		block, err := sut.RequestBlock(context.Background(), chain[1].BlockHash(), time.Second)

		// then
		require.NoError(t, err)
		require.Equal(t, chain[1].BlockHash(), block.BlockHash())
		require.Equal(t, chain[1].Transactions, block.Transactions)
		require.Equal(t, 1, node.Requested(chain[1].BlockHash()))
	})

	t.Run("concurrent requests - one getdata on the wire", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithoutReplies())
		sut, _ := connectFetcher(t, node)
		hash := chain[0].BlockHash()

		// when
		first := requestAsync(context.Background(), sut, hash, 2*time.Second)
		second := requestAsync(context.Background(), sut, hash, 2*time.Second)

		require.Eventually(t, func() bool { return node.Requested(hash) == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, node.Send(chain[0]))

		res1 := waitResult(t, first)
		res2 := waitResult(t, second)

		// then
		require.NoError(t, res1.err)
		require.NoError(t, res2.err)
		require.Same(t, res1.block, res2.block)
		require.Equal(t, hash, res1.block.BlockHash())
		require.Equal(t, 1, node.Requested(hash))
	})

	t.Run("block unknown to node", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network)
		sut, _ := connectFetcher(t, node)

		// when
		_, err := sut.RequestBlock(context.Background(), chain[0].BlockHash(), time.Second)

		// then
		require.ErrorIs(t, err, blockfetch.ErrBlockNotFound)
	})

	t.Run("node never replies", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithoutReplies())
		sut, _ := connectFetcher(t, node)

		// when
		_, err := sut.RequestBlock(context.Background(), chain[0].BlockHash(), 100*time.Millisecond)

		// then
		require.ErrorIs(t, err, blockfetch.ErrRequestTimeout)
	})

	t.Run("connection lost while waiting", func(t *testing.T) {
		// given
		node := p2ptest.NewNode(network, p2ptest.WithoutReplies())
		sut, _ := connectFetcher(t, node)
		hash := chain[0].BlockHash()

		// when
		resCh := requestAsync(context.Background(), sut, hash, 5*time.Second)
		require.Eventually(t, func() bool { return node.Requested(hash) == 1 }, time.Second, 5*time.Millisecond)
		node.Close()

		res := waitResult(t, resCh)

		// then
		require.ErrorIs(t, res.err, blockfetch.ErrConnectionClosed)

		_, err := sut.RequestBlock(context.Background(), hash, time.Second)
		require.ErrorIs(t, err, blockfetch.ErrConnectionClosed)
	})
}
