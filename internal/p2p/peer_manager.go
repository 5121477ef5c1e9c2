package p2p

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var (
	ErrPeerNetworkMismatch = errors.New("peer network mismatch")
	ErrNoPeerAvailable     = errors.New("no peer reached ready state")
	ErrNoCandidates        = errors.New("no peer candidates")
)

const (
	defaultConnectRetries = 3
	defaultRetryInterval  = 5 * time.Second
)

// PeerFactory creates a not yet connected peer for address.
type PeerFactory func(address string) PeerI

// PeerManager selects a peer out of a list of candidates and keeps track of the peers
// it connected.
type PeerManager struct {
	l       *slog.Logger
	network wire.BitcoinNet
	newPeer PeerFactory

	connectRetries uint64
	retryInterval  time.Duration

	mu    sync.RWMutex
	peers []PeerI
}

func NewPeerManager(logger *slog.Logger, network wire.BitcoinNet, newPeer PeerFactory, options ...PeerManagerOptions) *PeerManager {
	m := &PeerManager{
		l:       logger.With(slog.String("module", "peer-manager")),
		network: network,
		newPeer: newPeer,

		connectRetries: defaultConnectRetries,
		retryInterval:  defaultRetryInterval,
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

// ConnectFirst tries the candidates in order and returns the first peer reaching Ready.
// Every candidate is retried with a constant backoff; a network mismatch is not retried.
func (m *PeerManager) ConnectFirst(ctx context.Context, addresses []string) (PeerI, error) {
	if len(addresses) == 0 {
		return nil, ErrNoCandidates
	}

	var errs []error
	for _, address := range addresses {
		peer, err := m.connectWithRetries(ctx, address)
		if err == nil {
			if err = m.AddPeer(peer); err != nil {
				peer.Shutdown()
				return nil, err
			}

			return peer, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		m.l.Warn("Candidate failed", slog.String("address", address), slog.String("err", err.Error()))
		errs = append(errs, err)
	}

	return nil, errors.Join(append([]error{ErrNoPeerAvailable}, errs...)...)
}

func (m *PeerManager) connectWithRetries(ctx context.Context, address string) (PeerI, error) {
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(m.retryInterval), m.connectRetries)

	policyContext := backoff.WithContext(policy, ctx)

	operation := func() (PeerI, error) {
		peer := m.newPeer(address)
		if peer.Network() != m.network {
			return nil, backoff.Permanent(ErrPeerNetworkMismatch)
		}

		err := peer.Connect(ctx)
		if err != nil {
			if errors.Is(err, ErrNetworkMismatch) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		return peer, nil
	}

	notify := func(err error, nextTry time.Duration) {
		m.l.Error("Failed to connect to peer", slog.String("address", address), slog.String("next try", nextTry.String()), slog.String("err", err.Error()))
	}

	return backoff.RetryNotifyWithData(operation, policyContext, notify)
}

func (m *PeerManager) AddPeer(peer PeerI) error {
	if peer.Network() != m.network {
		return ErrPeerNetworkMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.peers = append(m.peers, peer)

	return nil
}

func (m *PeerManager) RemovePeer(peer PeerI) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := -1
	for i, p := range m.peers {
		if p == peer {
			index = i
			break
		}
	}

	if index != -1 {
		m.peers = append(m.peers[:index], m.peers[index+1:]...)
	}

	return index != -1
}

func (m *PeerManager) GetPeers() []PeerI {
	m.mu.RLock()
	defer m.mu.RUnlock()

	peersCopy := make([]PeerI, len(m.peers))
	copy(peersCopy, m.peers)

	return peersCopy
}

// GetConnectedPeer returns the first Ready peer, or nil.
func (m *PeerManager) GetConnectedPeer() PeerI {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.peers {
		if p.Connected() {
			return p
		}
	}

	return nil
}

func (m *PeerManager) CountConnectedPeers() uint {
	m.mu.RLock()
	c := uint(0)

	for _, p := range m.peers {
		if p.Connected() {
			c++
		}
	}

	m.mu.RUnlock()
	return c
}

func (m *PeerManager) Shutdown() {
	m.l.Info("Shutting down peer manager")

	for _, peer := range m.GetPeers() {
		peer.Shutdown()
	}
}
