// Package p2ptest provides an in-memory node speaking the peer-to-peer protocol, for
// tests of code built on top of p2p.Peer.
package p2ptest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/cbeuw/connutil"
	"github.com/libsv/go-p2p/chaincfg/chainhash"

	"github.com/bitcoin-sv/blockfetch/internal/p2p"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var ErrUnexpectedMessage = errors.New("unexpected message")

// Node is the remote side of an in-memory connection. It answers the handshake, ping
// messages and getdata requests for the blocks it holds.
type Node struct {
	network      wire.BitcoinNet
	versionMagic wire.BitcoinNet
	conn         net.Conn
	peerConn     net.Conn
	reader       *p2p.WireReader

	mu          sync.Mutex
	blocks      map[chainhash.Hash]*wire.MsgBlock
	requested   map[chainhash.Hash]int
	silent      bool
	sendVerAck  bool
	peerVersion *wire.MsgVersion
	received    []wire.Message
	receivedSig chan struct{}
}

type Option func(n *Node)

// WithBlocks makes the node serve blocks on getdata.
func WithBlocks(blocks ...*wire.MsgBlock) Option {
	return func(n *Node) {
		for _, b := range blocks {
			n.blocks[b.BlockHash()] = b
		}
	}
}

// WithoutReplies makes the node swallow getdata requests.
func WithoutReplies() Option {
	return func(n *Node) {
		n.silent = true
	}
}

// WithVersionNetwork frames the node's version message for another network.
func WithVersionNetwork(network wire.BitcoinNet) Option {
	return func(n *Node) {
		n.versionMagic = network
	}
}

// WithoutVerAck makes the node never acknowledge our version.
func WithoutVerAck() Option {
	return func(n *Node) {
		n.sendVerAck = false
	}
}

func NewNode(network wire.BitcoinNet, opts ...Option) *Node {
	peerConn, nodeConn := connutil.AsyncPipe()

	n := &Node{
		network:      network,
		versionMagic: network,
		conn:         nodeConn,
		peerConn:     peerConn,
		blocks:       make(map[chainhash.Hash]*wire.MsgBlock),
		requested:    make(map[chainhash.Hash]int),
		sendVerAck:   true,
		receivedSig:  make(chan struct{}, 1024),
	}

	for _, opt := range opts {
		opt(n)
	}

	n.reader = p2p.NewWireReader(nodeConn, network, wire.DefaultMaxPayload, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return n
}

// PeerConn is the connection end to hand to the peer under test.
func (n *Node) PeerConn() net.Conn {
	return n.peerConn
}

// Conn is the node's end of the connection.
func (n *Node) Conn() net.Conn {
	return n.conn
}

// DialContext implements p2p.Dialer and returns the peer's end of the connection.
func (n *Node) DialContext(_ context.Context, _, _ string) (net.Conn, error) {
	return n.peerConn, nil
}

func (n *Node) Send(msg wire.Message) error {
	_, err := wire.WriteMessage(n.conn, msg, n.network)
	return err
}

func (n *Node) Close() {
	_ = n.conn.Close()
}

// Handshake waits for the peer's version, answers with verack and the node's own
// version, then waits for the peer's verack.
func (n *Node) Handshake(ctx context.Context) error {
	msg, err := n.reader.ReadNextMsg(ctx)
	if err != nil {
		return err
	}

	peerVersion, ok := msg.(*wire.MsgVersion)
	if !ok {
		return fmt.Errorf("%w: %s instead of version", ErrUnexpectedMessage, msg.Command())
	}

	n.mu.Lock()
	n.peerVersion = peerVersion
	n.mu.Unlock()

	if n.sendVerAck {
		if err = n.Send(wire.NewMsgVerAck()); err != nil {
			return err
		}
	}

	me := wire.NewNetAddress(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8333}, wire.SFNodeNetwork)
	verMsg := wire.NewMsgVersion(me, wire.NewNetAddress(nil, 0), 1, 564948)
	if err = verMsg.AddUserAgent("p2ptest", "1.0.0"); err != nil {
		return err
	}

	if _, err = wire.WriteMessage(n.conn, verMsg, n.versionMagic); err != nil {
		return err
	}

	if !n.sendVerAck || n.versionMagic != n.network {
		return nil
	}

	msg, err = n.reader.ReadNextMsg(ctx)
	if err != nil {
		return err
	}

	if _, ok := msg.(*wire.MsgVerAck); !ok {
		return fmt.Errorf("%w: %s instead of verack", ErrUnexpectedMessage, msg.Command())
	}

	return nil
}

// Serve answers messages from the peer until ctx is done or the connection fails.
func (n *Node) Serve(ctx context.Context) error {
	for {
		msg, err := n.reader.ReadNextMsg(ctx)
		if err != nil {
			return err
		}

		n.mu.Lock()
		n.received = append(n.received, msg)
		n.mu.Unlock()

		select {
		case n.receivedSig <- struct{}{}:
		default:
		}

		switch m := msg.(type) {
		case *wire.MsgPing:
			if err = n.Send(wire.NewMsgPong(m.Nonce)); err != nil {
				return err
			}

		case *wire.MsgGetData:
			if err = n.serveGetData(m); err != nil {
				return err
			}
		}
	}
}

func (n *Node) serveGetData(m *wire.MsgGetData) error {
	notFound := wire.NewMsgNotFound()

	for _, iv := range m.InvList {
		n.mu.Lock()
		n.requested[iv.Hash]++
		block, ok := n.blocks[iv.Hash]
		silent := n.silent
		n.mu.Unlock()

		if silent {
			continue
		}

		if !ok || iv.Type != wire.InvTypeBlock {
			_ = notFound.AddInvVect(iv)
			continue
		}

		if err := n.Send(block); err != nil {
			return err
		}
	}

	if len(notFound.InvList) > 0 {
		return n.Send(notFound)
	}

	return nil
}

// PeerVersion returns the version message the peer sent during the handshake.
func (n *Node) PeerVersion() *wire.MsgVersion {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.peerVersion
}

// Requested returns how often hash was asked for with getdata.
func (n *Node) Requested(hash chainhash.Hash) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.requested[hash]
}

// Received returns the messages received after the handshake.
func (n *Node) Received() []wire.Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	received := make([]wire.Message, len(n.received))
	copy(received, n.received)

	return received
}

// ReceivedSignal fires for every message received after the handshake.
func (n *Node) ReceivedSignal() <-chan struct{} {
	return n.receivedSig
}
