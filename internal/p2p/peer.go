package p2p

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	p2pwire "github.com/libsv/go-p2p/wire"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

const (
	connectionTimeoutDefault = 30 * time.Second
	handshakeTimeoutDefault  = time.Minute
	writeTimeoutDefault      = time.Minute
	defaultPingInterval      = time.Minute
	defaultHealthTreshold    = 3 * time.Minute

	commandKey = "cmd"
	errKey     = "err"
)

var (
	ErrPeerNotReady       = errors.New("peer is not ready")
	ErrPeerClosed         = errors.New("peer is closed")
	ErrPeerAlreadyStarted = errors.New("peer was already started")
	ErrDialFailed         = errors.New("failed to dial node")
	ErrHandshakeFailed    = errors.New("handshake failed")
	ErrHandshakeTimeout   = errors.New("handshake timeout")
	ErrPeerUnhealthy      = errors.New("no message received within health threshold")
	ErrNetworkMismatch    = wire.ErrNetworkMismatch
)

var _ PeerI = (*Peer)(nil)

// Peer is an outgoing connection to a node. A Peer is used for a single connection: once
// closed it cannot be connected again.
type Peer struct {
	execWg        sync.WaitGroup
	execCtx       context.Context
	cancelExecCtx context.CancelFunc

	startMu   sync.Mutex
	state     atomic.Int32
	wasReady  atomic.Bool
	closeOnce sync.Once
	doneCh    chan struct{}

	address          string
	network          wire.BitcoinNet
	servicesFlag     wire.ServiceFlag
	userAgentName    *string
	userAgentVersion *string
	dialer           Dialer

	connectionTimeout time.Duration
	handshakeTimeout  time.Duration
	writeTimeout      time.Duration
	lConn             net.Conn
	logger            *slog.Logger
	mh                MessageHandlerI

	writeCh      chan wire.Message
	maxPayload   uint64
	readBuffSize int

	remoteVersion atomic.Pointer[wire.MsgVersion]

	pingInterval    time.Duration
	healthThreshold time.Duration
	aliveCh         chan struct{}
}

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

func NewPeer(logger *slog.Logger, msgHandler MessageHandlerI, address string, network wire.BitcoinNet, options ...PeerOptions) *Peer {
	ctx, cancelFn := context.WithCancel(context.Background())

	p := &Peer{
		execCtx:       ctx,
		cancelExecCtx: cancelFn,
		doneCh:        make(chan struct{}),

		dialer: &net.Dialer{},
		logger: logger.With(
			slog.Group("peer",
				slog.String("network", network.String()),
				slog.String("address", address),
			),
		),
		mh: msgHandler,

		connectionTimeout: connectionTimeoutDefault,
		handshakeTimeout:  handshakeTimeoutDefault,
		writeTimeout:      writeTimeoutDefault,

		address:      address,
		network:      network,
		servicesFlag: wire.SFNodeNetwork,

		pingInterval:    defaultPingInterval,
		healthThreshold: defaultHealthTreshold,
		aliveCh:         make(chan struct{}, 10),

		maxPayload:   wire.DefaultMaxPayload,
		readBuffSize: defaultReadBufferSize,
	}

	for _, opt := range options {
		opt(p)
	}

	if p.writeCh == nil {
		p.writeCh = make(chan wire.Message, 128)
	}

	return p
}

// Connect dials the node and performs the version handshake. It returns once the peer
// is Ready, or with the reason the handshake failed.
func (p *Peer) Connect(ctx context.Context) error {
	p.startMu.Lock()
	defer p.startMu.Unlock()

	switch p.State() {
	case StateDisconnected:
	case StateClosed:
		return ErrPeerClosed
	default:
		p.logger.Warn("Unexpected Connect() call. Peer is connected already.")
		return ErrPeerAlreadyStarted
	}

	err := p.connect(ctx)
	if err != nil {
		p.setState(StateClosed)
		p.cancelExecCtx()
		close(p.doneCh)
	}

	return err
}

func (p *Peer) Connected() bool {
	return p.State() == StateReady
}

func (p *Peer) State() State {
	return State(p.state.Load())
}

// Done is closed once the peer is closed and OnClose has returned.
func (p *Peer) Done() <-chan struct{} {
	return p.doneCh
}

// RemoteVersion returns the version message received from the node during the handshake.
func (p *Peer) RemoteVersion() *wire.MsgVersion {
	return p.remoteVersion.Load()
}

func (p *Peer) Shutdown() {
	p.startMu.Lock()
	defer p.startMu.Unlock()

	if !p.wasReady.Load() {
		return
	}

	p.logger.Info("Shutting down peer")
	p.disconnect(nil)
	p.logger.Info("Shutdown peer complete")
}

// WriteMsg queues msg for sending. It fails if the peer is not Ready.
func (p *Peer) WriteMsg(msg wire.Message) error {
	if p.State() != StateReady {
		return ErrPeerNotReady
	}

	select {
	case p.writeCh <- msg:
		return nil
	case <-p.execCtx.Done():
		return ErrPeerClosed
	}
}

func (p *Peer) Network() wire.BitcoinNet {
	return p.network
}

func (p *Peer) String() string {
	return p.address
}

func (p *Peer) setState(s State) {
	old := State(p.state.Swap(int32(s)))
	if old != s {
		p.logger.Debug("State changed", slog.String("from", old.String()), slog.String("to", s.String()))
	}
}

func (p *Peer) connect(ctx context.Context) error {
	p.logger.Info("Connecting")

	ctxDial, cancelDialFn := context.WithTimeout(ctx, p.connectionTimeout)
	defer cancelDialFn()

	lc, err := p.dialer.DialContext(ctxDial, "tcp", p.address)
	if err != nil {
		p.logger.Error("Failed to dial node", slog.String(errKey, err.Error()))
		return errors.Join(ErrDialFailed, err)
	}

	reader := NewWireReaderSize(lc, p.network, p.maxPayload, p.readBuffSize, p.logger)

	if err = p.handshake(ctx, lc, reader); err != nil {
		_ = lc.Close()
		return err
	}

	p.lConn = lc
	p.wasReady.Store(true)
	p.setState(StateReady)

	p.listenForMessages(reader)
	p.sendMessages()
	p.keepAlive()
	p.healthMonitor()

	p.logger.Info("Ready")

	return nil
}

func (p *Peer) handshake(ctx context.Context, c net.Conn, reader *WireReader) error {
	/* 1. send VER
	 * 2. wait for VER from node, send VERACK
	 * 3. wait for VERACK
	 */

	me := wire.NewNetAddress(nil, p.servicesFlag)

	// nil for connections other than TCP, announced as the unspecified address
	remote, _ := c.RemoteAddr().(*net.TCPAddr)
	you := wire.NewNetAddress(remote, wire.SFNodeNetwork)

	nonce, err := p2pwire.RandomUint64()
	if err != nil {
		p.logger.Warn("Handshake: failed to generate nonce, send VER with 0 nonce", slog.String(errKey, err.Error()))
	}

	const lastBlock = int32(0)
	verMsg := wire.NewMsgVersion(me, you, nonce, lastBlock)

	if p.userAgentName != nil && p.userAgentVersion != nil {
		err = verMsg.AddUserAgent(*p.userAgentName, *p.userAgentVersion)
		if err != nil {
			p.logger.Warn("Handshake: failed to add user agent, send VER without user agent", slog.String(errKey, err.Error()))
		}
	}

	const handshakeFailed = "Handshake failed"

	if err = p.writeFrame(c, verMsg); err != nil {
		p.logger.Error(handshakeFailed,
			slog.String("reason", "failed to write VER message"),
			slog.String(errKey, err.Error()),
		)

		return errors.Join(ErrHandshakeFailed, err)
	}

	p.setState(StateVersionSent)
	p.logger.Debug("Sent", slogUpperString(commandKey, verMsg.Command()))

	handshakeCtx, cancel := context.WithTimeout(ctx, p.handshakeTimeout)
	defer cancel()

	err = p.performHandShake(handshakeCtx, c, reader)
	if err != nil {
		p.logger.Error(handshakeFailed, slog.String(errKey, err.Error()))
		return err
	}

	return nil
}

func (p *Peer) performHandShake(ctx context.Context, c net.Conn, reader *WireReader) error {
	receivedVerAck := false
	sentVerAck := false

	for !receivedVerAck || !sentVerAck {
		msg, err := reader.ReadNextMsg(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return ErrHandshakeTimeout
			}
			if errors.Is(err, wire.ErrNetworkMismatch) {
				return err
			}
			return errors.Join(ErrHandshakeFailed, err)
		}

		switch m := msg.(type) {
		case *wire.MsgVerAck:
			p.logger.Debug("Handshake: received VERACK")
			receivedVerAck = true

		case *wire.MsgVersion:
			p.logger.Debug("Handshake: received VER",
				slog.String("user_agent", m.UserAgent),
				slog.Int("protocol_version", int(m.ProtocolVersion)),
				slog.Int("start_height", int(m.LastBlock)),
			)
			if sentVerAck {
				p.logger.Warn("Handshake: received version message after sending verack.")
				continue
			}

			p.remoteVersion.Store(m)
			p.setState(StateVersionReceived)

			// send VERACK to node
			if err = p.writeFrame(c, wire.NewMsgVerAck()); err != nil {
				return errors.Join(ErrHandshakeFailed, fmt.Errorf("failed to write VERACK message: %w", err))
			}

			p.logger.Debug("Handshake: sent VERACK")
			sentVerAck = true

		default:
			p.logger.Warn("Handshake: received unexpected message. Message was ignored", slogUpperString(commandKey, msg.Command()))
		}
	}

	return nil
}

func (p *Peer) writeFrame(c net.Conn, msg wire.Message) error {
	if p.writeTimeout > 0 {
		_ = c.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	}

	_, err := wire.WriteMessage(c, msg, p.network)
	return err
}

func (p *Peer) keepAlive() {
	p.execWg.Add(1)

	go func() {
		p.logger.Debug("Start keep-alive")
		defer p.logger.Debug("Stop keep-alive")
		defer p.execWg.Done()

		t := time.NewTicker(p.pingInterval)
		defer t.Stop()

		for {
			select {
			case <-p.execCtx.Done():
				return
			case <-t.C:
				nonce, err := p2pwire.RandomUint64()
				if err != nil {
					p.logger.Error("KeepAlive: failed to generate nonce for PING message", slog.String(errKey, err.Error()))
					continue
				}

				select {
				case p.writeCh <- wire.NewMsgPing(nonce):
				case <-p.execCtx.Done():
					return
				}
			}
		}
	}()
}

func (p *Peer) healthMonitor() {
	p.execWg.Add(1)

	go func() {
		p.logger.Debug("Start health monitor")
		defer p.logger.Debug("Stop health monitor")
		defer p.execWg.Done()

		// if nothing is received for certain amount of time, mark peer as unhealthy and disconnect
		t := time.NewTicker(p.healthThreshold)
		defer t.Stop()

		for {
			select {
			case <-p.execCtx.Done():
				return

			case <-p.aliveCh:
				t.Reset(p.healthThreshold)
				p.logger.Log(context.Background(), slogLvlTrace, "Connection is healthy - reset ticker", slog.Duration("interval", p.healthThreshold))

			case <-t.C:
				p.logger.Warn("Peer unhealthy - disconnecting")
				p.unhealthyDisconnect(ErrPeerUnhealthy)
				return
			}
		}
	}()
}

func (p *Peer) markAlive() {
	select {
	case p.aliveCh <- struct{}{}:
	default:
	}
}

// disconnect tears the connection down exactly once: cancel the peer context, wait for
// its goroutines, close the socket, then notify the handler.
func (p *Peer) disconnect(cause error) {
	p.closeOnce.Do(func() {
		p.logger.Info("Disconnecting")

		p.setState(StateClosed)
		p.cancelExecCtx()
		p.execWg.Wait()

		if p.lConn != nil {
			_ = p.lConn.Close()
		}

		p.logger.Info("Disconnected")
		p.mh.OnClose(p, cause)
		close(p.doneCh)
	})
}

func (p *Peer) unhealthyDisconnect(cause error) {
	// execute in new goroutine to avoid deadlock
	go p.disconnect(cause)
}

func (p *Peer) listenForMessages(reader *WireReader) {
	p.execWg.Add(1)

	go func() {
		l := p.logger
		l.Debug("Starting read handler")
		defer l.Debug("Shutting down read handler")
		defer p.execWg.Done()

		for {
			msg, err := reader.ReadNextMsg(p.execCtx)
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				l.Error("Failed to read message", slog.String(errKey, err.Error()))
				// stop peer
				p.unhealthyDisconnect(err)
				return
			}

			p.markAlive()

			cmd := msg.Command()
			l.Log(context.Background(), slogLvlTrace, "Received", slogUpperString(commandKey, cmd))

			switch cmd {
			// ignore handshake type messages
			case wire.CmdVersion, wire.CmdVerAck:
				l.Warn("Received handshake message after handshake completed", slogUpperString(commandKey, cmd))

			// handle keep-alive ping-pong
			case wire.CmdPing:
				ping, ok := msg.(*wire.MsgPing)
				if !ok {
					l.Warn("Received invalid PING")
					continue
				}

				select {
				case p.writeCh <- wire.NewMsgPong(ping.Nonce):
				case <-p.execCtx.Done():
					return
				}

			case wire.CmdPong:

			// pass message to client
			default:
				p.mh.OnReceive(msg, p)
			}
		}
	}()
}

func (p *Peer) sendMessages() {
	p.execWg.Add(1)

	go func() {
		l := p.logger

		l.Debug("Starting write handler")
		defer l.Debug("Shutting down write handler")
		defer p.execWg.Done()

		for {
			select {
			case <-p.execCtx.Done():
				return

			case msg := <-p.writeCh:
				// do not retry
				err := p.writeFrame(p.lConn, msg)
				if err != nil {
					l.Error("Failed to send message",
						slogUpperString(commandKey, msg.Command()),
						slog.String(errKey, err.Error()),
					)
					// stop peer
					p.unhealthyDisconnect(err)
					return
				}

				l.Log(context.Background(), slogLvlTrace, "Sent", slogUpperString(commandKey, msg.Command()))
				// let client react on sending msg
				p.mh.OnSend(msg, p)
			}
		}
	}()
}
