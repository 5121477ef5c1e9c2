package p2p

import (
	"time"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

type PeerOptions func(p *Peer)

// WithMaxPayload limits the payload size of frames accepted from the node.
func WithMaxPayload(maxPayload uint64) PeerOptions {
	return func(p *Peer) {
		p.maxPayload = maxPayload
	}
}

func WithReadBufferSize(size int) PeerOptions {
	return func(p *Peer) {
		p.readBuffSize = size
	}
}

func WithUserAgent(userAgentName string, userAgentVersion string) PeerOptions {
	return func(p *Peer) {
		p.userAgentName = &userAgentName
		p.userAgentVersion = &userAgentVersion
	}
}

func WithWriteChannelSize(n uint16) PeerOptions {
	return func(p *Peer) {
		p.writeCh = make(chan wire.Message, n)
	}
}

func WithPingInterval(interval time.Duration, connectionHealthThreshold time.Duration) PeerOptions {
	return func(p *Peer) {
		p.pingInterval = interval
		p.healthThreshold = connectionHealthThreshold
	}
}

func WithServiceFlag(flag wire.ServiceFlag) PeerOptions {
	return func(p *Peer) {
		p.servicesFlag = flag
	}
}

func WithDialer(dialer Dialer) PeerOptions {
	return func(p *Peer) {
		p.dialer = dialer
	}
}

func WithConnectionTimeout(d time.Duration) PeerOptions {
	return func(p *Peer) {
		p.connectionTimeout = d
	}
}

func WithHandshakeTimeout(d time.Duration) PeerOptions {
	return func(p *Peer) {
		p.handshakeTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) PeerOptions {
	return func(p *Peer) {
		p.writeTimeout = d
	}
}
