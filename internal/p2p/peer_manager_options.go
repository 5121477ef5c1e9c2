package p2p

import "time"

type PeerManagerOptions func(p *PeerManager)

// WithConnectRetries sets how often a candidate is retried and the pause between attempts.
func WithConnectRetries(retries uint64, interval time.Duration) PeerManagerOptions {
	return func(p *PeerManager) {
		p.connectRetries = retries
		p.retryInterval = interval
	}
}
