package p2p

import (
	"context"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

type PeerI interface {
	Connect(ctx context.Context) error
	Connected() bool
	Shutdown()
	State() State
	WriteMsg(msg wire.Message) error
	Network() wire.BitcoinNet
	String() string
}

type MessageHandlerI interface {
	// OnReceive handles incoming messages depending on command type
	OnReceive(msg wire.Message, peer PeerI)
	// OnSend handles outgoing messages depending on command type
	OnSend(msg wire.Message, peer PeerI)
	// OnClose is called exactly once when a peer which reached Ready is torn down.
	// cause is nil on a requested shutdown.
	OnClose(peer PeerI, cause error)
}
