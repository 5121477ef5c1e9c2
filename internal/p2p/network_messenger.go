package p2p

import (
	"errors"

	"github.com/libsv/go-p2p/chaincfg/chainhash"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var ErrNoConnectedPeer = errors.New("no connected peer")

type NetworkMessenger struct {
	pm *PeerManager
}

func NewNetworkMessenger(m *PeerManager) *NetworkMessenger {
	return &NetworkMessenger{pm: m}
}

func (h *NetworkMessenger) CountConnectedPeers() uint {
	return h.pm.CountConnectedPeers()
}

// RequestBlock will send a GETDATA message for a single block to the first connected peer.
// It returns the peer the message was queued on.
func (h *NetworkMessenger) RequestBlock(blockHash *chainhash.Hash) (PeerI, error) {
	return h.RequestBlocks([]*chainhash.Hash{blockHash})
}

// RequestBlocks will send GETDATA messages for the blocks to the first connected peer,
// splitting the hashes into messages of at most wire.MaxInvPerMsg entries.
func (h *NetworkMessenger) RequestBlocks(blockHashes []*chainhash.Hash) (PeerI, error) {
	var messages []*wire.MsgGetData

	getMsg := wire.NewMsgGetData()
	messages = append(messages, getMsg)

	for i, hash := range blockHashes {
		iv := wire.NewInvVect(wire.InvTypeBlock, hash)
		if err := getMsg.AddInvVect(iv); err != nil {
			return nil, err
		}

		// create new message if we met batch size
		if (i+1)%wire.MaxInvPerMsg == 0 && (i+1) < len(blockHashes) {
			getMsg = wire.NewMsgGetData()
			messages = append(messages, getMsg)
		}
	}

	peer := h.pm.GetConnectedPeer()
	if peer == nil {
		return nil, ErrNoConnectedPeer
	}

	for _, msg := range messages {
		if err := peer.WriteMsg(msg); err != nil {
			return peer, err
		}
	}

	return peer, nil
}
