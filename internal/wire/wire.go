// Package wire implements the bitcoin peer-to-peer message framing and the subset of
// messages needed to handshake with a node and download blocks from it.
package wire

import (
	"fmt"
	"io"
)

// BitcoinNet is the network magic carried in the first four bytes of every frame.
type BitcoinNet uint32

const (
	// MainNet is the bitcoin main network.
	MainNet BitcoinNet = 0xd9b4bef9
	// TestNet3 is the bitcoin test network (version 3).
	TestNet3 BitcoinNet = 0x0709110b
	// RegTest is the bitcoin regression test network.
	RegTest BitcoinNet = 0xdab5bffa
)

var netNames = map[BitcoinNet]string{
	MainNet:  "MainNet",
	TestNet3: "TestNet3",
	RegTest:  "RegTest",
}

func (n BitcoinNet) String() string {
	if s, ok := netNames[n]; ok {
		return s
	}

	return fmt.Sprintf("Unknown BitcoinNet (0x%08x)", uint32(n))
}

// ServiceFlag identifies services supported by a peer.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a peer serving the full block chain.
	SFNodeNetwork ServiceFlag = 1 << iota
)

const (
	// ProtocolVersion is the protocol version announced in our version message.
	ProtocolVersion uint32 = 70016

	// BIP0037Version is the first protocol version carrying the relay flag in version.
	BIP0037Version uint32 = 70001
)

// Commands supported by the codec.
const (
	CmdVersion  = "version"
	CmdVerAck   = "verack"
	CmdGetData  = "getdata"
	CmdBlock    = "block"
	CmdInv      = "inv"
	CmdNotFound = "notfound"
	CmdPing     = "ping"
	CmdPong     = "pong"
)

// Message is a payload which can be framed by the codec.
type Message interface {
	Decode(r io.Reader) error
	Encode(w io.Writer) error
	Command() string
	MaxPayloadLength() uint64
}

func makeEmptyMessage(command string) (Message, error) {
	var msg Message

	switch command {
	case CmdVersion:
		msg = &MsgVersion{}
	case CmdVerAck:
		msg = &MsgVerAck{}
	case CmdGetData:
		msg = &MsgGetData{}
	case CmdBlock:
		msg = &MsgBlock{}
	case CmdInv:
		msg = &MsgInv{}
	case CmdNotFound:
		msg = &MsgNotFound{}
	case CmdPing:
		msg = &MsgPing{}
	case CmdPong:
		msg = &MsgPong{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	return msg, nil
}
