package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// MaxUserAgentLen is the maximum allowed length for the user agent field.
	MaxUserAgentLen = 256

	maxVersionPayload = 1024
	netAddressSize    = 26
)

// NetAddress is a peer address as carried in the version message (without timestamp).
type NetAddress struct {
	Services ServiceFlag
	IP       net.IP
	Port     uint16
}

// NewNetAddress builds a NetAddress from a TCP address. A nil address yields the
// unspecified address.
func NewNetAddress(addr *net.TCPAddr, services ServiceFlag) NetAddress {
	na := NetAddress{Services: services, IP: net.IPv6unspecified}
	if addr == nil {
		return na
	}

	if ip := addr.IP.To16(); ip != nil {
		na.IP = ip
	}

	if addr.Port > 0 && addr.Port <= 0xffff {
		na.Port = uint16(addr.Port) // #nosec G115
	}

	return na
}

func (na *NetAddress) decode(r io.Reader) error {
	services, err := readUint64(r)
	if err != nil {
		return err
	}

	var buf [18]byte
	if _, err = io.ReadFull(r, buf[:]); err != nil {
		return err
	}

	na.Services = ServiceFlag(services)
	na.IP = net.IP(append([]byte(nil), buf[:16]...))
	na.Port = binary.BigEndian.Uint16(buf[16:])

	return nil
}

func (na *NetAddress) encode(w io.Writer) error {
	if err := writeUint64(w, uint64(na.Services)); err != nil {
		return err
	}

	var buf [18]byte
	ip := na.IP.To16()
	if ip == nil {
		ip = net.IPv6unspecified
	}

	copy(buf[:16], ip)
	binary.BigEndian.PutUint16(buf[16:], na.Port)

	_, err := w.Write(buf[:])
	return err
}

// MsgVersion is the first message sent on a connection. Fields after LastBlock are
// optional on the wire: Relay is present from BIP0037Version on, and any bytes
// following it are kept in Extra so that re-encoding is exact.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       int64
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	Relay           bool
	Extra           []byte
}

// NewMsgVersion returns a version message for the current protocol version.
func NewMsgVersion(me, you NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion), // #nosec G115
		Services:        me.Services,
		Timestamp:       time.Now().Unix(),
		AddrYou:         you,
		AddrMe:          me,
		Nonce:           nonce,
		UserAgent:       "",
		LastBlock:       lastBlock,
		Relay:           true,
	}
}

// AddUserAgent sets the user agent to "/name:version/".
func (msg *MsgVersion) AddUserAgent(name, version string) error {
	ua := fmt.Sprintf("/%s:%s/", name, version)
	if len(ua) > MaxUserAgentLen {
		return fmt.Errorf("user agent too long: %d bytes, max %d", len(ua), MaxUserAgentLen)
	}

	msg.UserAgent = ua
	return nil
}

func (msg *MsgVersion) hasRelayField() bool {
	return msg.ProtocolVersion >= int32(BIP0037Version) // #nosec G115
}

func (msg *MsgVersion) Decode(r io.Reader) error {
	pver, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = int32(pver) // #nosec G115

	services, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Services = ServiceFlag(services)

	ts, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Timestamp = int64(ts) // #nosec G115

	if err = msg.AddrYou.decode(r); err != nil {
		return err
	}

	if err = msg.AddrMe.decode(r); err != nil {
		return err
	}

	if msg.Nonce, err = readUint64(r); err != nil {
		return err
	}

	ua, err := ReadVarBytes(r, MaxUserAgentLen, "user agent")
	if err != nil {
		return err
	}
	msg.UserAgent = string(ua)

	lastBlock, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.LastBlock = int32(lastBlock) // #nosec G115

	msg.Relay = false
	msg.Extra = nil

	var relay [1]byte
	if _, err = io.ReadFull(r, relay[:]); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	switch relay[0] {
	case 0:
	case 1:
		msg.Relay = true
	default:
		return fmt.Errorf("invalid relay flag 0x%02x", relay[0])
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if len(rest) > 0 {
		msg.Extra = rest
	}

	return nil
}

func (msg *MsgVersion) Encode(w io.Writer) error {
	if len(msg.UserAgent) > MaxUserAgentLen {
		return fmt.Errorf("user agent too long: %d bytes, max %d", len(msg.UserAgent), MaxUserAgentLen)
	}

	err := writeUint32(w, uint32(msg.ProtocolVersion)) // #nosec G115
	if err != nil {
		return err
	}

	if err = writeUint64(w, uint64(msg.Services)); err != nil {
		return err
	}

	if err = writeUint64(w, uint64(msg.Timestamp)); err != nil { // #nosec G115
		return err
	}

	if err = msg.AddrYou.encode(w); err != nil {
		return err
	}

	if err = msg.AddrMe.encode(w); err != nil {
		return err
	}

	if err = writeUint64(w, msg.Nonce); err != nil {
		return err
	}

	if err = WriteVarBytes(w, []byte(msg.UserAgent)); err != nil {
		return err
	}

	if err = writeUint32(w, uint32(msg.LastBlock)); err != nil { // #nosec G115
		return err
	}

	if !msg.hasRelayField() && !msg.Relay && len(msg.Extra) == 0 {
		return nil
	}

	relay := []byte{0}
	if msg.Relay {
		relay[0] = 1
	}

	if _, err = w.Write(relay); err != nil {
		return err
	}

	_, err = w.Write(msg.Extra)
	return err
}

func (msg *MsgVersion) Command() string {
	return CmdVersion
}

func (msg *MsgVersion) MaxPayloadLength() uint64 {
	return maxVersionPayload
}

// MsgVerAck acknowledges a version message. It has no payload.
type MsgVerAck struct{}

func NewMsgVerAck() *MsgVerAck {
	return &MsgVerAck{}
}

func (msg *MsgVerAck) Decode(io.Reader) error { return nil }

func (msg *MsgVerAck) Encode(io.Writer) error { return nil }

func (msg *MsgVerAck) Command() string {
	return CmdVerAck
}

func (msg *MsgVerAck) MaxPayloadLength() uint64 {
	return 0
}
