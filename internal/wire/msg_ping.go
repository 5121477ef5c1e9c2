package wire

import "io"

// MsgPing is a keep-alive probe, answered with a MsgPong carrying the same nonce.
type MsgPing struct {
	Nonce uint64
}

func NewMsgPing(nonce uint64) *MsgPing {
	return &MsgPing{Nonce: nonce}
}

func (msg *MsgPing) Decode(r io.Reader) (err error) {
	msg.Nonce, err = readUint64(r)
	return err
}

func (msg *MsgPing) Encode(w io.Writer) error {
	return writeUint64(w, msg.Nonce)
}

func (msg *MsgPing) Command() string {
	return CmdPing
}

func (msg *MsgPing) MaxPayloadLength() uint64 {
	return 8
}

type MsgPong struct {
	Nonce uint64
}

func NewMsgPong(nonce uint64) *MsgPong {
	return &MsgPong{Nonce: nonce}
}

func (msg *MsgPong) Decode(r io.Reader) (err error) {
	msg.Nonce, err = readUint64(r)
	return err
}

func (msg *MsgPong) Encode(w io.Writer) error {
	return writeUint64(w, msg.Nonce)
}

func (msg *MsgPong) Command() string {
	return CmdPong
}

func (msg *MsgPong) MaxPayloadLength() uint64 {
	return 8
}
