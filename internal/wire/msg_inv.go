package wire

import (
	"fmt"
	"io"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

// MaxInvPerMsg is the maximum number of inventory vectors in a single message.
const MaxInvPerMsg = 50000

const invVectSize = 4 + chainhash.HashSize

// InvType identifies the kind of object an inventory vector refers to.
type InvType uint32

const (
	InvTypeError         InvType = 0
	InvTypeTx            InvType = 1
	InvTypeBlock         InvType = 2
	InvTypeFilteredBlock InvType = 3
)

func (t InvType) String() string {
	switch t {
	case InvTypeError:
		return "ERROR"
	case InvTypeTx:
		return "MSG_TX"
	case InvTypeBlock:
		return "MSG_BLOCK"
	case InvTypeFilteredBlock:
		return "MSG_FILTERED_BLOCK"
	}

	return fmt.Sprintf("Unknown InvType (%d)", uint32(t))
}

// InvVect identifies a block or transaction by type and hash.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func decodeInvList(r io.Reader) ([]*InvVect, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > MaxInvPerMsg {
		return nil, fmt.Errorf("%w: %d inventory vectors, max %d", ErrTooManyElements, count, MaxInvPerMsg)
	}

	list := make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}

		typ, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		iv.Type = InvType(typ)

		if err = readHash(r, &iv.Hash); err != nil {
			return nil, err
		}

		list = append(list, iv)
	}

	return list, nil
}

func encodeInvList(w io.Writer, list []*InvVect) error {
	if len(list) > MaxInvPerMsg {
		return fmt.Errorf("%w: %d inventory vectors, max %d", ErrTooManyElements, len(list), MaxInvPerMsg)
	}

	if err := WriteVarInt(w, uint64(len(list))); err != nil {
		return err
	}

	for _, iv := range list {
		if err := writeUint32(w, uint32(iv.Type)); err != nil {
			return err
		}

		if _, err := w.Write(iv.Hash[:]); err != nil {
			return err
		}
	}

	return nil
}

func addInvVect(list []*InvVect, iv *InvVect) ([]*InvVect, error) {
	if len(list)+1 > MaxInvPerMsg {
		return list, fmt.Errorf("%w: max %d inventory vectors", ErrTooManyElements, MaxInvPerMsg)
	}

	return append(list, iv), nil
}

func maxInvPayload() uint64 {
	return 9 + MaxInvPerMsg*invVectSize
}

// MsgInv announces known objects.
type MsgInv struct {
	InvList []*InvVect
}

func NewMsgInv() *MsgInv {
	return &MsgInv{InvList: make([]*InvVect, 0)}
}

func (msg *MsgInv) AddInvVect(iv *InvVect) (err error) {
	msg.InvList, err = addInvVect(msg.InvList, iv)
	return err
}

func (msg *MsgInv) Decode(r io.Reader) (err error) {
	msg.InvList, err = decodeInvList(r)
	return err
}

func (msg *MsgInv) Encode(w io.Writer) error {
	return encodeInvList(w, msg.InvList)
}

func (msg *MsgInv) Command() string {
	return CmdInv
}

func (msg *MsgInv) MaxPayloadLength() uint64 {
	return maxInvPayload()
}

// MsgGetData requests the objects listed in InvList.
type MsgGetData struct {
	InvList []*InvVect
}

func NewMsgGetData() *MsgGetData {
	return &MsgGetData{InvList: make([]*InvVect, 0)}
}

func (msg *MsgGetData) AddInvVect(iv *InvVect) (err error) {
	msg.InvList, err = addInvVect(msg.InvList, iv)
	return err
}

func (msg *MsgGetData) Decode(r io.Reader) (err error) {
	msg.InvList, err = decodeInvList(r)
	return err
}

func (msg *MsgGetData) Encode(w io.Writer) error {
	return encodeInvList(w, msg.InvList)
}

func (msg *MsgGetData) Command() string {
	return CmdGetData
}

func (msg *MsgGetData) MaxPayloadLength() uint64 {
	return maxInvPayload()
}

// MsgNotFound is the reply to a getdata for objects the peer does not have.
type MsgNotFound struct {
	InvList []*InvVect
}

func NewMsgNotFound() *MsgNotFound {
	return &MsgNotFound{InvList: make([]*InvVect, 0)}
}

func (msg *MsgNotFound) AddInvVect(iv *InvVect) (err error) {
	msg.InvList, err = addInvVect(msg.InvList, iv)
	return err
}

func (msg *MsgNotFound) Decode(r io.Reader) (err error) {
	msg.InvList, err = decodeInvList(r)
	return err
}

func (msg *MsgNotFound) Encode(w io.Writer) error {
	return encodeInvList(w, msg.InvList)
}

func (msg *MsgNotFound) Command() string {
	return CmdNotFound
}

func (msg *MsgNotFound) MaxPayloadLength() uint64 {
	return maxInvPayload()
}
