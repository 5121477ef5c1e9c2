package wire_test

import (
	"bytes"
	"testing"

	p2pwire "github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/blockfetch/internal/testdata"
	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

// Frames produced here must be readable by the go-p2p codec and vice versa.
func TestCompat_EncodeReadByGoP2P(t *testing.T) {
	t.Run("getdata", func(t *testing.T) {
		// given
		msg := wire.NewMsgGetData()
		require.NoError(t, msg.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, testdata.Block1Hash)))

		frame, err := wire.Encode(msg, bitcoinNet)
		require.NoError(t, err)

		// when
		decoded, _, err := p2pwire.ReadMessage(bytes.NewReader(frame), p2pwire.ProtocolVersion, p2pwire.BitcoinNet(bitcoinNet))

		// then
		require.NoError(t, err)
		getData, ok := decoded.(*p2pwire.MsgGetData)
		require.True(t, ok)
		require.Len(t, getData.InvList, 1)
		require.Equal(t, p2pwire.InvTypeBlock, getData.InvList[0].Type)
		require.Equal(t, *testdata.Block1Hash, getData.InvList[0].Hash)
	})

	t.Run("ping", func(t *testing.T) {
		// given
		frame, err := wire.Encode(wire.NewMsgPing(0xcafe), bitcoinNet)
		require.NoError(t, err)

		// when
		decoded, _, err := p2pwire.ReadMessage(bytes.NewReader(frame), p2pwire.ProtocolVersion, p2pwire.BitcoinNet(bitcoinNet))

		// then
		require.NoError(t, err)
		ping, ok := decoded.(*p2pwire.MsgPing)
		require.True(t, ok)
		require.Equal(t, uint64(0xcafe), ping.Nonce)
	})

	t.Run("verack", func(t *testing.T) {
		// given
		frame, err := wire.Encode(wire.NewMsgVerAck(), bitcoinNet)
		require.NoError(t, err)

		// when
		decoded, _, err := p2pwire.ReadMessage(bytes.NewReader(frame), p2pwire.ProtocolVersion, p2pwire.BitcoinNet(bitcoinNet))

		// then
		require.NoError(t, err)
		require.Equal(t, p2pwire.CmdVerAck, decoded.Command())
	})
}

func TestCompat_WrittenByGoP2P(t *testing.T) {
	t.Run("pong", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		err := p2pwire.WriteMessage(&buf, p2pwire.NewMsgPong(7), p2pwire.ProtocolVersion, p2pwire.BitcoinNet(bitcoinNet))
		require.NoError(t, err)

		// when
		msg, n, err := wire.Decode(buf.Bytes(), bitcoinNet)

		// then
		require.NoError(t, err)
		require.Equal(t, buf.Len(), n)
		require.Equal(t, wire.NewMsgPong(7), msg)
	})

	t.Run("inv", func(t *testing.T) {
		// given
		inv := p2pwire.NewMsgInv()
		require.NoError(t, inv.AddInvVect(p2pwire.NewInvVect(p2pwire.InvTypeBlock, testdata.GenesisHashH)))

		var buf bytes.Buffer
		err := p2pwire.WriteMessage(&buf, inv, p2pwire.ProtocolVersion, p2pwire.BitcoinNet(bitcoinNet))
		require.NoError(t, err)

		// when
		msg, _, err := wire.Decode(buf.Bytes(), bitcoinNet)

		// then
		require.NoError(t, err)
		decoded, ok := msg.(*wire.MsgInv)
		require.True(t, ok)
		require.Len(t, decoded.InvList, 1)
		require.Equal(t, wire.InvTypeBlock, decoded.InvList[0].Type)
		require.Equal(t, *testdata.GenesisHashH, decoded.InvList[0].Hash)
	})

	t.Run("block header hash", func(t *testing.T) {
		// given
		var header p2pwire.BlockHeader
		require.NoError(t, header.Deserialize(bytes.NewReader(testdata.GenesisHeader)))

		var ours wire.BlockHeader
		require.NoError(t, ours.Deserialize(bytes.NewReader(testdata.GenesisHeader)))

		// when
		expected := header.BlockHash()
		actual := ours.BlockHash()

		// then
		require.Equal(t, expected, actual)
	})
}
