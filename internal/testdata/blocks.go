package testdata

import (
	"bytes"
	"encoding/binary"

	"github.com/libsv/go-bc"
	"github.com/libsv/go-p2p/chaincfg/chainhash"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

// RawTx builds a minimal coinbase-shaped transaction. Different tags give different
// transaction hashes.
func RawTx(tag uint32) []byte {
	var b bytes.Buffer
	var u32 [4]byte

	b.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version
	b.WriteByte(0x01)                         // input count
	b.Write(make([]byte, chainhash.HashSize)) // previous tx
	b.Write([]byte{0xff, 0xff, 0xff, 0xff})   // previous index

	binary.LittleEndian.PutUint32(u32[:], tag)
	b.WriteByte(0x05) // unlocking script length
	b.WriteByte(0x04) // push 4 bytes
	b.Write(u32[:])

	b.Write([]byte{0xff, 0xff, 0xff, 0xff})                   // sequence
	b.WriteByte(0x01)                                         // output count
	b.Write([]byte{0x00, 0xf2, 0x05, 0x2a, 0x01, 0, 0, 0}) // satoshis
	b.Write([]byte{0x01, 0x51})                               // OP_TRUE
	b.Write([]byte{0x00, 0x00, 0x00, 0x00})                   // lock time

	return b.Bytes()
}

// NewBlock builds a block on top of prev holding nTx transactions with a correct merkle root.
func NewBlock(prev chainhash.Hash, seed uint32, nTx int) *wire.MsgBlock {
	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   0x20000000,
		PrevBlock: prev,
		Timestamp: 1_600_000_000 + seed,
		Bits:      0x207fffff,
		Nonce:     seed,
	})

	for i := 0; i < nTx; i++ {
		block.AddTransaction(RawTx(seed<<8 | uint32(i))) // #nosec G115
	}

	if nTx > 0 {
		tree := bc.BuildMerkleTreeStoreChainHash(block.TxHashes())
		block.Header.MerkleRoot = *tree[len(tree)-1]
	}

	return block
}

// NewChain builds n linked blocks. The returned slice is ordered tip first, so that
// chain[i].Header.PrevBlock == chain[i+1].BlockHash().
func NewChain(n int, txPerBlock int) []*wire.MsgBlock {
	chain := make([]*wire.MsgBlock, n)

	var prev chainhash.Hash
	for i := n - 1; i >= 0; i-- {
		chain[i] = NewBlock(prev, uint32(n-i), txPerBlock) // #nosec G115
		prev = chain[i].BlockHash()
	}

	return chain
}
