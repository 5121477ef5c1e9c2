package testdata

import (
	"encoding/hex"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

var (
	// GenesisHeaderHex is the serialized header of the bitcoin main network genesis block.
	GenesisHeaderHex  = "0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c"
	GenesisHeader, _  = hex.DecodeString(GenesisHeaderHex)
	GenesisHash       = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	GenesisHashH, _   = chainhash.NewHashFromStr(GenesisHash)
	GenesisMerkleRoot = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

	// GenesisTxsHex is the transaction part of the genesis block payload: count and coinbase.
	GenesisTxsHex = "01" + "01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff4d04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f757420666f722062616e6b73ffffffff0100f2052a01000000434104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5fac00000000"
	GenesisTxs, _ = hex.DecodeString(GenesisTxsHex)

	Block1        = "0000000000000000072be13e375ffd673b1f37b0ec5ecde7b7e15b01f5685d07"
	Block1Hash, _ = chainhash.NewHashFromStr(Block1)

	TX1RawString = "01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff1a0386c40b2f7461616c2e636f6d2f00cf47ad9c7af83836000000ffffffff0117564425000000001976a914522cf9e7626d9bd8729e5a1398ece40dad1b6a2f88ac00000000"
	TX1Raw, _    = hex.DecodeString(TX1RawString)
)
