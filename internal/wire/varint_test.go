package wire_test

import (
	"bytes"
	"crypto/sha256"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

func sha256d(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

func TestVarInt_RoundTrip(t *testing.T) {
	testCases := []struct {
		value        uint64
		expectedSize int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
		{math.MaxUint64, 9},
	}

	for _, tc := range testCases {
		// given
		var buf bytes.Buffer

		// when
		err := wire.WriteVarInt(&buf, tc.value)
		require.NoError(t, err)
		encoded := bytes.Clone(buf.Bytes())

		decoded, err := wire.ReadVarInt(&buf)

		// then
		require.NoError(t, err)
		require.Equal(t, tc.value, decoded)
		require.Len(t, encoded, tc.expectedSize)
		require.Equal(t, tc.expectedSize, wire.VarIntSerializeSize(tc.value))
	}
}

func TestVarInt_NonCanonical(t *testing.T) {
	testCases := []struct {
		name    string
		encoded []byte
	}{
		{"1 byte value in 3 bytes", []byte{0xfd, 0xfc, 0x00}},
		{"2 byte value in 5 bytes", []byte{0xfe, 0xff, 0xff, 0x00, 0x00}},
		{"4 byte value in 9 bytes", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			_, err := wire.ReadVarInt(bytes.NewReader(tc.encoded))

			// then
			require.ErrorIs(t, err, wire.ErrNonCanonical)
		})
	}
}

func TestVarBytes(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		payload := []byte("/blockfetch:1.0.0/")

		// when
		require.NoError(t, wire.WriteVarBytes(&buf, payload))
		decoded, err := wire.ReadVarBytes(&buf, 256, "user agent")

		// then
		require.NoError(t, err)
		require.Equal(t, payload, decoded)
	})

	t.Run("too long", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		require.NoError(t, wire.WriteVarBytes(&buf, make([]byte, 10)))

		// when
		_, err := wire.ReadVarBytes(&buf, 9, "user agent")

		// then
		require.ErrorIs(t, err, wire.ErrTooManyElements)
	})
}
