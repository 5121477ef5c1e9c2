package testutils

import (
	"encoding/hex"
	"slices"
	"testing"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// RunParallel runs f as subtest name, in parallel with its siblings if parallel is set.
func RunParallel(t *testing.T, parallel bool, name string, f func(t *testing.T)) {
	t.Helper()

	t.Run(name, func(t *testing.T) {
		if parallel {
			t.Parallel()
		}

		f(t)
	})
}

func HexDecodeString(t *testing.T, hexString string) []byte {
	t.Helper()

	b, err := hex.DecodeString(hexString)
	require.NoError(t, err)

	return b
}

func RevHexDecodeString(t *testing.T, hashString string) []byte {
	t.Helper()

	hash := HexDecodeString(t, hashString)
	slices.Reverse(hash)

	return hash
}

// Chainhash parses a hash in its reversed display form.
func Chainhash(t *testing.T, hashString string) *chainhash.Hash {
	t.Helper()

	hash, err := chainhash.NewHashFromStr(hashString)
	require.NoError(t, err)

	return hash
}

// PtrTo returns a pointer to the given value.
func PtrTo[T any](v T) *T {
	return &v
}
