package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

func Test_GetNetwork(t *testing.T) {
	testCases := []struct {
		name            string
		networkStr      string
		expectedNetwork wire.BitcoinNet
		expectedPort    int
		expectedError   error
	}{
		{
			name:            "mainnet",
			networkStr:      "mainnet",
			expectedNetwork: wire.MainNet,
			expectedPort:    8333,
		},
		{
			name:            "testnet",
			networkStr:      "testnet",
			expectedNetwork: wire.TestNet3,
			expectedPort:    18333,
		},
		{
			name:            "regtest",
			networkStr:      "regtest",
			expectedNetwork: wire.RegTest,
			expectedPort:    18444,
		},
		{
			name:          "invalid network",
			networkStr:    "invalidnet",
			expectedError: ErrConfigUnknownNetwork,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			actualNetwork, err := GetNetwork(tc.networkStr)

			// then
			require.ErrorIs(t, err, tc.expectedError)
			assert.Equal(t, tc.expectedNetwork, actualNetwork)
			if tc.expectedError == nil {
				assert.Equal(t, tc.expectedPort, DefaultPort(actualNetwork))
				assert.NotContains(t, actualNetwork.String(), "Unknown")
			}
		})
	}
}

func Test_DefaultDNSSeeds(t *testing.T) {
	testCases := []struct {
		name      string
		network   wire.BitcoinNet
		expectAny bool
	}{
		{name: "mainnet", network: wire.MainNet, expectAny: true},
		{name: "testnet", network: wire.TestNet3, expectAny: true},
		{name: "regtest", network: wire.RegTest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			seeds := DefaultDNSSeeds(tc.network)

			// then
			if !tc.expectAny {
				require.Empty(t, seeds)
				return
			}

			require.NotEmpty(t, seeds)
			require.NotEqual(t, DefaultDNSSeeds(wire.MainNet), DefaultDNSSeeds(wire.TestNet3))
		})
	}
}

func Test_Validate(t *testing.T) {
	testCases := []struct {
		name          string
		modify        func(c *BlockfetchConfig)
		expectedError error
	}{
		{
			name:   "defaults",
			modify: func(_ *BlockfetchConfig) {},
		},
		{
			name:          "unknown network",
			modify:        func(c *BlockfetchConfig) { c.Network = "signet" },
			expectedError: ErrConfigUnknownNetwork,
		},
		{
			name:          "zero count",
			modify:        func(c *BlockfetchConfig) { c.Fetch.Count = 0 },
			expectedError: ErrConfigInvalid,
		},
		{
			name:          "negative height",
			modify:        func(c *BlockfetchConfig) { c.Fetch.StartHeight = -1 },
			expectedError: ErrConfigInvalid,
		},
		{
			name:          "zero request timeout",
			modify:        func(c *BlockfetchConfig) { c.Fetch.RequestTimeout = 0 * time.Second },
			expectedError: ErrConfigInvalid,
		},
		{
			name:          "malformed start hash",
			modify:        func(c *BlockfetchConfig) { c.Fetch.StartHash = "xyz" },
			expectedError: ErrConfigInvalid,
		},
		{
			name: "peer without port",
			modify: func(c *BlockfetchConfig) {
				c.Discovery.Peers = []*PeerAddressConfig{{Host: "localhost"}}
			},
			expectedError: ErrConfigInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := getDefaultBlockfetchConfig()
			tc.modify(cfg)

			// when
			err := cfg.Validate()

			// then
			require.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func Test_GetP2PUrl(t *testing.T) {
	// given
	p := &PeerAddressConfig{Host: "::1", Port: 8333}

	// when
	url, err := p.GetP2PUrl()

	// then
	require.NoError(t, err)
	assert.Equal(t, "[::1]:8333", url)
}
