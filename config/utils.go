package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/libsv/go-p2p/chaincfg/chainhash"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var (
	ErrConfigUnknownNetwork = errors.New("unknown bitcoin network")
	ErrConfigInvalid        = errors.New("invalid config")
)

func GetNetwork(networkStr string) (wire.BitcoinNet, error) {
	switch networkStr {
	case "mainnet":
		return wire.MainNet, nil
	case "testnet":
		return wire.TestNet3, nil
	case "regtest":
		return wire.RegTest, nil
	default:
		return 0, errors.Join(ErrConfigUnknownNetwork, fmt.Errorf("network: %s", networkStr))
	}
}

// DefaultPort returns the standard p2p port of the network.
func DefaultPort(network wire.BitcoinNet) int {
	switch network {
	case wire.TestNet3:
		return 18333
	case wire.RegTest:
		return 18444
	default:
		return 8333
	}
}

// DefaultDNSSeeds returns the well known seeds of the network. Regtest has none.
func DefaultDNSSeeds(network wire.BitcoinNet) []string {
	switch network {
	case wire.MainNet:
		return []string{
			"seed.bitcoin.sipa.be",
			"dnsseed.bluematt.me",
			"dnsseed.bitcoin.dashjr-list-of-p2p-nodes.us",
			"seed.bitcoinstats.com",
			"seed.bitcoin.jonasschnelli.ch",
			"seed.btc.petertodd.net",
		}
	case wire.TestNet3:
		return []string{
			"testnet-seed.bitcoin.jonasschnelli.ch",
			"seed.tbtc.petertodd.net",
			"seed.testnet.bitcoin.sprovoost.nl",
			"testnet-seed.bluematt.me",
		}
	default:
		return nil
	}
}

func (p *PeerAddressConfig) GetP2PUrl() (string, error) {
	if p.Port == 0 {
		return "", fmt.Errorf("port not set for peer %s", p.Host)
	}

	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port)), nil
}

// Validate checks the values needed to run a fetch.
func (c *BlockfetchConfig) Validate() error {
	if _, err := GetNetwork(c.Network); err != nil {
		return err
	}

	if c.Fetch == nil || c.Peer == nil {
		return errors.Join(ErrConfigInvalid, errors.New("fetch and peer sections are required"))
	}

	if c.Fetch.Count <= 0 {
		return errors.Join(ErrConfigInvalid, fmt.Errorf("fetch.count must be positive, got %d", c.Fetch.Count))
	}

	if c.Fetch.StartHeight < 0 {
		return errors.Join(ErrConfigInvalid, fmt.Errorf("fetch.startHeight must not be negative, got %d", c.Fetch.StartHeight))
	}

	if c.Fetch.RequestTimeout <= 0 {
		return errors.Join(ErrConfigInvalid, errors.New("fetch.requestTimeout must be positive"))
	}

	if c.Fetch.OutputDir == "" {
		return errors.Join(ErrConfigInvalid, errors.New("fetch.outputDir must be set"))
	}

	if _, err := chainhash.NewHashFromStr(c.Fetch.StartHash); err != nil {
		return errors.Join(ErrConfigInvalid, fmt.Errorf("fetch.startHash: %w", err))
	}

	if c.Discovery == nil {
		return nil
	}

	for _, p := range c.Discovery.Peers {
		if _, err := p.GetP2PUrl(); err != nil {
			return errors.Join(ErrConfigInvalid, err)
		}
	}

	return nil
}
