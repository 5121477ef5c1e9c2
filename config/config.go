package config

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type BlockfetchConfig struct {
	LogLevel   string            `mapstructure:"logLevel"`
	LogFormat  string            `mapstructure:"logFormat"`
	Network    string            `mapstructure:"network"`
	Prometheus *PrometheusConfig `mapstructure:"prometheus"`
	Tracing    *TracingConfig    `mapstructure:"tracing"`
	Discovery  *DiscoveryConfig  `mapstructure:"discovery"`
	Peer       *PeerConfig       `mapstructure:"peer"`
	Fetch      *FetchConfig      `mapstructure:"fetch"`
}

type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Addr     string `mapstructure:"addr"`
}

func (p *PrometheusConfig) IsEnabled() bool {
	return p != nil && p.Enabled && p.Addr != "" && p.Endpoint != ""
}

type TracingConfig struct {
	Enabled            bool                 `mapstructure:"enabled"`
	DialAddr           string               `mapstructure:"dialAddr"`
	Sample             int                  `mapstructure:"sample"`
	Attributes         map[string]string    `mapstructure:"attributes"`
	KeyValueAttributes []attribute.KeyValue `mapstructure:"-"`
}

func (t *TracingConfig) IsEnabled() bool {
	return t != nil && t.Enabled && t.DialAddr != ""
}

// DiscoveryConfig lists where peer candidates come from. Static peers take precedence
// over DNS seeds when both are set.
type DiscoveryConfig struct {
	Peers    []*PeerAddressConfig `mapstructure:"peers"`
	DNSSeeds []string             `mapstructure:"dnsSeeds"`
}

type PeerAddressConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PeerConfig struct {
	DefaultPort      int           `mapstructure:"defaultPort"`
	ConnectTimeout   time.Duration `mapstructure:"connectTimeout"`
	HandshakeTimeout time.Duration `mapstructure:"handshakeTimeout"`
	PingInterval     time.Duration `mapstructure:"pingInterval"`
	HealthThreshold  time.Duration `mapstructure:"healthThreshold"`
	ConnectRetries   uint64        `mapstructure:"connectRetries"`
	RetryInterval    time.Duration `mapstructure:"retryInterval"`
	MaxPayload       uint64        `mapstructure:"maxPayload"`
	WriteTimeout     time.Duration `mapstructure:"writeTimeout"`
	ReadBufferSize   int           `mapstructure:"readBufferSize"`
	WriteChannelSize uint16        `mapstructure:"writeChannelSize"`
	Services         uint64        `mapstructure:"services"`
	UserAgentName    string        `mapstructure:"userAgentName"`
	UserAgentVersion string        `mapstructure:"userAgentVersion"`
}

type FetchConfig struct {
	StartHash       string        `mapstructure:"startHash"`
	Count           int           `mapstructure:"count"`
	StartHeight     int64         `mapstructure:"startHeight"`
	OutputDir       string        `mapstructure:"outputDir"`
	RequestTimeout  time.Duration `mapstructure:"requestTimeout"`
	AnnouncementTTL time.Duration `mapstructure:"announcementTTL"`
}
