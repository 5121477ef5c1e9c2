package config

import "time"

func getDefaultBlockfetchConfig() *BlockfetchConfig {
	return &BlockfetchConfig{
		LogLevel:   "INFO",
		LogFormat:  "text",
		Network:    "mainnet",
		Prometheus: getDefaultPrometheusConfig(),
		Tracing:    getDefaultTracingConfig(),
		Discovery:  getDefaultDiscoveryConfig(),
		Peer:       getDefaultPeerConfig(),
		Fetch:      getDefaultFetchConfig(),
	}
}

func getDefaultPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Enabled:  false,
		Endpoint: "/metrics",
		Addr:     ":2112",
	}
}

func getDefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		Enabled:  false,
		DialAddr: "",
		Sample:   100,
	}
}

func getDefaultDiscoveryConfig() *DiscoveryConfig {
	return &DiscoveryConfig{
		Peers:    []*PeerAddressConfig{},
		DNSSeeds: []string{},
	}
}

func getDefaultPeerConfig() *PeerConfig {
	return &PeerConfig{
		DefaultPort:      0,
		ConnectTimeout:   10 * time.Second,
		HandshakeTimeout: 30 * time.Second,
		PingInterval:     2 * time.Minute,
		HealthThreshold:  5 * time.Minute,
		ConnectRetries:   3,
		RetryInterval:    5 * time.Second,
		MaxPayload:       32 * 1024 * 1024,
		WriteTimeout:     time.Minute,
		ReadBufferSize:   4096,
		WriteChannelSize: 128,
		Services:         0,
		UserAgentName:    "blockfetch",
		UserAgentVersion: "0.1.0",
	}
}

func getDefaultFetchConfig() *FetchConfig {
	return &FetchConfig{
		StartHash:       "0000000000000000002214f7766f846fedd7a8f5bb7c3d65d15f13158fe907f0",
		Count:           10,
		StartHeight:     564948,
		OutputDir:       "bitcoinblocks",
		RequestTimeout:  2 * time.Minute,
		AnnouncementTTL: 10 * time.Minute,
	}
}
