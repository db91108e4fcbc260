// Package config handles TOML configuration parsing, defaults, and
// validation for staticdhcpd. The configuration is read once by Load.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for staticdhcpd.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Network    NetworkConfig    `toml:"network"`
	Governance GovernanceConfig `toml:"governance"`
	Record     RecordConfig     `toml:"record"`
}

// ServerConfig holds the server's own identity and logging settings.
type ServerConfig struct {
	ServerIP string `toml:"server_ip"`
	LogLevel string `toml:"log_level"`
}

// NetworkConfig holds the listener/responder surface: ports, relay policy,
// and the optional raw-L2 response interface.
type NetworkConfig struct {
	ServerPort        int      `toml:"server_port"`
	ClientPort        int      `toml:"client_port"`
	PXEPort           int      `toml:"pxe_port"`
	ResponseInterface string   `toml:"response_interface"`
	AllowLocalDHCP    bool     `toml:"allow_local_dhcp"`
	AllowRelays       bool     `toml:"allow_relays"`
	AllowedRelays     []string `toml:"allowed_relays"`
	Authoritative     bool     `toml:"authoritative"`
	NakRenewals       bool     `toml:"nak_renewals"`
}

// GovernanceConfig holds the per-MAC request-governance thresholds (spec §4.4).
type GovernanceConfig struct {
	Enabled          bool `toml:"enabled"`
	Threshold        int  `toml:"threshold"`
	PollingInterval  int  `toml:"polling_interval"`
	UnknownTimeout   int  `toml:"unknown_timeout"`
	MisbehaveTimeout int  `toml:"misbehave_timeout"`
}

// RecordConfig holds the record-source cache and concurrency settings.
type RecordConfig struct {
	UseCache         bool   `toml:"use_cache"`
	ConcurrencyLimit int    `toml:"concurrency_limit"`
	BoltPath         string `toml:"bolt_path"`
}

// Load reads, parses, applies defaults to, and validates the configuration
// file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = DefaultLogLevel
	}
	if cfg.Network.ServerPort == 0 {
		cfg.Network.ServerPort = DefaultServerPort
	}
	if cfg.Network.ClientPort == 0 {
		cfg.Network.ClientPort = DefaultClientPort
	}
	// PXEPort left at 0 means PXE is disabled (spec §6).
	if cfg.Governance.Threshold == 0 {
		cfg.Governance.Threshold = DefaultThreshold
	}
	if cfg.Governance.PollingInterval == 0 {
		cfg.Governance.PollingInterval = DefaultPollingInterval
	}
	if cfg.Governance.UnknownTimeout == 0 {
		cfg.Governance.UnknownTimeout = DefaultUnknownTimeout
	}
	if cfg.Governance.MisbehaveTimeout == 0 {
		cfg.Governance.MisbehaveTimeout = DefaultMisbehaveTimeout
	}
	if cfg.Record.ConcurrencyLimit == 0 {
		cfg.Record.ConcurrencyLimit = DefaultConcurrencyLimit
	}
	if cfg.Record.BoltPath == "" {
		cfg.Record.BoltPath = DefaultBoltPath
	}
}

func validate(cfg *Config) error {
	if cfg.Server.ServerIP == "" {
		return fmt.Errorf("server.server_ip is required")
	}
	if net.ParseIP(cfg.Server.ServerIP) == nil {
		return fmt.Errorf("server.server_ip %q is not a valid IP address", cfg.Server.ServerIP)
	}

	if cfg.Network.ServerPort <= 0 || cfg.Network.ServerPort > 65535 {
		return fmt.Errorf("network.server_port %d is out of range", cfg.Network.ServerPort)
	}
	if cfg.Network.ClientPort <= 0 || cfg.Network.ClientPort > 65535 {
		return fmt.Errorf("network.client_port %d is out of range", cfg.Network.ClientPort)
	}
	if cfg.Network.PXEPort < 0 || cfg.Network.PXEPort > 65535 {
		return fmt.Errorf("network.pxe_port %d is out of range", cfg.Network.PXEPort)
	}
	if cfg.Network.PXEPort != 0 && cfg.Network.PXEPort == cfg.Network.ServerPort {
		return fmt.Errorf("network.pxe_port must not equal network.server_port (%d)", cfg.Network.ServerPort)
	}
	for i, relay := range cfg.Network.AllowedRelays {
		if net.ParseIP(relay) == nil {
			return fmt.Errorf("network.allowed_relays[%d] %q is not a valid IP address", i, relay)
		}
	}
	if cfg.Network.ResponseInterface != "" {
		if _, err := net.InterfaceByName(cfg.Network.ResponseInterface); err != nil {
			return fmt.Errorf("network.response_interface %q: %w", cfg.Network.ResponseInterface, err)
		}
	}

	if cfg.Governance.Threshold < 0 {
		return fmt.Errorf("governance.threshold must be non-negative")
	}
	if cfg.Governance.PollingInterval <= 0 {
		return fmt.Errorf("governance.polling_interval must be positive")
	}
	if cfg.Governance.UnknownTimeout < 0 {
		return fmt.Errorf("governance.unknown_timeout must be non-negative")
	}
	if cfg.Governance.MisbehaveTimeout < 0 {
		return fmt.Errorf("governance.misbehave_timeout must be non-negative")
	}

	if cfg.Record.ConcurrencyLimit <= 0 {
		return fmt.Errorf("record.concurrency_limit must be positive")
	}

	return nil
}

// RawResponderEnabled reports whether raw L2 responses (R2) are configured.
func (cfg *Config) RawResponderEnabled() bool {
	return cfg.Network.ResponseInterface != ""
}

// PXEEnabled reports whether the PXE listener socket should be opened.
func (cfg *Config) PXEEnabled() bool {
	return cfg.Network.PXEPort != 0
}

// ServerIP returns the configured server address as a net.IP.
func (cfg *Config) ServerIP() net.IP {
	return net.ParseIP(cfg.Server.ServerIP)
}

// PollingInterval returns governance.polling_interval as a time.Duration.
func (cfg *Config) PollingInterval() time.Duration {
	return time.Duration(cfg.Governance.PollingInterval) * time.Second
}

// UnknownTimeout returns governance.unknown_timeout as a time.Duration.
func (cfg *Config) UnknownTimeout() time.Duration {
	return time.Duration(cfg.Governance.UnknownTimeout) * time.Second
}

// MisbehaveTimeout returns governance.misbehave_timeout as a time.Duration.
func (cfg *Config) MisbehaveTimeout() time.Duration {
	return time.Duration(cfg.Governance.MisbehaveTimeout) * time.Second
}

// AllowedRelayIPs parses AllowedRelays into net.IP values. An empty list
// means "all relays are accepted" (spec §4.5 pre-flight).
func (cfg *Config) AllowedRelayIPs() []net.IP {
	ips := make([]net.IP, 0, len(cfg.Network.AllowedRelays))
	for _, s := range cfg.Network.AllowedRelays {
		ips = append(ips, net.ParseIP(s))
	}
	return ips
}
