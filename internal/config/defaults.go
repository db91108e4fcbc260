package config

// Default configuration values (spec §6).
const (
	DefaultLogLevel         = "info"
	DefaultServerPort       = 67
	DefaultClientPort       = 68
	DefaultThreshold        = 10
	DefaultPollingInterval  = 30
	DefaultUnknownTimeout   = 60
	DefaultMisbehaveTimeout = 300
	DefaultConcurrencyLimit = 4
	DefaultBoltPath         = "/var/lib/staticdhcpd/records.db"
)
