package config

import "time"

// Config holds runtime settings for the moodkeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - HealthAddr: host:port of the server's gRPC health endpoint.
//   - DatabasePath: SQLite file holding the local journal and session.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request timeout of the HTTP client.
type Config struct {
	ServerURL           string
	HealthAddr          string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.HealthAddr = "127.0.0.1:50051"
	c.DatabasePath = "moodkeeper.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
