package config

import (
	"errors"

	"github.com/dmitrijs2005/moodkeeper/internal/envx"
)

// parseEnv copies the MK_CLIENT_* variables over cfg. Unset variables leave
// fields alone.
func parseEnv(cfg *Config) error {
	envx.String(&cfg.ServerURL, "MK_CLIENT_SERVER_URL")
	envx.String(&cfg.HealthAddr, "MK_CLIENT_HEALTH_ADDR")
	envx.String(&cfg.DatabasePath, "MK_CLIENT_DB")
	envx.String(&cfg.LogLevel, "MK_CLIENT_LOG_LEVEL")

	return errors.Join(
		envx.Duration(&cfg.OnlineCheckInterval, "MK_CLIENT_ONLINE_INTERVAL"),
		envx.Duration(&cfg.RequestTimeout, "MK_CLIENT_TIMEOUT"),
	)
}
