package config

import (
	"errors"
	"os"
	"strings"

	"github.com/dmitrijs2005/moodkeeper/internal/envx"
)

// parseEnv loads cfg.EnvFile (or MK_ENV_FILE) into the environment and then
// copies the MK_* variables over cfg. Unset variables leave fields alone.
func parseEnv(cfg *Config) error {
	envx.String(&cfg.EnvFile, "MK_ENV_FILE")
	if err := envx.LoadFile(cfg.EnvFile); err != nil {
		return err
	}

	envx.String(&cfg.EndpointAddrHTTP, "MK_HTTP_ADDR")
	envx.String(&cfg.EndpointAddrGRPC, "MK_GRPC_ADDR")
	envx.String(&cfg.DatabaseDSN, "MK_DATABASE_DSN")
	envx.String(&cfg.SecretKey, "MK_JWT_SECRET")

	envx.String(&cfg.RedisAddr, "MK_REDIS_ADDR")
	envx.String(&cfg.RedisPassword, "MK_REDIS_PASSWORD")

	envx.String(&cfg.S3RootUser, "MK_S3_USER")
	envx.String(&cfg.S3RootPassword, "MK_S3_PASSWORD")
	envx.String(&cfg.S3Bucket, "MK_S3_BUCKET")
	envx.String(&cfg.S3Region, "MK_S3_REGION")
	envx.String(&cfg.S3BaseEndpoint, "MK_S3_ENDPOINT")

	envx.String(&cfg.LogLevel, "MK_LOG_LEVEL")
	envx.String(&cfg.LogBackend, "MK_LOG_BACKEND")
	envx.String(&cfg.LogFile, "MK_LOG_FILE")

	if v := os.Getenv("MK_CORS_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	return errors.Join(
		envx.Duration(&cfg.AccessTokenValidityDuration, "MK_TOKEN_TTL"),
		envx.Int(&cfg.AuthRateLimit, "MK_AUTH_RATE_LIMIT"),
		envx.Duration(&cfg.AuthRateWindow, "MK_AUTH_RATE_WINDOW"),
		envx.Int(&cfg.APIRateLimit, "MK_API_RATE_LIMIT"),
		envx.Duration(&cfg.APIRateWindow, "MK_API_RATE_WINDOW"),
		envx.Duration(&cfg.RateLimitCleanupInterval, "MK_RATE_LIMIT_CLEANUP"),
		envx.Bool(&cfg.TrustProxy, "MK_TRUST_PROXY"),
		envx.Int(&cfg.RedisDB, "MK_REDIS_DB"),
		envx.Duration(&cfg.HealthCheckInterval, "MK_HEALTH_INTERVAL"),
	)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
