package config

import (
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/moodkeeper/internal/flagx"
	"github.com/dmitrijs2005/moodkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// After unmarshalling, the fields that were present are copied into the
// runtime Config; absent or zero fields keep their earlier value.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	AuthRateLimit               int            `json:"auth_rate_limit"`
	AuthRateWindow              timex.Duration `json:"auth_rate_window"`
	APIRateLimit                int            `json:"api_rate_limit"`
	APIRateWindow               timex.Duration `json:"api_rate_window"`
	RateLimitCleanupInterval    timex.Duration `json:"rate_limit_cleanup_interval"`
	TrustProxy                  *bool          `json:"trust_proxy"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	RedisDB                     int            `json:"redis_db"`
	CORSAllowedOrigins          []string       `json:"cors_allowed_origins"`
	HealthCheckInterval         timex.Duration `json:"health_check_interval"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	LogLevel                    string         `json:"log_level"`
	LogBackend                  string         `json:"log_backend"`
	LogFile                     string         `json:"log_file"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config. Without either flag nothing is loaded. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := sonic.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setInt(&config.AuthRateLimit, c.AuthRateLimit)
	setDuration(&config.AuthRateWindow, c.AuthRateWindow)
	setInt(&config.APIRateLimit, c.APIRateLimit)
	setDuration(&config.APIRateWindow, c.APIRateWindow)
	setDuration(&config.RateLimitCleanupInterval, c.RateLimitCleanupInterval)
	if c.TrustProxy != nil {
		config.TrustProxy = *c.TrustProxy
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogFile, c.LogFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.IsSet() {
		*dst = v.Duration
	}
}
