package config

import (
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/moodkeeper/internal/flagx"
	"github.com/dmitrijs2005/moodkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	HealthAddr          string         `json:"health_addr"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields absent from the file keep their earlier value.
// Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := sonic.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.HealthAddr, jc.HealthAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.IsSet() {
		*dst = v.Duration
	}
}
