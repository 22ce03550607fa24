package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	LogLevel    string
	LogConsole  bool
}

func FromEnv() Config {
	return Config{
		BaseURL:     getenv("AWIC_BASE_URL", "https://wsi.land.copernicus.eu/awic/"),
		HTTPTimeout: getduration("AWIC_HTTP_TIMEOUT", 30*time.Second),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogConsole:  getbool("LOG_CONSOLE", false),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
