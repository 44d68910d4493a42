package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Service constants with env var override support.
var (
	ShutdownTimeout     = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	StartupRetryTimeout = durationEnv("STARTUP_RETRY_TIMEOUT", 30*time.Second)
)

func stringEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare numbers are seconds
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return defaultVal
}

func boolEnv(key string, defaultVal bool) bool {
	switch strings.ToLower(unquote(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultVal
	}
}
