// Package env is the process configuration surface: everything is read from
// environment variables, optionally seeded from a .env file at startup.
package env

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	GatewayAddr = "GATEWAY_ADDR"
	RelayAddr   = "RELAY_ADDR"
	RelayURL    = "RELAY_URL"
	WebURL      = "WEB_URL"
)

func init() {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
