// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	SecretKey    string
	AdminToken   string
	ProbeTimeout time.Duration
}

// Load reads configuration from environment variables and returns a
// validated Config. A .env file in the working directory is loaded first if
// present. All variables are optional with defaults:
// TALERPANEL_LISTEN_ADDR (127.0.0.1:8080), TALERPANEL_DB_PATH
// (talerpanel.db), TALERPANEL_SECRET_KEY (falls back to a generated
// site-local salt), TALERPANEL_ADMIN_TOKEN (unset disables the permission
// check), TALERPANEL_PROBE_TIMEOUT (8s).
func Load() (*Config, error) {
	_ = godotenv.Load()

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("TALERPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "talerpanel.db"
	if v, ok := os.LookupEnv("TALERPANEL_DB_PATH"); ok {
		dbPath = v
	}

	probeTimeout := 8 * time.Second
	if v, ok := os.LookupEnv("TALERPANEL_PROBE_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TALERPANEL_PROBE_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("TALERPANEL_PROBE_TIMEOUT must be positive, got %q", v)
		}
		probeTimeout = parsed
	}

	return &Config{
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
		SecretKey:    os.Getenv("TALERPANEL_SECRET_KEY"),
		AdminToken:   os.Getenv("TALERPANEL_ADMIN_TOKEN"),
		ProbeTimeout: probeTimeout,
	}, nil
}
