// Package config reads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Server captures HTTP server and storage configuration.
type Server struct {
	Addr           string
	DataDir        string
	RequestTimeout time.Duration
	Environment    string
}

// DefaultRequestTimeout bounds request handling; the workflow is local and
// file-backed, so requests never legitimately take long.
var DefaultRequestTimeout = 10 * time.Second

// FromEnv builds a Server config from environment variables.
//
// STAMMDATEN_DATA_DIR overrides where the profile document lives; without
// it the document goes to the user config directory, falling back to the
// working directory when the platform reports none.
func FromEnv() Server {
	addr := os.Getenv("STAMMDATEN_ADDR")
	if addr == "" {
		addr = "localhost:8080"
	}

	dataDir := os.Getenv("STAMMDATEN_DATA_DIR")
	if dataDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			dataDir = filepath.Join(base, "stammdaten")
		} else {
			dataDir = "."
		}
	}

	timeout := DefaultRequestTimeout
	if raw := os.Getenv("STAMMDATEN_REQUEST_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			timeout = parsed
		}
	}

	environment := os.Getenv("STAMMDATEN_ENV")
	if environment == "" {
		environment = "development"
	}

	return Server{
		Addr:           addr,
		DataDir:        dataDir,
		RequestTimeout: timeout,
		Environment:    environment,
	}
}
