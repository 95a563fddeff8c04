// Package config provides centralized configuration loaded from
// environment variables, shared by every chessdata subcommand.
package config

import (
	"os"
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Title registry — the ten recognized title codes, in collection order
// --------------------------------------------------------------------------

// Titles lists every title category the collector knows about.
var Titles = []string{"GM", "WGM", "IM", "WIM", "FM", "WFM", "NM", "WNM", "CM", "WCM"}

// IsTitle reports whether code is a recognized title category.
func IsTitle(code string) bool {
	for _, t := range Titles {
		if t == code {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Chess.com API
	APIBase     string
	UserAgent   string
	HTTPTimeout time.Duration

	// CSV artifacts
	OutputDir string

	// Database (store subcommand only)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. DATABASE_URL stays optional here; the store subcommand
// enforces it.
func Load() (*Config, error) {
	return &Config{
		APIBase:     envOr("CHESSCOM_API_BASE", ""),
		UserAgent:   envOr("USER_AGENT", "chessdata/1.0 (+titled player statistics)"),
		HTTPTimeout: time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		OutputDir: envOr("OUTPUT_DIR", "."),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
	}, nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
