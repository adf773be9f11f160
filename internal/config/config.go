package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// auth service. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Auth holds authentication policy settings: session lifetime, lockout
	// thresholds, hashing cost, and TOTP parameters.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds configuration for the persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds configuration for background maintenance jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Auth holds authentication policy configuration.
type Auth struct {
	// SessionLifetime is how long an issued session remains valid.
	// A session's expiry is always creation time plus this value.
	// Env: AUTH_SESSION_LIFETIME
	SessionLifetime time.Duration `env:"SESSION_LIFETIME"`

	// LockoutThreshold is the number of consecutive failed login attempts
	// after which the account is locked.
	// Env: AUTH_LOCKOUT_THRESHOLD
	LockoutThreshold int `env:"LOCKOUT_THRESHOLD"`

	// LockoutDuration is how long a locked account stays locked.
	// Env: AUTH_LOCKOUT_DURATION
	LockoutDuration time.Duration `env:"LOCKOUT_DURATION"`

	// BcryptCost is the bcrypt work factor applied when hashing passwords.
	// Env: AUTH_BCRYPT_COST
	BcryptCost int `env:"BCRYPT_COST"`

	// TOTPIssuer is the issuer label embedded in 2FA enrollment URLs,
	// shown by authenticator apps next to the account name.
	// Env: AUTH_TOTP_ISSUER
	TOTPIssuer string `env:"TOTP_ISSUER"`

	// ResetTokenLifetime is how long a password-reset token can be redeemed.
	// Env: AUTH_RESET_TOKEN_LIFETIME
	ResetTokenLifetime time.Duration `env:"RESET_TOKEN_LIFETIME"`
}

// Storage groups the configuration for the persistence backend.
type Storage struct {
	// DB holds the embedded database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the embedded SQLite database.
type DB struct {
	// DSN is the SQLite data source name, normally a file path
	// (e.g. "tvsaude.db" or "file:tvsaude.db?_busy_timeout=5000").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background maintenance jobs.
type Workers struct {
	// SweepInterval is how often the expired-session sweeper runs.
	// Env: WORKERS_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
