package config

import "time"

// Built-in defaults applied after all explicit sources have been merged.
// They reflect the documented security policy of the service.
const (
	DefaultSessionLifetime    = 8 * time.Hour
	DefaultLockoutThreshold   = 5
	DefaultLockoutDuration    = 15 * time.Minute
	DefaultBcryptCost         = 12
	DefaultTOTPIssuer         = "TV Saude"
	DefaultResetTokenLifetime = time.Hour
	DefaultHTTPAddress        = "0.0.0.0:8080"
	DefaultRequestTimeout     = 30 * time.Second
	DefaultDSN                = "tvsaude.db"
	DefaultSweepInterval      = time.Minute
)

// defaults returns a StructuredConfig carrying every built-in default value.
// It participates in the merge chain like any other source, so explicit
// configuration always wins.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		Auth: Auth{
			SessionLifetime:    DefaultSessionLifetime,
			LockoutThreshold:   DefaultLockoutThreshold,
			LockoutDuration:    DefaultLockoutDuration,
			BcryptCost:         DefaultBcryptCost,
			TOTPIssuer:         DefaultTOTPIssuer,
			ResetTokenLifetime: DefaultResetTokenLifetime,
		},
		Storage: Storage{
			DB: DB{DSN: DefaultDSN},
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Workers: Workers{
			SweepInterval: DefaultSweepInterval,
		},
	}
}
