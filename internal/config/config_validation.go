package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.SessionLifetime <= 0 ||
		cfg.Auth.LockoutThreshold <= 0 ||
		cfg.Auth.LockoutDuration <= 0 ||
		cfg.Auth.BcryptCost <= 0 ||
		cfg.Auth.ResetTokenLifetime <= 0 {
		return ErrInvalidAuthConfigs
	}

	if cfg.Workers.SweepInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
