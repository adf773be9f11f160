package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates invalid server settings
	// (for example, missing HTTP address or non-positive request timeout).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidAuthConfigs indicates invalid authentication policy settings
	// (for example, a zero session lifetime or lockout threshold).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, a zero sweep interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
