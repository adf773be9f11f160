package utils

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// totpPeriod is the TOTP time-step in seconds.
	totpPeriod = 30

	// totpSkew is the number of time-steps accepted on either side of the
	// current one, tolerating client clock drift of up to a minute.
	totpSkew = 2
)

// GenerateTOTPSecret creates a new shared TOTP secret for the given account.
// It returns the base32 secret and the otpauth:// enrollment URL that
// authenticator apps consume as a QR code.
func GenerateTOTPSecret(issuer, accountName string) (secret, enrollmentURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      totpPeriod,
	})
	if err != nil {
		return "", "", fmt.Errorf("error generating TOTP secret: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// ValidateTOTPCode reports whether code is a valid six-digit TOTP for the
// shared secret at instant now, accepting codes from the drift window of
// ±totpSkew time-steps.
func ValidateTOTPCode(code, secret string, now time.Time) bool {
	valid, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && valid
}

// GenerateTOTPCode computes the six-digit code for the shared secret at
// instant t. Used by enrollment verification tests and diagnostic tooling.
func GenerateTOTPCode(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("error generating TOTP code: %w", err)
	}

	return code, nil
}
