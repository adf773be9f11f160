package models

import "time"

// LoginResult is returned on fully successful authentication: the issued
// token pair plus the public projection of the authenticated user.
type LoginResult struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// TwoFactorSetup is returned by 2FA enrollment: the shared secret and the
// otpauth:// URL a client renders as a scannable QR code. 2FA stays disabled
// until the first successful verification.
type TwoFactorSetup struct {
	Secret        string `json:"secret"`
	EnrollmentURL string `json:"enrollment_url"`
}
