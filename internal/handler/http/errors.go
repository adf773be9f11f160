package http

import "errors"

// Sentinel errors used by the authentication middleware when parsing the
// "Authorization" HTTP header. Callers can match against them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is present but does not carry a "Bearer <token>" credential.
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")
)

// errBadQueryParam builds the 400-class error for a malformed audit filter
// query parameter.
func errBadQueryParam(name string) error {
	return errors.New("malformed query parameter: " + name)
}
