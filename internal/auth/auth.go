// Package auth checks the pre-shared bearer credential guarding the
// manual-injection endpoints.
package auth

import (
	"crypto/hmac"
	"errors"
	"strings"
)

var (
	ErrNotConfigured = errors.New("injection credential not configured")
	ErrMissing       = errors.New("missing bearer credential")
	ErrMismatch      = errors.New("invalid bearer credential")
)

// VerifyBearer validates an Authorization header value against the
// shared secret. The compare is constant-time.
func VerifyBearer(secret, authorization string) error {
	if secret == "" {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(authorization, "Bearer ") {
		return ErrMissing
	}
	token := strings.TrimPrefix(authorization, "Bearer ")
	if !hmac.Equal([]byte(token), []byte(secret)) {
		return ErrMismatch
	}
	return nil
}
