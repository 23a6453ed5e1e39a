package auth

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrInvalidToken = errors.New("invalid bearer token")
)
