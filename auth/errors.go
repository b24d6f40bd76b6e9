package auth

import "errors"

// Token errors.
var (
	// ErrTokenRequired indicates an empty token was supplied.
	ErrTokenRequired = errors.New("GitHub token is required")

	// ErrTokenRejected indicates GitHub answered 401 for the token.
	ErrTokenRejected = errors.New("GitHub rejected the token")
)
