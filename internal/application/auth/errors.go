package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid email or password")
	ErrIncorrectPassword     = errors.New("Invalid email or password")
	ErrAccountSuspended      = errors.New("Account is suspended")
	ErrNotAuthenticated      = errors.New("Not authenticated")
)
