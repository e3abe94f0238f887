package service

import "errors"

var (
	// ErrEmailTaken maps to 409.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers unknown email, wrong password and
	// deactivated accounts with one message, so callers cannot probe
	// which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound maps to 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRole is returned for a role outside the closed set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrNoChange is returned when an admin update would be a no-op,
	// e.g. assigning a role the user already has.
	ErrNoChange = errors.New("no change requested")
)
