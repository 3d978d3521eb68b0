package model

import "errors"

// Common errors used across the application
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")

	// Session errors
	// Bad credentials and unknown/expired tokens share one error so callers
	// cannot tell an unknown username from a wrong password.
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTokenGeneration = errors.New("could not generate a unique session token")

	// Matchmaking errors
	ErrInsufficientPlayers = errors.New("insufficient players in queue")
	ErrAlreadyQueued       = errors.New("account already has an outstanding queue entry")
	ErrNotQueued           = errors.New("account is not queued")
)
