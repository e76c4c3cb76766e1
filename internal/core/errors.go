package core

import "errors"

// Registration and login failures surfaced to the caller. The CLI renders
// these as user-facing messages; everything else is wrapped I/O errors.
var (
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
