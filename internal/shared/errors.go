package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. It deliberately covers
	// unknown usernames, blocked accounts and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername indicates a registration with a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrPermissionDenied indicates a caller acting on a resource it does not own.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation indicates rejected form input; no state change occurred.
	ErrValidation = errors.New("validation failed")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
