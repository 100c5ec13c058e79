package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrEmailExists        = fmt.Errorf("email already in use")
	ErrAccountNotFound    = fmt.Errorf("account not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrMalformedResponse  = fmt.Errorf("malformed API response")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnknownCategory    = fmt.Errorf("unknown catalog category")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
