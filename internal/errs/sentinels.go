// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across dispatcher/session/list layers.
var (
	// ErrAuthenticationFailed indicates rejected credentials or a malformed login response.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSessionBusy indicates a sign-in attempt while another one is in flight.
	ErrSessionBusy = errors.New("session busy")

	// ErrFetchFailed indicates a network/server error during a paginated fetch.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrMutationFailed indicates a create/update/delete rejected by the server.
	ErrMutationFailed = errors.New("mutation failed")

	// ErrRestoreSkipped indicates persisted credentials are missing or unparseable.
	ErrRestoreSkipped = errors.New("restore skipped")
)
