// Package v1 holds the typed service facades over the Barruu REST API:
// one method per remote operation, normalizing the response envelope and
// keeping the injected session store current on auth-relevant responses.
//
// Error Handling:
// This package defines sentinel errors for the failures callers are
// expected to branch on. Facade methods wrap them with context using
// fmt.Errorf("%w"); callers check with errors.Is. Transport-level tags
// (api.ErrUnreachable, api.ErrUnauthorized, ...) pass through untouched so
// callers can still tell "unreachable" apart from "rejected".
package v1

import "errors"

// Sentinel errors for console operations.
var (
	// ErrNotAuthenticated indicates no bearer token is present locally.
	// The operation was refused before any request went out.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates the server rejected the stored token.
	// The local session has already been cleared when this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidCredentials indicates login was refused.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists indicates the username or email is already taken.
	ErrUserExists = errors.New("account already exists")

	// ErrInvalidTransition indicates a status change the moderation flow
	// does not offer (e.g. rejecting an already-approved app).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidMediaType indicates an upload type outside image/video/audio.
	ErrInvalidMediaType = errors.New("invalid media type")

	// ErrRejected indicates a business-rule rejection delivered inside a
	// 2xx envelope (success=false). The wrapped message carries the
	// server's explanation.
	ErrRejected = errors.New("rejected by server")
)
