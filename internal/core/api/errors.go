// Package api is the single point of HTTP egress toward the Barruu REST
// API. It attaches the bearer token from the injected session store,
// fixes the versioned base URL, and maps failures onto a tagged error
// taxonomy so callers can tell "unauthenticated" apart from "unreachable".
package api

import (
	"errors"
	"fmt"
)

// Tagged transport errors. Wrapped with request context via fmt.Errorf("%w")
// and checked with errors.Is.
var (
	// ErrUnreachable tags transport-level failures: DNS, refused
	// connections, timeouts. The session is NOT known to be invalid when
	// this is returned.
	ErrUnreachable = errors.New("api unreachable")

	// ErrUnauthorized tags a 401: the token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden tags a 403: the token is valid but the role does not
	// permit the operation.
	ErrForbidden = errors.New("forbidden")
)

// StatusError is any other non-2xx response, carrying the server's own
// explanation when one was present in the body.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api returned status %d", e.Status)
}
