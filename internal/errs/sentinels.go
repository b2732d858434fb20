// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates there is no complete local session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoRefreshToken indicates an access token expired and no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrSessionExpired indicates the refresh exchange failed and local credentials were erased.
	ErrSessionExpired = errors.New("session expired")

	// ErrCartEmpty indicates a checkout was attempted with no line items.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrMissingDates indicates a line item has no check-in or check-out date.
	ErrMissingDates = errors.New("missing stay dates")

	// ErrInvalidInput indicates a locally rejected argument (before any request is sent).
	ErrInvalidInput = errors.New("invalid input")
)
