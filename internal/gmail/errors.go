package gmail

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"google.golang.org/api/googleapi"
)

var (
	// ErrNotAuthenticated is returned when no OAuth token is stored for the account.
	ErrNotAuthenticated = errors.New("not authenticated with Gmail; call gmail_auth_url and gmail_auth_token first")

	// ErrAttachmentTooLarge is returned for attachments above MaxAttachmentSize.
	ErrAttachmentTooLarge = errors.New("attachment exceeds maximum size")

	// ErrHeaderInjection is returned when a header value contains a line break,
	// which would let it smuggle in additional headers.
	ErrHeaderInjection = errors.New("header value contains a line break")

	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("gmail API temporarily unavailable")
)

// StatusCode returns the HTTP status of a Gmail API error, or 0 if err does
// not carry one.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the Gmail API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err means the session is missing or revoked.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || StatusCode(err) == http.StatusUnauthorized
}

// IsRateLimited reports whether the Gmail API rejected the call for quota reasons.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsUnavailable reports whether the call was rejected by the circuit breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}

// nonCircuitError wraps client-side failures so they do not count towards
// opening the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

func (e *nonCircuitError) Unwrap() error {
	return e.err
}

// tripsBreaker reports whether err indicates a server-side problem.
func tripsBreaker(err error) bool {
	switch StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed:
		return false
	}
	return true
}
