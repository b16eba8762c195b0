package errors

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialUnavailable = errors.New("credential unavailable")
	ErrCredentialNotFound    = errors.New("credential not found")
	ErrSessionNotFound       = errors.New("browser session snapshot not found")
	ErrMarketNotFound        = errors.New("unknown market")
	ErrInvalidDate           = errors.New("invalid travel date")
	ErrInvalidRoute          = errors.New("invalid route")
	ErrUpstreamTransport     = errors.New("upstream transport failure")
)

// UpstreamError is a non-success answer from the pricing endpoint. It keeps
// the raw status and body so callers can diagnose the rejection.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d", e.StatusCode)
}
