package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
)

func mapHTTPStatus(err error) int {
	var upstream *derr.UpstreamError
	switch {
	case errors.Is(err, derr.ErrMarketNotFound):
		return http.StatusNotFound
	case errors.Is(err, derr.ErrInvalidDate), errors.Is(err, derr.ErrInvalidRoute):
		return http.StatusBadRequest
	case errors.Is(err, derr.ErrCredentialUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream), errors.Is(err, derr.ErrUpstreamTransport):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func mapErrorMessage(err error) string {
	var upstream *derr.UpstreamError
	switch {
	case errors.Is(err, derr.ErrMarketNotFound):
		return "unknown market"
	case errors.Is(err, derr.ErrInvalidDate):
		return "invalid date, expected YYYY-MM-DD, DD/MM/YYYY or YYMMDD"
	case errors.Is(err, derr.ErrInvalidRoute):
		return "origin and destination must be distinct port codes"
	case errors.Is(err, derr.ErrCredentialUnavailable):
		return "upstream credential unavailable"
	case errors.As(err, &upstream):
		return fmt.Sprintf("upstream rejected request with status %d", upstream.StatusCode)
	case errors.Is(err, derr.ErrUpstreamTransport):
		return "upstream unreachable"
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream deadline exceeded"
	default:
		return "internal error"
	}
}
