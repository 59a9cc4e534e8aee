package task

import (
	"context"
	"errors"

	"dsa-validator/api/internal/extract"
)

// ErrConfiguration is returned, before any network call, when the active
// gateway has no credentials.
var ErrConfiguration = errors.New("configuration error")

// GatewayError wraps a failed call to the model provider.
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return e.Provider + " gateway: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Timeout reports whether the call ran out of time.
func (e *GatewayError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

const (
	KindConfiguration = "configuration_error"
	KindGateway       = "gateway_error"
	KindExtraction    = "extraction_error"
	KindInternal      = "internal_error"
)

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	var (
		gwErr *GatewayError
		exErr *extract.ExtractionError
	)
	switch {
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.As(err, &gwErr):
		return KindGateway
	case errors.As(err, &exErr):
		return KindExtraction
	default:
		return KindInternal
	}
}
