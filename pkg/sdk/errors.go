package lexrag

import "github.com/kailas-cloud/lexrag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSourceUnavailable = domain.ErrSourceUnavailable
	ErrMalformedRecord   = domain.ErrMalformedRecord
	ErrInvalidInput      = domain.ErrInvalidInput
)
