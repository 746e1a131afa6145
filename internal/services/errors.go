// internal/services/errors.go
package services

import "errors"

// Sentinel errors shared across services; handlers map these onto HTTP
// statuses. Anything not in this list is treated as an internal error.
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrFileTierUnavailable = errors.New("file tier not available")
	ErrExclusiveSold       = errors.New("exclusive rights already sold")
	ErrDiscountInvalid     = errors.New("discount invalid or not applicable")
	ErrForbidden           = errors.New("access denied")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrGateway             = errors.New("payment gateway error")
)
