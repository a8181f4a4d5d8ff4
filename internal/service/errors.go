package service

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrForbidden          = errors.New("resource belongs to another user")
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrValidation         = errors.New("invalid input")
	ErrAlreadyProcessed   = errors.New("payment already processed")
	ErrTooManyAttempts    = errors.New("too many confirmation attempts")
	ErrConfirmationFailed = errors.New("payment confirmation failed, please retry")
)

var domainErrors = []error{
	ErrNotFound,
	ErrProductNotFound,
	ErrForbidden,
	ErrInvalidState,
	ErrValidation,
	ErrAlreadyProcessed,
	ErrTooManyAttempts,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
