package domain

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("rate limited")
	ErrNotFound        = errors.New("not found")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrProductNotFound = errors.New("product not found")
	ErrStorage         = errors.New("storage failure")
)
