package models

import "errors"

// Sentinel errors shared by repositories and services. Handlers map these to
// HTTP statuses with errors.Is, so repository errors must wrap one of them.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicate        = errors.New("already exists")
	ErrSoldOut          = errors.New("not enough tickets remaining")
	ErrPaymentRequired  = errors.New("payment required")
	ErrSignatureInvalid = errors.New("invalid notification signature")
)
