package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidID is returned when a coupon id is not a UUID
	ErrInvalidID = errors.New("invalid coupon id")

	// ErrNoFieldsToUpdate is returned when an update carries no updatable field
	ErrNoFieldsToUpdate = errors.New("no field to update")

	// ErrClientNotFound is returned when a client cannot be found
	ErrClientNotFound = errors.New("client not found")

	// ErrClientExists is returned when a CPF is already registered
	ErrClientExists = errors.New("client already exists")

	// ErrRestaurantNotFound is returned when a restaurant cannot be found
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrRestaurantExists is returned when a CNPJ is already registered
	ErrRestaurantExists = errors.New("restaurant already exists")

	// ErrCouponNotFound is returned when no coupon matches
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrAmbiguousName is returned when a delete by name matches more than one row
	ErrAmbiguousName = errors.New("name matches more than one record")

	// ErrReferenceNotFound is returned when a coupon references a CPF or CNPJ
	// that is not registered
	ErrReferenceNotFound = errors.New("referenced client or restaurant not found")

	// ErrNameMismatch is returned when a coupon carries a name that differs
	// from the one registered for its CPF or CNPJ
	ErrNameMismatch = errors.New("name does not match registered name")
)
