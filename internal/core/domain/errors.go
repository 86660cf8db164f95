package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage error")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ParcelErrors
var (
	ErrParcelNotFound      = errors.New("land parcel not found")
	ErrParcelAlreadyExists = errors.New("parcel with this ID already exists")
)
