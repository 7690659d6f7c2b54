package middlewares

import "errors"

var (
	ErrEmptyField      = errors.New("all required fields must be filled")
	ErrInvalidUserID   = errors.New("user id must be positive")
	ErrInvalidCost     = errors.New("cost must be greater than zero")
	ErrInvalidCount    = errors.New("count must be greater than zero")
	ErrNegativePoints  = errors.New("points to use must not be negative")
	ErrUsernameTooLong = errors.New("username must be at most 255 characters")
)
