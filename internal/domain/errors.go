package domain

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidRate   = errors.New("invalid exchange rate")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
