package examples

import "errors"

var (
	ErrNotFound     = errors.New("example not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrShortIDTaken is returned by repos when a short id collides.
	ErrShortIDTaken = errors.New("short id already exists")
)
