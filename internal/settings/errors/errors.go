package errors

import "errors"

var (
	ErrNotFound = errors.New("shop settings not found")
)
