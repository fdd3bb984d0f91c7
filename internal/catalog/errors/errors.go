package errors

import "errors"

var (
	ErrNotFound = errors.New("catalog item not found")

	ErrNoNeighbour = errors.New("no catalog item in that direction")
)
