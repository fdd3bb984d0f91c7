package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrSlotNotFound = errors.New("slot not found")

	ErrSlotTaken = errors.New("slot is already booked")

	ErrInvalidSlotID = errors.New("invalid slot ID format")
)
