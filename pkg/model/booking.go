package model

import (
	"time"
)

type BookingStatus string

const (
	StatusBooked    BookingStatus = "booked"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

type Booking struct {
	ID        string        `json:"id" bson:"_id"`
	Date      string        `json:"date" bson:"date" validate:"required,calendar_date"`
	Time      string        `json:"time" bson:"time" validate:"required,clock_time"`
	Name      string        `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Phone     string        `json:"phone,omitempty" bson:"phone,omitempty" validate:"required_without=Email,omitempty,e164"`
	Email     string        `json:"email,omitempty" bson:"email,omitempty" validate:"required_without=Phone,omitempty,email,max=254"`
	Service   string        `json:"service,omitempty" bson:"service,omitempty" validate:"omitempty,max=100"`
	Price     string        `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,max=50"`
	Status    BookingStatus `json:"status" bson:"status" validate:"required,oneof=booked cancelled completed"`
	SlotID    string        `json:"slot_id,omitempty" bson:"slot_id,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// BookingRequest carries the customer-supplied fields of a new reservation.
type BookingRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Service string `json:"service,omitempty"`
	Price   string `json:"price,omitempty"`
}

// BookingUpdate is an edit of an existing booking. Nil fields keep their value.
type BookingUpdate struct {
	Date    *string `json:"date,omitempty"`
	Time    *string `json:"time,omitempty"`
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Service *string `json:"service,omitempty"`
	Price   *string `json:"price,omitempty"`
}

type BookingFilter struct {
	Date   string
	Status BookingStatus
}
