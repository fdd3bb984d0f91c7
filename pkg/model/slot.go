package model

import "time"

// Slot is the exclusivity lock for one (date, time) pair. Its ID is the
// slot token, so the store's primary key allows at most one per pair.
type Slot struct {
	ID        string    `json:"id" bson:"_id"`
	Date      string    `json:"date" bson:"date"`
	Time      string    `json:"time" bson:"time"`
	Booked    bool      `json:"booked" bson:"booked"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// TakenSnapshot is one delivery of the live taken set for a date.
type TakenSnapshot struct {
	Date   string    `json:"date"`
	Times  []string  `json:"times"`
	ReadAt time.Time `json:"read_at"`
}
