package domain

import "time"

// Donation is immutable once recorded; it can only be deleted.
type Donation struct {
	ID            int64
	DonorID       int64
	Amount        float64
	PaymentMethod string
	DonatedAt     time.Time
	Comment       string
}
