package domain

import "time"

// Receipt summarizes a completed ride for billing.
type Receipt struct {
	ID              string
	RideID          RideID
	RiderID         string
	DurationMinutes int64
	DistanceKm      float64
	Fare            float64
	EndedAt         time.Time
}
