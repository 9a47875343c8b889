package domain

import "time"

// ActiveRide records a rider's currently in-progress ride.
// At most one exists per rider at any time.
type ActiveRide struct {
	RiderID   string
	RideID    RideID
	StartedAt time.Time
}
