package ledger

import (
	"errors"
	"sync"
	"time"

	"carshare/internal/domain"
)

var (
	// ErrRiderAlreadyActive is returned when a rider already has an
	// in-progress ride.
	ErrRiderAlreadyActive = errors.New("rider already has an active ride")

	// ErrNoActiveRide is returned when a rider has no ride to end.
	ErrNoActiveRide = errors.New("no active ride")
)

// Ledger tracks the at-most-one in-progress ride per rider. All operations
// are atomic; Begin re-validates under the lock so concurrent callers cannot
// both slip past an external HasActive check.
type Ledger struct {
	mu     sync.RWMutex
	active map[string]domain.ActiveRide
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{active: make(map[string]domain.ActiveRide)}
}

// HasActive reports whether the rider has an in-progress ride.
func (l *Ledger) HasActive(riderID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.active[riderID]
	return ok
}

// Begin records an in-progress ride for the rider. Fails with
// ErrRiderAlreadyActive if one already exists.
func (l *Ledger) Begin(riderID string, rideID domain.RideID, startedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.active[riderID]; ok {
		return ErrRiderAlreadyActive
	}
	l.active[riderID] = domain.ActiveRide{
		RiderID:   riderID,
		RideID:    rideID,
		StartedAt: startedAt,
	}
	return nil
}

// End atomically removes and returns the rider's in-progress ride.
func (l *Ledger) End(riderID string) (domain.ActiveRide, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.active[riderID]
	if !ok {
		return domain.ActiveRide{}, ErrNoActiveRide
	}
	delete(l.active, riderID)
	return record, nil
}
