package catalog

import (
	"errors"
	"strings"
	"sync"

	"carshare/internal/domain"
)

var (
	// ErrInvalidRideData is returned when a registration carries a
	// non-positive distance, an unknown vehicle class or an empty route.
	ErrInvalidRideData = errors.New("invalid ride data")

	// ErrRideNotFound is returned when no offering exists for the given id.
	ErrRideNotFound = errors.New("ride not found")
)

// RateTable reports which vehicle classes have a configured rate.
// Registration rejects classes the fare policy cannot price.
type RateTable interface {
	Knows(class domain.VehicleClass) bool
}

// Catalog owns the set of ride offerings and their availability. All
// operations are atomic with respect to each other; callers never see
// partially applied mutations.
type Catalog struct {
	mu     sync.RWMutex
	rates  RateTable
	nextID domain.RideID
	order  []domain.RideID
	rides  map[domain.RideID]*domain.RideOffering
}

// NewCatalog creates an empty catalog validating registrations against the
// given rate table.
func NewCatalog(rates RateTable) *Catalog {
	return &Catalog{
		rates:  rates,
		nextID: 1,
		rides:  make(map[domain.RideID]*domain.RideOffering),
	}
}

// Register validates and inserts a new offering, available immediately.
// Returns the freshly assigned id. IDs are monotonic and never reused.
func (c *Catalog) Register(origin, destination string, class domain.VehicleClass, distanceKm float64) (domain.RideID, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return 0, ErrInvalidRideData
	}
	if distanceKm <= 0 {
		return 0, ErrInvalidRideData
	}
	if !c.rates.Knows(class) {
		return 0, ErrInvalidRideData
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.rides[id] = &domain.RideOffering{
		ID:          id,
		Origin:      origin,
		Destination: destination,
		Class:       class,
		DistanceKm:  distanceKm,
		Available:   true,
	}
	c.order = append(c.order, id)
	return id, nil
}

// ListAvailable returns all available offerings in insertion order.
// The returned slice holds copies; mutating it does not affect the catalog.
func (c *Catalog) ListAvailable() []domain.RideOffering {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.RideOffering, 0, len(c.order))
	for _, id := range c.order {
		if ride := c.rides[id]; ride.Available {
			result = append(result, *ride)
		}
	}
	return result
}

// FindMatching returns available offerings whose origin and destination
// match the given route case-insensitively (exact match, not substring),
// in insertion order. An empty slice is not an error.
func (c *Catalog) FindMatching(origin, destination string) []domain.RideOffering {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []domain.RideOffering
	for _, id := range c.order {
		ride := c.rides[id]
		if ride.Available &&
			strings.EqualFold(ride.Origin, origin) &&
			strings.EqualFold(ride.Destination, destination) {
			result = append(result, *ride)
		}
	}
	return result
}

// Get returns a copy of the offering with the given id.
func (c *Catalog) Get(id domain.RideID) (domain.RideOffering, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ride, ok := c.rides[id]
	if !ok {
		return domain.RideOffering{}, ErrRideNotFound
	}
	return *ride, nil
}

// MarkUnavailable flips the offering's availability off. Idempotent.
func (c *Catalog) MarkUnavailable(id domain.RideID) error {
	return c.setAvailability(id, false)
}

// MarkAvailable flips the offering's availability back on. Idempotent.
func (c *Catalog) MarkAvailable(id domain.RideID) error {
	return c.setAvailability(id, true)
}

func (c *Catalog) setAvailability(id domain.RideID, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ride, ok := c.rides[id]
	if !ok {
		return ErrRideNotFound
	}
	ride.Available = available
	return nil
}
