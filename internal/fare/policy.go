package fare

import (
	"errors"
	"math"

	"carshare/internal/domain"
)

// ErrUnknownVehicleClass is returned when no rate entry exists for a
// vehicle class.
var ErrUnknownVehicleClass = errors.New("unknown vehicle class")

// Rate holds the per-kilometer and per-minute charges for one vehicle class.
type Rate struct {
	PerKm     float64
	PerMinute float64
}

// DefaultRates is the built-in INR rate table.
func DefaultRates() map[domain.VehicleClass]Rate {
	return map[domain.VehicleClass]Rate{
		domain.VehicleTwoWheeler:  {PerKm: 5, PerMinute: 1},
		domain.VehicleFourWheeler: {PerKm: 12, PerMinute: 2},
	}
}

// Policy computes fares from an immutable per-vehicle-class rate table
// loaded at startup.
type Policy struct {
	rates map[domain.VehicleClass]Rate
}

// NewPolicy creates a Policy from the given rate table. The table is copied
// so callers cannot mutate it afterwards.
func NewPolicy(rates map[domain.VehicleClass]Rate) *Policy {
	copied := make(map[domain.VehicleClass]Rate, len(rates))
	for class, rate := range rates {
		copied[class] = rate
	}
	return &Policy{rates: copied}
}

// Knows reports whether the policy has a rate entry for the given class.
func (p *Policy) Knows(class domain.VehicleClass) bool {
	_, ok := p.rates[class]
	return ok
}

// ComputeFare returns the fare for a ride of the given class, distance and
// duration, rounded to two decimal places. Partial minutes are not billed;
// durationMinutes must already be the floor of elapsed whole minutes.
func (p *Policy) ComputeFare(class domain.VehicleClass, distanceKm float64, durationMinutes int64) (float64, error) {
	rate, ok := p.rates[class]
	if !ok {
		return 0, ErrUnknownVehicleClass
	}
	fare := distanceKm*rate.PerKm + float64(durationMinutes)*rate.PerMinute
	return math.Round(fare*100) / 100, nil
}
