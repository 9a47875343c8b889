package domain

// RideID identifies a ride offering. IDs are assigned from a monotonic
// counter and are never reused.
type RideID int64

// VehicleClass represents the vehicle category of a ride offering.
type VehicleClass string

const (
	VehicleTwoWheeler  VehicleClass = "2-wheeler"
	VehicleFourWheeler VehicleClass = "4-wheeler"
)

// ParseVehicleClass converts a raw string into a known VehicleClass.
// Returns false if the value is not a recognized class.
func ParseVehicleClass(s string) (VehicleClass, bool) {
	switch VehicleClass(s) {
	case VehicleTwoWheeler:
		return VehicleTwoWheeler, true
	case VehicleFourWheeler:
		return VehicleFourWheeler, true
	default:
		return "", false
	}
}

// RideOffering represents a bookable route and vehicle combination.
type RideOffering struct {
	ID          RideID
	Origin      string
	Destination string
	Class       VehicleClass
	DistanceKm  float64
	Available   bool
}
