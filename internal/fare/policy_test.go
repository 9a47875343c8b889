package fare

import (
	"errors"
	"testing"

	"carshare/internal/domain"
)

func TestComputeFare(t *testing.T) {
	policy := NewPolicy(DefaultRates())

	testCases := []struct {
		name       string
		class      domain.VehicleClass
		distanceKm float64
		minutes    int64
		want       float64
	}{
		{"two wheeler 10km 20min", domain.VehicleTwoWheeler, 10, 20, 70.00},
		{"four wheeler 15km 10min", domain.VehicleFourWheeler, 15, 10, 200.00},
		{"zero duration bills distance only", domain.VehicleTwoWheeler, 10, 0, 50.00},
		{"fractional distance rounds to cents", domain.VehicleTwoWheeler, 1.111, 0, 5.56},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := policy.ComputeFare(tc.class, tc.distanceKm, tc.minutes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected fare %.2f, got %.2f", tc.want, got)
			}
		})
	}
}

func TestComputeFare_UnknownClass(t *testing.T) {
	policy := NewPolicy(DefaultRates())

	_, err := policy.ComputeFare("3-wheeler", 10, 5)
	if !errors.Is(err, ErrUnknownVehicleClass) {
		t.Errorf("expected ErrUnknownVehicleClass, got %v", err)
	}
}

func TestComputeFare_Deterministic(t *testing.T) {
	policy := NewPolicy(DefaultRates())

	first, err := policy.ComputeFare(domain.VehicleFourWheeler, 7.3, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := policy.ComputeFare(domain.VehicleFourWheeler, 7.3, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("fare not deterministic: %.2f vs %.2f", first, again)
		}
	}
	if first < 0 {
		t.Errorf("fare must never be negative, got %.2f", first)
	}
}

func TestKnows(t *testing.T) {
	policy := NewPolicy(DefaultRates())

	if !policy.Knows(domain.VehicleTwoWheeler) {
		t.Error("expected policy to know 2-wheeler")
	}
	if policy.Knows("rickshaw") {
		t.Error("expected policy not to know rickshaw")
	}
}
