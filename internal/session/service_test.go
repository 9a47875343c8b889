package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"carshare/internal/catalog"
	"carshare/internal/domain"
	"carshare/internal/fare"
	"carshare/internal/ledger"
)

// fakeClock is a manually advanced clock for deterministic durations.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockReceiptRepo is an in-memory receipt journal with error injection.
type mockReceiptRepo struct {
	mu       sync.Mutex
	receipts []*domain.Receipt

	CreateCallCount int32
	CreateError     error
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *domain.Receipt) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *mockReceiptRepo) GetByRiderID(ctx context.Context, riderID string) ([]*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Receipt
	for _, r := range m.receipts {
		if r.RiderID == riderID {
			result = append(result, r)
		}
	}
	return result, nil
}

type fixture struct {
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	service  *Service
	clock    *fakeClock
	receipts *mockReceiptRepo
}

func newFixture() *fixture {
	policy := fare.NewPolicy(fare.DefaultRates())
	cat := catalog.NewCatalog(policy)
	led := ledger.NewLedger()
	receipts := &mockReceiptRepo{}
	svc := NewService(cat, led, policy, receipts, nil)
	clock := newFakeClock()
	svc.now = clock.Now
	return &fixture{catalog: cat, ledger: led, service: svc, clock: clock, receipts: receipts}
}

// checkAvailabilityInvariant verifies that an offering is available exactly
// when no active record references it.
func (f *fixture) checkAvailabilityInvariant(t *testing.T, rideID domain.RideID, riderID string) {
	t.Helper()
	ride, err := f.catalog.Get(rideID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Available == f.ledger.HasActive(riderID) {
		t.Errorf("invariant violated: ride %d available=%v while rider %s active=%v",
			rideID, ride.Available, riderID, f.ledger.HasActive(riderID))
	}
}

func TestRideLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rideID, err := f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confirmation, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.RideID != rideID {
		t.Errorf("expected ride %d, got %d", rideID, confirmation.RideID)
	}
	f.checkAvailabilityInvariant(t, rideID, "EMP123")

	if len(f.catalog.ListAvailable()) != 0 {
		t.Error("expected started ride to disappear from the available list")
	}

	f.clock.Advance(20 * time.Minute)

	receipt, err := f.service.EndRide(ctx, "EMP123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.RideID != rideID {
		t.Errorf("expected ride %d on receipt, got %d", rideID, receipt.RideID)
	}
	if receipt.DurationMinutes != 20 {
		t.Errorf("expected 20 minutes, got %d", receipt.DurationMinutes)
	}
	if receipt.DistanceKm != 10 {
		t.Errorf("expected 10 km, got %.1f", receipt.DistanceKm)
	}
	// 10km × 5/km + 20min × 1/min.
	if receipt.Fare != 70.00 {
		t.Errorf("expected fare 70.00, got %.2f", receipt.Fare)
	}
	f.checkAvailabilityInvariant(t, rideID, "EMP123")

	if len(f.catalog.ListAvailable()) != 1 {
		t.Error("expected ended ride to reappear in the available list")
	}
	if atomic.LoadInt32(&f.receipts.CreateCallCount) != 1 {
		t.Error("expected exactly one journaled receipt")
	}
}

func TestStartRide_PartialMinutesNotBilled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.Register("Station A", "Station B", domain.VehicleFourWheeler, 15)

	if _, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.clock.Advance(10*time.Minute + 59*time.Second)

	receipt, err := f.service.EndRide(ctx, "EMP123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.DurationMinutes != 10 {
		t.Errorf("expected partial minute to be dropped, got %d minutes", receipt.DurationMinutes)
	}
	// 15km × 12/km + 10min × 2/min.
	if receipt.Fare != 200.00 {
		t.Errorf("expected fare 200.00, got %.2f", receipt.Fare)
	}
}

func TestStartRide_AlreadyRiding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)
	f.catalog.Register("Station B", "Station C", domain.VehicleFourWheeler, 15)

	if _, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.service.StartRide(ctx, "EMP123", "Station B", "Station C", nil)
	if !errors.Is(err, ErrAlreadyRiding) {
		t.Errorf("expected ErrAlreadyRiding, got %v", err)
	}
}

func TestStartRide_NoMatch(t *testing.T) {
	f := newFixture()

	f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)

	_, err := f.service.StartRide(context.Background(), "EMP123", "Station A", "Station Z", nil)
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestStartRide_SelectionHandling(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id1, _ := f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)
	id2, _ := f.catalog.Register("Station A", "Station B", domain.VehicleFourWheeler, 12)
	other, _ := f.catalog.Register("Station B", "Station C", domain.VehicleTwoWheeler, 8)

	// Multiple matches without a selection is ambiguous.
	_, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil)
	if !errors.Is(err, ErrAmbiguousSelection) {
		t.Fatalf("expected ErrAmbiguousSelection, got %v", err)
	}

	// A selection outside the match set is rejected.
	_, err = f.service.StartRide(ctx, "EMP123", "Station A", "Station B", &other)
	if !errors.Is(err, ErrSelectionNotInMatches) {
		t.Fatalf("expected ErrSelectionNotInMatches, got %v", err)
	}

	// Failed attempts must not leak state.
	if f.ledger.HasActive("EMP123") {
		t.Fatal("failed start must not leave an active record")
	}
	for _, id := range []domain.RideID{id1, id2, other} {
		ride, _ := f.catalog.Get(id)
		if !ride.Available {
			t.Fatalf("failed start must not flip availability of ride %d", id)
		}
	}

	// An explicit in-set selection is honored.
	confirmation, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", &id2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.RideID != id2 {
		t.Errorf("expected selected ride %d, got %d", id2, confirmation.RideID)
	}
}

func TestStartRide_RejectedStartLeavesOfferingAvailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rideID, _ := f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)

	// Seed an active record behind the orchestrator's back; the start
	// transaction must fail without touching the offering.
	if err := f.ledger.Begin("EMP123", 999, f.clock.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil)
	if !errors.Is(err, ErrAlreadyRiding) {
		t.Fatalf("expected ErrAlreadyRiding, got %v", err)
	}

	ride, _ := f.catalog.Get(rideID)
	if !ride.Available {
		t.Error("rejected start must leave the offering available")
	}
}

func TestEndRide_NoActiveRide(t *testing.T) {
	f := newFixture()

	before := f.catalog.ListAvailable()

	_, err := f.service.EndRide(context.Background(), "EMP123")
	if !errors.Is(err, ledger.ErrNoActiveRide) {
		t.Errorf("expected ErrNoActiveRide, got %v", err)
	}

	if len(f.catalog.ListAvailable()) != len(before) {
		t.Error("failed end must not mutate catalog state")
	}
	if atomic.LoadInt32(&f.receipts.CreateCallCount) != 0 {
		t.Error("failed end must not journal a receipt")
	}
}

func TestEndRide_ClockSkewClampsToZero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)

	if _, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Clock goes backwards between start and end.
	f.clock.Advance(-5 * time.Minute)

	receipt, err := f.service.EndRide(ctx, "EMP123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.DurationMinutes != 0 {
		t.Errorf("expected duration clamped to 0, got %d", receipt.DurationMinutes)
	}
	// Distance component only: 10km × 5/km.
	if receipt.Fare != 50.00 {
		t.Errorf("expected fare 50.00, got %.2f", receipt.Fare)
	}
}

func TestEndRide_JournalFailureDoesNotFailRide(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rideID, _ := f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)
	f.receipts.CreateError = errors.New("database down")

	if _, err := f.service.StartRide(ctx, "EMP123", "Station A", "Station B", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	receipt, err := f.service.EndRide(ctx, "EMP123")
	if err != nil {
		t.Fatalf("journal failure must not fail the ride: %v", err)
	}
	if receipt.Fare != 50.00 {
		t.Errorf("expected fare 50.00, got %.2f", receipt.Fare)
	}

	ride, _ := f.catalog.Get(rideID)
	if !ride.Available {
		t.Error("ride must be available again despite the journal failure")
	}
}

func TestStartRide_RaceForLastOffering(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rideID, _ := f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)

	riders := []string{"EMP123", "EMP456"}
	results := make([]error, len(riders))

	var wg sync.WaitGroup
	for i, rider := range riders {
		wg.Add(1)
		go func(i int, rider string) {
			defer wg.Done()
			_, results[i] = f.service.StartRide(ctx, rider, "Station A", "Station B", nil)
		}(i, rider)
	}
	wg.Wait()

	var successes, noMatches int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNoMatch):
			noMatches++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || noMatches != 1 {
		t.Errorf("expected exactly one winner and one ErrNoMatch, got %d winners, %d no-match", successes, noMatches)
	}

	ride, _ := f.catalog.Get(rideID)
	if ride.Available {
		t.Error("offering must end unavailable exactly once")
	}
}

func TestStartRide_DoubleSubmitSameRider(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.Register("Station A", "Station B", domain.VehicleTwoWheeler, 10)
	f.catalog.Register("Station A", "Station B", domain.VehicleFourWheeler, 12)

	// Same rider submits from two devices for different offerings.
	sel := []domain.RideID{1, 2}
	results := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.StartRide(ctx, "EMP123", "Station A", "Station B", &sel[i])
		}(i)
	}
	wg.Wait()

	var successes, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyRiding):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || rejected != 1 {
		t.Errorf("expected one success and one ErrAlreadyRiding, got %d and %d", successes, rejected)
	}

	// Only the won offering is unavailable; the loser's pick was rolled
	// back or never flipped.
	unavailable := 0
	for _, id := range sel {
		ride, _ := f.catalog.Get(id)
		if !ride.Available {
			unavailable++
		}
	}
	if unavailable != 1 {
		t.Errorf("expected exactly one unavailable offering, got %d", unavailable)
	}
}

func TestStartRide_ValidatesRiderID(t *testing.T) {
	f := newFixture()

	if _, err := f.service.StartRide(context.Background(), "", "Station A", "Station B", nil); !errors.Is(err, ErrInvalidRiderID) {
		t.Errorf("expected ErrInvalidRiderID, got %v", err)
	}
	if _, err := f.service.EndRide(context.Background(), ""); !errors.Is(err, ErrInvalidRiderID) {
		t.Errorf("expected ErrInvalidRiderID, got %v", err)
	}
}
