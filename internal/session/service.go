package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"carshare/internal/catalog"
	"carshare/internal/domain"
	"carshare/internal/fare"
	"carshare/internal/ledger"
	"carshare/internal/repository"
)

var (
	// ErrInvalidRiderID is returned when the rider id is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrAlreadyRiding is returned when the rider has an in-progress ride.
	ErrAlreadyRiding = errors.New("rider already has an active ride")

	// ErrNoMatch is returned when no available offering matches the route.
	ErrNoMatch = errors.New("no matching ride available")

	// ErrAmbiguousSelection is returned when multiple offerings match and
	// the caller did not pick one.
	ErrAmbiguousSelection = errors.New("multiple rides match, selection required")

	// ErrSelectionNotInMatches is returned when the supplied selection is
	// not part of the match set.
	ErrSelectionNotInMatches = errors.New("selected ride is not among the matches")

	// ErrCorruptState is returned when internal invariants are violated.
	// It should never occur while transactions stay atomic.
	ErrCorruptState = errors.New("internal state corrupted")
)

// Service orchestrates the ride lifecycle: it composes the catalog, the
// ledger and the fare policy into atomic start/end transactions.
//
// A single service mutex spans each whole transaction so no concurrent
// caller can observe a ride marked unavailable without its ledger record,
// or the other way around.
type Service struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	policy   *fare.Policy
	receipts repository.ReceiptRepository
	notifier *Notifier
	now      func() time.Time
}

// NewService creates a ride session orchestrator. receipts and notifier are
// optional; when nil, receipt journaling and notifications are skipped.
func NewService(
	cat *catalog.Catalog,
	led *ledger.Ledger,
	policy *fare.Policy,
	receipts repository.ReceiptRepository,
	notifier *Notifier,
) *Service {
	return &Service{
		catalog:  cat,
		ledger:   led,
		policy:   policy,
		receipts: receipts,
		notifier: notifier,
		now:      time.Now,
	}
}

// StartConfirmation is the result of a successful StartRide.
type StartConfirmation struct {
	RideID domain.RideID
}

// StartRide transitions the rider from Idle to InProgress on a matching
// offering. The mark-unavailable and ledger-begin mutations are
// all-or-nothing: if the ledger rejects the rider, the offering is made
// available again before the error surfaces.
func (s *Service) StartRide(ctx context.Context, riderID, origin, destination string, selection *domain.RideID) (*StartConfirmation, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}

	s.mu.Lock()
	confirmation, err := s.startLocked(riderID, origin, destination, selection)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.RideStarted(ctx, riderID, confirmation.RideID)
	}
	return confirmation, nil
}

func (s *Service) startLocked(riderID, origin, destination string, selection *domain.RideID) (*StartConfirmation, error) {
	if s.ledger.HasActive(riderID) {
		return nil, ErrAlreadyRiding
	}

	matches := s.catalog.FindMatching(origin, destination)
	if len(matches) == 0 {
		return nil, ErrNoMatch
	}

	var rideID domain.RideID
	switch {
	case selection == nil && len(matches) == 1:
		rideID = matches[0].ID
	case selection == nil:
		return nil, ErrAmbiguousSelection
	default:
		found := false
		for _, m := range matches {
			if m.ID == *selection {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrSelectionNotInMatches
		}
		rideID = *selection
	}

	if err := s.catalog.MarkUnavailable(rideID); err != nil {
		return nil, fmt.Errorf("%w: mark unavailable: %v", ErrCorruptState, err)
	}

	if err := s.ledger.Begin(riderID, rideID, s.now()); err != nil {
		// Roll back the availability flip so the transaction stays
		// all-or-nothing.
		if rbErr := s.catalog.MarkAvailable(rideID); rbErr != nil {
			log.Printf("start ride rollback failed for ride %d: %v", rideID, rbErr)
		}
		if errors.Is(err, ledger.ErrRiderAlreadyActive) {
			return nil, ErrAlreadyRiding
		}
		return nil, err
	}

	return &StartConfirmation{RideID: rideID}, nil
}

// EndRide transitions the rider back to Idle, computes the fare and emits
// a receipt. Duration is the floor of elapsed whole minutes, clamped to
// zero when the clock reads before the recorded start.
func (s *Service) EndRide(ctx context.Context, riderID string) (*domain.Receipt, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}

	s.mu.Lock()
	receipt, err := s.endLocked(riderID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Journaling and notifications happen after the state transition
	// commits; a journal failure must not undo a finished ride.
	if s.receipts != nil {
		if err := s.receipts.Create(ctx, receipt); err != nil {
			log.Printf("failed to journal receipt %s: %v", receipt.ID, err)
		}
	}
	if s.notifier != nil {
		_ = s.notifier.RideEnded(ctx, receipt)
	}
	return receipt, nil
}

func (s *Service) endLocked(riderID string) (*domain.Receipt, error) {
	record, err := s.ledger.End(riderID)
	if err != nil {
		return nil, err
	}

	offering, err := s.catalog.Get(record.RideID)
	if err != nil {
		// IDs are never deleted, so a missing offering means the
		// catalog and ledger disagree.
		return nil, fmt.Errorf("%w: offering %d missing: %v", ErrCorruptState, record.RideID, err)
	}

	endedAt := s.now()
	elapsed := endedAt.Sub(record.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	durationMinutes := int64(elapsed / time.Minute)

	amount, err := s.policy.ComputeFare(offering.Class, offering.DistanceKm, durationMinutes)
	if err != nil {
		// Registration validates the class, so this is an invariant
		// violation, not a user error.
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	if err := s.catalog.MarkAvailable(record.RideID); err != nil {
		return nil, fmt.Errorf("%w: mark available: %v", ErrCorruptState, err)
	}

	return &domain.Receipt{
		ID:              uuid.New().String(),
		RideID:          record.RideID,
		RiderID:         riderID,
		DurationMinutes: durationMinutes,
		DistanceKm:      offering.DistanceKm,
		Fare:            amount,
		EndedAt:         endedAt,
	}, nil
}
