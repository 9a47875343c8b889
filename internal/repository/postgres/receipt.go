package postgres

import (
	"context"

	"carshare/internal/domain"
)

// ReceiptRepository implements repository.ReceiptRepository using PostgreSQL.
type ReceiptRepository struct {
	db Querier
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db Querier) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create journals a new receipt.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *domain.Receipt) error {
	query := `INSERT INTO receipts (id, ride_id, rider_id, duration_minutes, distance_km, fare, ended_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		receipt.ID,
		int64(receipt.RideID),
		receipt.RiderID,
		receipt.DurationMinutes,
		receipt.DistanceKm,
		receipt.Fare,
		receipt.EndedAt,
	)
	return err
}

// GetByRiderID retrieves all receipts for a rider, newest first.
func (r *ReceiptRepository) GetByRiderID(ctx context.Context, riderID string) ([]*domain.Receipt, error) {
	query := `SELECT id, ride_id, rider_id, duration_minutes, distance_km, fare, ended_at
	          FROM receipts WHERE rider_id = $1 ORDER BY ended_at DESC`
	rows, err := r.db.QueryContext(ctx, query, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*domain.Receipt
	for rows.Next() {
		var receipt domain.Receipt
		var rideID int64
		if err := rows.Scan(
			&receipt.ID,
			&rideID,
			&receipt.RiderID,
			&receipt.DurationMinutes,
			&receipt.DistanceKm,
			&receipt.Fare,
			&receipt.EndedAt,
		); err != nil {
			return nil, err
		}
		receipt.RideID = domain.RideID(rideID)
		receipts = append(receipts, &receipt)
	}
	return receipts, rows.Err()
}
