package repository

import (
	"context"

	"carshare/internal/domain"
)

// ReceiptRepository defines the persistence operations for ride receipts.
type ReceiptRepository interface {
	// Create journals a new receipt.
	Create(ctx context.Context, receipt *domain.Receipt) error

	// GetByRiderID retrieves all receipts for a rider, newest first.
	GetByRiderID(ctx context.Context, riderID string) ([]*domain.Receipt, error)
}
