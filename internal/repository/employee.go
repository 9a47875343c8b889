package repository

import (
	"context"

	"carshare/internal/domain"
)

// EmployeeRepository defines the persistence operations for employee
// credentials.
type EmployeeRepository interface {
	// Create adds a new employee account.
	Create(ctx context.Context, employee *domain.Employee) error

	// GetByID retrieves an employee by ID.
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
}
