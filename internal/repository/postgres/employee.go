package postgres

import (
	"context"
	"database/sql"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// EmployeeRepository implements repository.EmployeeRepository using
// PostgreSQL.
type EmployeeRepository struct {
	db Querier
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db Querier) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create adds a new employee account.
func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `INSERT INTO employees (id, name, password_hash) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, employee.ID, employee.Name, employee.PasswordHash)
	return err
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT id, name, password_hash, created_at FROM employees WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var employee domain.Employee
	err := row.Scan(&employee.ID, &employee.Name, &employee.PasswordHash, &employee.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}
