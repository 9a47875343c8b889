package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

var (
	// ErrAuthFailed is returned when the employee id or password is wrong.
	ErrAuthFailed = errors.New("invalid employee id or password")

	// ErrInvalidSession is returned when a session token is malformed,
	// expired or revoked.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// SessionStore tracks issued session tokens so logout revokes them.
type SessionStore interface {
	Save(ctx context.Context, token string, identity domain.Identity, ttl time.Duration) error
	Get(ctx context.Context, token string) (*domain.Identity, error)
	Delete(ctx context.Context, token string) error
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Service authenticates employees against stored credentials and manages
// session tokens.
type Service struct {
	employees repository.EmployeeRepository
	sessions  SessionStore
	secret    []byte
	tokenTTL  time.Duration
}

// NewService creates an authentication service.
func NewService(employees repository.EmployeeRepository, sessions SessionStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		employees: employees,
		sessions:  sessions,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
	}
}

// HashPassword returns the hex-encoded SHA-256 digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login verifies the employee's credentials and issues a session token.
// Unknown ids and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, employeeID, password string) (domain.Identity, string, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Identity{}, "", ErrAuthFailed
		}
		return domain.Identity{}, "", fmt.Errorf("load employee: %w", err)
	}

	hashed := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(employee.PasswordHash)) != 1 {
		return domain.Identity{}, "", ErrAuthFailed
	}

	identity := domain.Identity{ID: employee.ID, Name: employee.Name}

	now := time.Now()
	claims := &Claims{
		Name: employee.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employee.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("sign session token: %w", err)
	}

	if err := s.sessions.Save(ctx, token, identity, s.tokenTTL); err != nil {
		return domain.Identity{}, "", fmt.Errorf("save session: %w", err)
	}
	return identity, token, nil
}

// Verify parses and validates a session token and returns the identity it
// was issued for. Revoked tokens fail even before their expiry.
func (s *Service) Verify(ctx context.Context, tokenStr string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Identity{}, ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return domain.Identity{}, ErrInvalidSession
	}

	identity, err := s.sessions.Get(ctx, tokenStr)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load session: %w", err)
	}
	if identity == nil {
		return domain.Identity{}, ErrInvalidSession
	}
	if identity.ID != claims.Subject {
		return domain.Identity{}, ErrInvalidSession
	}
	return *identity, nil
}

// Logout revokes a session token.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	return s.sessions.Delete(ctx, tokenStr)
}
