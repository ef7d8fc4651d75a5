package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spendwise/spendwise/internal/auth"
	"github.com/spendwise/spendwise/internal/models"
)

// UserRepository implements the credential store accessor over PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name,
		email_verified, two_factor_enabled,
		failed_attempts, last_failed_attempt, locked_until, created_at`

// FindByEmail returns the user record for email, or (nil, nil) when no such
// user exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmailVerified, &u.TwoFactorEnabled,
		&u.FailedAttempts, &u.LastFailedAttempt, &u.LockedUntil, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// GetByID fetches a single user by primary key, (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmailVerified, &u.TwoFactorEnabled,
		&u.FailedAttempts, &u.LastFailedAttempt, &u.LockedUntil, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ApplyLockoutState persists a failure transition as a single conditional
// update: the write only lands if failed_attempts still holds the value the
// transition was computed from. Zero rows affected means a concurrent
// attempt recorded its failure first; that state stands and no retry is
// made.
func (r *UserRepository) ApplyLockoutState(ctx context.Context, userID uuid.UUID, expectedAttempts int, state auth.LockoutState) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET failed_attempts = $1, last_failed_attempt = $2, locked_until = $3
		 WHERE id = $4 AND failed_attempts = $5`,
		state.FailedAttempts, state.LastFailedAttempt, state.LockedUntil,
		userID, expectedAttempts,
	)
	if err != nil {
		return fmt.Errorf("apply lockout state: %w", err)
	}
	// Zero rows affected is a benign lost race: another failed attempt
	// already advanced the counters past our snapshot.
	return nil
}

// RecordLoginAttempt appends one row to the audit trail. The lockout policy
// does not read this table; it exists for security review.
func (r *UserRepository) RecordLoginAttempt(ctx context.Context, email string, success bool, ipAddress string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_attempts (id, email, success, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), email, success, ipAddress, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// ResetLockoutState clears the failure bookkeeping after a successful login.
func (r *UserRepository) ResetLockoutState(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET failed_attempts = 0, last_failed_attempt = NULL, locked_until = NULL
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("reset lockout state: %w", err)
	}
	return nil
}
