package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendwise/internal/auth"
	"github.com/spendwise/spendwise/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func userRows(id uuid.UUID, email string, failedAttempts int, lastFailed, lockedUntil *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name",
		"email_verified", "two_factor_enabled",
		"failed_attempts", "last_failed_attempt", "locked_until", "created_at",
	}).AddRow(id, email, "$2a$10$hash", "Demo", "User", true, false,
		failedAttempts, lastFailed, lockedUntil, time.Now())
}

func TestFindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	lastFailed := time.Now().Add(-time.Minute)
	mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("demo@example.com").
		WillReturnRows(userRows(id, "demo@example.com", 2, &lastFailed, nil))

	user, err := repo.FindByEmail(context.Background(), "demo@example.com")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.Equal(t, 2, user.FailedAttempts)
	require.NotNil(t, user.LastFailedAttempt)
	require.Nil(t, user.LockedUntil)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_Unknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestApplyLockoutState_Lands(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	now := time.Now()
	lockedUntil := now.Add(15 * time.Minute)
	state := auth.LockoutState{
		FailedAttempts:    3,
		LastFailedAttempt: &now,
		LockedUntil:       &lockedUntil,
	}

	mock.ExpectExec(`UPDATE users\s+SET failed_attempts = \$1, last_failed_attempt = \$2, locked_until = \$3\s+WHERE id = \$4 AND failed_attempts = \$5`).
		WithArgs(3, now, lockedUntil, id, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ApplyLockoutState(context.Background(), id, 2, state))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyLockoutState_LostRaceIsBenign(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	now := time.Now()
	state := auth.LockoutState{FailedAttempts: 2, LastFailedAttempt: &now}

	// Another attempt already advanced the counter: zero rows affected,
	// no error, no retry.
	mock.ExpectExec(`UPDATE users`).
		WithArgs(2, now, nil, id, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.ApplyLockoutState(context.Background(), id, 1, state))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyLockoutState_StoreError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	now := time.Now()
	mock.ExpectExec(`UPDATE users`).
		WillReturnError(errors.New("connection reset"))

	err := repo.ApplyLockoutState(context.Background(), id, 0, auth.LockoutState{FailedAttempts: 1, LastFailedAttempt: &now})
	require.Error(t, err)
}

func TestResetLockoutState(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users\s+SET failed_attempts = 0, last_failed_attempt = NULL, locked_until = NULL\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetLockoutState(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoginAttempt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`(?s)INSERT INTO login_attempts`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordLoginAttempt(context.Background(), "demo@example.com", false, "203.0.113.9:51234"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Email: "new@example.com", PasswordHash: "$2a$10$hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEqual(t, uuid.Nil, user.ID)
	require.False(t, user.CreatedAt.IsZero())
}
