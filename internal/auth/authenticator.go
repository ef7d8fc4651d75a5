package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/models"
)

// UserStore is the credential store accessor the authenticator reads and
// writes. FindByEmail returns (nil, nil) when no record exists.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ApplyLockoutState persists a failure transition. expectedAttempts is
	// the FailedAttempts value the transition was computed from; the store
	// writes conditionally on it so concurrent failures cannot lose an
	// increment.
	ApplyLockoutState(ctx context.Context, userID uuid.UUID, expectedAttempts int, state LockoutState) error

	ResetLockoutState(ctx context.Context, userID uuid.UUID) error
}

// TokenIssuer mints a signed session token for a user ID.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

// LockoutNotifier is told when a failure transition locks an account.
// Implementations must not block the login path on delivery.
type LockoutNotifier interface {
	AccountLocked(userID uuid.UUID, lockedUntil time.Time)
}

// Result is a successful authentication.
type Result struct {
	User      *models.UserSummary
	Token     string
	ExpiresAt time.Time
}

// Authenticator verifies credentials against the user store and enforces the
// lockout policy. All failures are *Error values.
type Authenticator struct {
	store    UserStore
	issuer   TokenIssuer
	notifier LockoutNotifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthenticator(store UserStore, issuer TokenIssuer, notifier LockoutNotifier, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		store:    store,
		issuer:   issuer,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Login authenticates email/password and returns a session token on success.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Result, error) {
	if email == "" {
		return nil, errValidation("email is required")
	}
	if password == "" {
		return nil, errValidation("password is required")
	}

	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		a.logger.Error("find user", zap.Error(err))
		return nil, errInternal()
	}
	if user == nil {
		return nil, errInvalidCredentials()
	}

	now := a.now()
	state := LockoutState{
		FailedAttempts:    user.FailedAttempts,
		LastFailedAttempt: user.LastFailedAttempt,
		LockedUntil:       user.LockedUntil,
	}

	if locked, minutes := state.Locked(now); locked {
		return nil, errAccountLocked(minutes)
	}

	if !CheckPassword(user.PasswordHash, password) {
		next := NextLockoutState(state, now)
		if err := a.store.ApplyLockoutState(ctx, user.ID, user.FailedAttempts, next); err != nil {
			a.logger.Error("record failed attempt", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
		if next.LockedUntil != nil && state.LockedUntil == nil && a.notifier != nil {
			a.notifier.AccountLocked(user.ID, *next.LockedUntil)
		}
		return nil, errInvalidCredentials()
	}

	if err := a.store.ResetLockoutState(ctx, user.ID); err != nil {
		a.logger.Error("reset failed attempts", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, errInternal()
	}

	token, expiresAt, err := a.issuer.Issue(user.ID.String())
	if err != nil {
		a.logger.Error("issue token", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, errInternal()
	}

	return &Result{
		User:      user.Summary(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
