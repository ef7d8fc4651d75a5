package auth

import "time"

// Lockout policy constants. The attempt window and the lock duration share a
// value but are independent settings.
const (
	MaxFailedAttempts = 3
	AttemptWindow     = 15 * time.Minute
	LockDuration      = 15 * time.Minute
)

// LockoutState is the failure bookkeeping carried on a user record.
type LockoutState struct {
	FailedAttempts    int
	LastFailedAttempt *time.Time
	LockedUntil       *time.Time
}

// NextLockoutState computes the state after one more failed login at `now`.
// A failure outside the attempt window restarts the count at 1 and leaves
// LockedUntil untouched; within the window the count increments, and at
// MaxFailedAttempts or above the lock is set (and renewed on every further
// failure) to now + LockDuration. Persistence is the caller's job.
func NextLockoutState(prev LockoutState, now time.Time) LockoutState {
	last := now
	if prev.LastFailedAttempt != nil {
		last = *prev.LastFailedAttempt
	}

	next := prev
	next.LastFailedAttempt = &now

	if now.Sub(last) > AttemptWindow {
		next.FailedAttempts = 1
		return next
	}

	next.FailedAttempts = prev.FailedAttempts + 1
	if next.FailedAttempts >= MaxFailedAttempts {
		lockedUntil := now.Add(LockDuration)
		next.LockedUntil = &lockedUntil
	}
	return next
}

// ClearedLockoutState is the state after a successful login.
func ClearedLockoutState() LockoutState {
	return LockoutState{}
}

// Locked reports whether the state forbids authentication at `now`, and if
// so, the whole minutes (rounded up) until the lock expires.
func (s LockoutState) Locked(now time.Time) (bool, int) {
	if s.LockedUntil == nil || !s.LockedUntil.After(now) {
		return false, 0
	}
	remaining := s.LockedUntil.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return true, minutes
}
