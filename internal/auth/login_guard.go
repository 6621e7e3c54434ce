package auth

import (
	"context"
	"math"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/config"
)

// LoginGuard counts consecutive failed logins per session and locks the
// session out once the limit is reached. An attempt is claimed before the
// credentials are checked, so a burst of parallel logins cannot get past
// the limit.
type LoginGuard struct {
	store       AttemptStore
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

// Attempt is a claimed login attempt.
type Attempt struct {
	Session     string
	Count       int
	LockedUntil *time.Time
}

// NewLoginGuard builds a guard. A nil clock means time.Now.
func NewLoginGuard(store AttemptStore, cfg config.GuardConfig, now func() time.Time) *LoginGuard {
	if now == nil {
		now = time.Now
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	lockout := cfg.Lockout()
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginGuard{store: store, maxAttempts: maxAttempts, lockout: lockout, now: now}
}

// Reserve claims an attempt for session. A locked session gets no attempt
// and the time it stays locked. An expired lock starts a fresh count.
func (g *LoginGuard) Reserve(ctx context.Context, session string) (Attempt, time.Duration, error) {
	now := g.now()
	rec, ok, err := g.store.Reserve(ctx, session, g.maxAttempts, g.lockout, now)
	if err != nil {
		return Attempt{}, 0, err
	}
	if !ok {
		remaining := time.Duration(0)
		if rec.LockedUntil != nil {
			remaining = rec.LockedUntil.Sub(now)
		}
		return Attempt{}, max(remaining, time.Second), nil
	}
	return Attempt{Session: session, Count: rec.Count, LockedUntil: rec.LockedUntil}, 0, nil
}

// Failed reports the outcome of a claimed attempt that failed: the attempts
// left before lockout and, when this attempt hit the limit, how long the
// session is locked. The failure was counted when the attempt was claimed.
func (g *LoginGuard) Failed(a Attempt) (int, time.Duration) {
	if a.Count >= g.maxAttempts && a.LockedUntil != nil {
		return 0, max(a.LockedUntil.Sub(g.now()), time.Second)
	}
	return max(g.maxAttempts-a.Count, 0), 0
}

// Release hands back an attempt that ended neither in success nor in a
// credential failure.
func (g *LoginGuard) Release(ctx context.Context, a Attempt) error {
	return g.store.Release(ctx, a.Session, g.maxAttempts)
}

// RecordSuccess resets the counter.
func (g *LoginGuard) RecordSuccess(ctx context.Context, session string) error {
	return g.store.Clear(ctx, session)
}

// RetryAfterSeconds rounds a remaining lockout up to whole seconds.
func RetryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
