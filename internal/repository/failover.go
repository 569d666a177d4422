package repository

import (
	"context"
	"sync/atomic"
	"time"

	"webstudio/internal/domain"
	"webstudio/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository prefers the primary (redis) repository and
// falls back to the in-memory one while the primary is down, retrying the
// primary after a minute.
type FailoverSessionRepository struct {
	primary  domain.SessionRepository
	fallback domain.SessionRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// unix nanos of the last failed primary attempt; atomic because
	// request goroutines race on it
	lastCheck atomic.Int64
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.lastCheck.Store(time.Now().UnixNano())
	r.isDown.Store(true)
}

func (r *FailoverSessionRepository) recoveryDue() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	if !r.isDown.Load() {
		session, err := r.primary.GetSession(ctx, sessionID)
		if err == nil {
			return session, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && r.recoveryDue() {
		session, err := r.primary.GetSession(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return session, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetSession(ctx, sessionID)
}

func (r *FailoverSessionRepository) SetSession(ctx context.Context, session *models.CheckoutSession) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, session)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSession(ctx, session)
}

func (r *FailoverSessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearSession(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearSession(ctx, sessionID)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
