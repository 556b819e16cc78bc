package repository

import (
	"context"
	"sync/atomic"
	"time"

	"vantry/internal/domain"
	"vantry/internal/models"

	"github.com/rs/zerolog"
)

// FailoverDraftRepository trips to the fallback store when the primary
// errors and probes the primary again after recoveryInterval.
type FailoverDraftRepository struct {
	primary   domain.DraftRepository
	fallback  domain.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const recoveryInterval = time.Minute

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{primary: primary, fallback: fallback, logger: logger}
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary draft repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverDraftRepository) shouldProbe() bool {
	last := time.Unix(0, r.lastCheck.Load())
	return time.Since(last) > recoveryInterval
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, sessionID string) (*models.OrderDraft, error) {
	if !r.isDown.Load() {
		draft, err := r.primary.GetDraft(ctx, sessionID)
		if err == nil {
			return draft, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		draft, err := r.primary.GetDraft(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return draft, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetDraft(ctx, sessionID)
}

func (r *FailoverDraftRepository) SetDraft(ctx context.Context, draft *models.OrderDraft) error {
	if !r.isDown.Load() {
		if err := r.primary.SetDraft(ctx, draft); err == nil {
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.SetDraft(ctx, draft)
}

func (r *FailoverDraftRepository) ClearDraft(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		if err := r.primary.ClearDraft(ctx, sessionID); err == nil {
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.ClearDraft(ctx, sessionID)
}

func (r *FailoverDraftRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, sessionID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, sessionID, limit, window)
}
