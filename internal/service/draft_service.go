package service

import (
	"context"
	"time"

	"vantry/internal/domain"
	"vantry/internal/models"

	"github.com/rs/zerolog"
)

// DraftService wraps the draft repository so callers always get a
// usable draft and so rate-limit failures degrade to "allowed".
type DraftService struct {
	drafts domain.DraftRepository
	logger *zerolog.Logger
}

func NewDraftService(drafts domain.DraftRepository, logger *zerolog.Logger) *DraftService {
	return &DraftService{drafts: drafts, logger: logger}
}

// Get returns the session's draft, or an empty one if none is stored.
func (s *DraftService) Get(ctx context.Context, sessionID string) (*models.OrderDraft, error) {
	draft, err := s.drafts.GetDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = &models.OrderDraft{SessionID: sessionID, Overrides: make(map[int64]models.OrderOverride)}
	}
	if draft.Overrides == nil {
		draft.Overrides = make(map[int64]models.OrderOverride)
	}
	return draft, nil
}

// SetOverrides replaces the session's stored overrides.
func (s *DraftService) SetOverrides(ctx context.Context, sessionID string, overrides map[int64]models.OrderOverride) error {
	return s.drafts.SetDraft(ctx, &models.OrderDraft{SessionID: sessionID, Overrides: overrides})
}

// Clear drops the session's draft, typically after an order is composed.
func (s *DraftService) Clear(ctx context.Context, sessionID string) error {
	return s.drafts.ClearDraft(ctx, sessionID)
}

// Allow applies the per-session request budget. Storage errors are
// logged and treated as allowed so a dead Redis never locks users out.
func (s *DraftService) Allow(ctx context.Context, sessionID string) bool {
	allowed, err := s.drafts.CheckRateLimit(ctx, sessionID, models.RateLimitRequests, time.Duration(models.RateLimitWindow)*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
		return true
	}
	return allowed
}
