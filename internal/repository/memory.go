package repository

import (
	"context"
	"sync"
	"time"

	"vantry/internal/models"
)

// MemoryDraftRepository is the in-process fallback draft store.
type MemoryDraftRepository struct {
	drafts     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{ttl: ttl}
}

type draftEntry struct {
	draft     *models.OrderDraft
	expiresAt time.Time
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, sessionID string) (*models.OrderDraft, error) {
	val, ok := r.drafts.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*draftEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.drafts.Delete(sessionID)
		return nil, nil
	}
	return entry.draft, nil
}

func (r *MemoryDraftRepository) SetDraft(ctx context.Context, draft *models.OrderDraft) error {
	r.drafts.Store(draft.SessionID, &draftEntry{draft: draft, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

func (r *MemoryDraftRepository) ClearDraft(ctx context.Context, sessionID string) error {
	r.drafts.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryDraftRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(sessionID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(sessionID, entry)
	return entry.count <= limit, nil
}
