package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/kv"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftTTL is how long an untouched draft is kept.
const DraftTTL = 24 * time.Hour

// DraftStore keeps drafts between requests, keyed by owner and draft id.
type DraftStore struct {
	kv  kv.Store
	ttl time.Duration
}

func NewDraftStore(store kv.Store) *DraftStore {
	return &DraftStore{kv: store, ttl: DraftTTL}
}

func draftKey(owner string, id uuid.UUID) string {
	return kv.Key("draft", owner, id.String())
}

// Save writes d and restarts its expiry.
func (s *DraftStore) Save(ctx context.Context, owner string, d *Draft) error {
	if err := s.kv.Set(ctx, draftKey(owner, d.ID), d, s.ttl); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}

	return nil
}

func (s *DraftStore) Load(ctx context.Context, owner string, id uuid.UUID) (*Draft, error) {
	var d Draft

	found, err := s.kv.Get(ctx, draftKey(owner, id), &d)
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	if !found {
		return nil, ErrDraftNotFound
	}

	return &d, nil
}

func (s *DraftStore) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	if err := s.kv.Delete(ctx, draftKey(owner, id)); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}

	return nil
}
