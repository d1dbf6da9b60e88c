package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/logger"
)

type valueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store loads and saves the responder settings as a single JSON value.
// Load always yields a usable snapshot: stored fields are unmarshalled over
// the defaults, so absent fields keep their default values.
type Store struct {
	store valueStore
	key   string
}

func NewStore(store valueStore, key string) *Store {
	return &Store{store: store, key: key}
}

func (s *Store) Load(ctx context.Context) (domain.Settings, error) {
	merged := domain.DefaultSettings()

	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return merged, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok {
		return merged, nil
	}

	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		// A corrupt settings value should not take the responder down.
		logger.Warnf("Stored settings are not valid JSON, using defaults: %v", err)
		return domain.DefaultSettings(), nil
	}

	return merged, nil
}

func (s *Store) Save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	payload, err := json.Marshal(settings)
	if err != nil {
		return settings, fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := s.store.Set(ctx, s.key, string(payload)); err != nil {
		return settings, fmt.Errorf("failed to save settings: %w", err)
	}

	return settings, nil
}
