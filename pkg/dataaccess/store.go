package dataaccess

import (
	"context"
	"fmt"
	"sync"

	"github.com/discosoft/talep/pkg/entities"
)

// ConfigStore serializes all access to the configuration document. Every
// handler mutates the document through Update, which performs the whole
// read-modify-write cycle under one lock, so two concurrent operations can
// never lose each other's write.
type ConfigStore struct {
	// mu guards the read-modify-write cycle.
	mu sync.Mutex

	// dal is the underlying data access layer.
	dal ConfigDal
}

// NewConfigStore creates a store over the given data access layer.
func NewConfigStore(dal ConfigDal) *ConfigStore {
	return &ConfigStore{
		dal: dal,
	}
}

// Snapshot returns the current configuration document. Callers receive the
// loaded document and must not retain it across an Update.
func (s *ConfigStore) Snapshot(ctx context.Context) (*entities.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.dal.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return cfg, nil
}

// Update loads the configuration document, applies fn to it and saves the
// whole document back. If fn returns an error the document is not saved. The
// mutated document is returned on success.
func (s *ConfigStore) Update(ctx context.Context, fn func(cfg *entities.GuildConfig) error) (*entities.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.dal.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	if err := fn(cfg); err != nil {
		return nil, err
	}

	if err := s.dal.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("error saving configuration: %w", err)
	}
	return cfg, nil
}
