package denylist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var _ Service = (*ServiceImpl)(nil)

// Service keeps the process-wide set of reported place names. The set is
// loaded once at startup and only ever appended to, so reads are lock-cheap
// and safe across concurrent pipeline runs.
type Service interface {
	Contains(name string) bool
	Report(ctx context.Context, name string) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository

	mu    sync.RWMutex
	names map[string]struct{}
}

// NewServiceImpl loads the persisted denylist into memory.
func NewServiceImpl(ctx context.Context, repo Repository, logger *slog.Logger) (*ServiceImpl, error) {
	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize denylist: %w", err)
	}
	names := make(map[string]struct{}, len(loaded))
	for _, name := range loaded {
		names[strings.ToLower(name)] = struct{}{}
	}
	logger.Info("Denylist loaded", slog.Int("entries", len(names)))
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		names:  names,
	}, nil
}

// Contains reports whether name was reported before. Matching is
// case-insensitive.
func (s *ServiceImpl) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.names[strings.ToLower(strings.TrimSpace(name))]
	return found
}

// Report adds name to the persistent denylist and the in-memory set.
// Reporting the same name twice has the same effect as reporting it once.
func (s *ServiceImpl) Report(ctx context.Context, name string) error {
	entry := strings.ToLower(strings.TrimSpace(name))
	if entry == "" {
		return fmt.Errorf("empty denylist entry")
	}
	if s.Contains(entry) {
		return nil
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist denylist entry", slog.String("name", entry), slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	s.names[entry] = struct{}{}
	s.mu.Unlock()
	return nil
}
