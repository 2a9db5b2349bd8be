package fieldvalues

import (
	"context"
	"errors"
	"fmt"

	"github.com/certdesk/certdesk/internal/values"
	"github.com/certdesk/certdesk/pkg/logger"
	"github.com/certdesk/certdesk/pkg/metrics"
)

// SaveResult reports a successful save.
type SaveResult struct {
	FieldCount int   `json:"field_count"`
	Version    int64 `json:"version"`
}

// Service runs the merge and the versioned write together.
type Service struct {
	repo     Repository
	attempts int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, attempts: 2}
}

// Get returns the stored set or nil when nothing was saved yet.
func (s *Service) Get(ctx context.Context, accountID, templateID string) (*FieldValueSet, error) {
	return s.repo.Get(ctx, accountID, templateID)
}

// Save merges incoming with the stored values and writes the result with an
// optimistic version check. The read, merge and write are repeated once on a
// version conflict; a second conflict returns ErrConflict.
func (s *Service) Save(ctx context.Context, accountID, templateID string, incoming map[string]string) (*SaveResult, error) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		cur, err := s.repo.Get(ctx, accountID, templateID)
		if err != nil {
			metrics.ValueSaves.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("load field values: %w", err)
		}
		var existing map[string]string
		var expected int64
		if cur != nil {
			existing, expected = cur.Values, cur.Version
		}
		merged := values.Merge(incoming, existing)
		set := &FieldValueSet{
			AccountID:  accountID,
			TemplateID: templateID,
			Values:     values.Overlay(existing, merged),
		}
		err = s.repo.Put(ctx, set, expected)
		if err == nil {
			metrics.ValueSaves.WithLabelValues("ok").Inc()
			return &SaveResult{FieldCount: len(merged), Version: set.Version}, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			metrics.ValueSaves.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("store field values: %w", err)
		}
		metrics.ValueSaves.WithLabelValues("retry").Inc()
		logger.Warnf("field values %s/%s changed during save (attempt %d)", accountID, templateID, attempt)
	}
	metrics.ValueSaves.WithLabelValues("conflict").Inc()
	return nil, ErrConflict
}
