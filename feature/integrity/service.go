package integrity

import (
	"context"
	"fmt"

	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/pattern"
	"pattern-catalog/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks for one catalog.
type Service struct {
	pattern *pattern.Pattern
	lister  lister.Lister
	keys    entrykey.Builder
	db      *gorm.DB
	model   interface{}
	logger  *zap.Logger
}

// NewService creates a new integrity service. db and model may be nil when
// no snapshot database is configured.
func NewService(p *pattern.Pattern, l lister.Lister, keys entrykey.Builder, db *gorm.DB, model interface{}, logger *zap.Logger) *Service {
	return &Service{
		pattern: p,
		lister:  l,
		keys:    keys,
		db:      db,
		model:   model,
		logger:  logger,
	}
}

// CheckStructure reports what the backend holds under the template.
func (s *Service) CheckStructure(ctx context.Context) (*checks.StructureReport, error) {
	return checks.CheckStructure(ctx, s.lister, s.pattern)
}

// CheckKeys lists the backend and reports paths that cannot be addressed.
func (s *Service) CheckKeys(ctx context.Context) (checks.KeyReport, error) {
	glob := s.pattern.Glob()
	paths, err := s.lister.ListPaths(ctx, glob)
	if err != nil {
		return checks.KeyReport{}, fmt.Errorf("failed to list %s: %w", glob, err)
	}
	return checks.CheckKeys(paths, s.pattern, s.keys), nil
}

// CheckSchema verifies the snapshot table.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil || s.model == nil {
		return nil, fmt.Errorf("database is not configured")
	}
	return checks.CheckSchema(s.db, s.model)
}
