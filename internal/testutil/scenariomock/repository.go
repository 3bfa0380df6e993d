package scenariomock

import (
	"context"

	domain "dealdesk/internal/domain/scenario"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, s *domain.Scenario) error
	GetByScenarioIDFn func(ctx context.Context, scenarioID string) (*domain.Scenario, error)
	ListByDealFn      func(ctx context.Context, dealID uint64, limit int) ([]domain.Scenario, error)
}

func (m *Repo) Create(ctx context.Context, s *domain.Scenario) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetByScenarioID(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	if m.GetByScenarioIDFn != nil {
		return m.GetByScenarioIDFn(ctx, scenarioID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByDeal(ctx context.Context, dealID uint64, limit int) ([]domain.Scenario, error) {
	if m.ListByDealFn != nil {
		return m.ListByDealFn(ctx, dealID, limit)
	}
	return nil, context.Canceled
}
