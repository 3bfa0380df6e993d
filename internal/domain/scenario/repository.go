package scenario

import "context"

type Repository interface {
	Create(ctx context.Context, s *Scenario) error

	// Get by public scenario_id, with its Deal loaded.
	GetByScenarioID(ctx context.Context, scenarioID string) (*Scenario, error)

	// Newest first. limit <= 0 means no limit.
	ListByDeal(ctx context.Context, dealID uint64, limit int) ([]Scenario, error)
}
