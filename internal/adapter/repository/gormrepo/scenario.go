package gormrepo

import (
	"context"

	scenarioDomain "dealdesk/internal/domain/scenario"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScenarioRepository struct{ db *gorm.DB }

func NewScenarioRepository(db *gorm.DB) *ScenarioRepository { return &ScenarioRepository{db: db} }

// Create never writes through to the deal; the caller owns that row.
func (r *ScenarioRepository) Create(ctx context.Context, s *scenarioDomain.Scenario) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *ScenarioRepository) GetByScenarioID(ctx context.Context, scenarioID string) (*scenarioDomain.Scenario, error) {
	var out scenarioDomain.Scenario
	res := r.db.WithContext(ctx).
		Preload("Deal").
		Where("scenario_id = ?", scenarioID).
		First(&out)
	return &out, res.Error
}

func (r *ScenarioRepository) ListByDeal(ctx context.Context, dealID uint64, limit int) ([]scenarioDomain.Scenario, error) {
	q := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []scenarioDomain.Scenario
	res := q.Find(&out)
	return out, res.Error
}
