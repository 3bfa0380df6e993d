package gormrepo

import (
	"context"

	"dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/scenario"
	"dealdesk/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Deals:     &DealRepository{db: tx},
		Scenarios: &ScenarioRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinDealTx(ctx context.Context, dealID string, fn func(r uow.Repos, d *deal.Deal) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		d, err := r.Deals.GetByDealIDForUpdate(ctx, dealID)
		if err != nil {
			return err
		}
		return fn(r, d)
	})
}

// Migrate creates or updates the deals and scenarios tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&deal.Deal{}, &scenario.Scenario{})
}
