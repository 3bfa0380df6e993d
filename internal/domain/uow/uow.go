package uow

import (
	"context"

	"dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/scenario"
)

type Repos struct {
	Deals     deal.Repository
	Scenarios scenario.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the deal row first, then pass it in
	WithinDealTx(ctx context.Context, dealID string, fn func(r Repos, d *deal.Deal) error) error
}
