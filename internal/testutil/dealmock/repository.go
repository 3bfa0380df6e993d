package dealmock

import (
	"context"

	domain "dealdesk/internal/domain/deal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads return context.Canceled; unset writes are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, d *domain.Deal) error
	GetByDealIDFn          func(ctx context.Context, dealID string) (*domain.Deal, error)
	GetByDealIDForUpdateFn func(ctx context.Context, dealID string) (*domain.Deal, error)
	ListByOperatorFn       func(ctx context.Context, operatorID string, f domain.ListFilter) ([]domain.Deal, error)
	SaveFn                 func(ctx context.Context, d *domain.Deal) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Deal) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDealID(ctx context.Context, dealID string) (*domain.Deal, error) {
	if m.GetByDealIDFn != nil {
		return m.GetByDealIDFn(ctx, dealID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByDealIDForUpdate(ctx context.Context, dealID string) (*domain.Deal, error) {
	if m.GetByDealIDForUpdateFn != nil {
		return m.GetByDealIDForUpdateFn(ctx, dealID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByOperator(ctx context.Context, operatorID string, f domain.ListFilter) ([]domain.Deal, error) {
	if m.ListByOperatorFn != nil {
		return m.ListByOperatorFn(ctx, operatorID, f)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, d *domain.Deal) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}
