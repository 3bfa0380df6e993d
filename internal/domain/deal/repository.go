package deal

import "context"

type ListFilter struct {
	Stage  Stage
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, d *Deal) error
	GetByDealID(ctx context.Context, dealID string) (*Deal, error)
	// Locks the row until the surrounding transaction ends.
	GetByDealIDForUpdate(ctx context.Context, dealID string) (*Deal, error)
	ListByOperator(ctx context.Context, operatorID string, f ListFilter) ([]Deal, error)
	Save(ctx context.Context, d *Deal) error
}
