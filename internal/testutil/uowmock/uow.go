package uowmock

import (
	"context"
	"errors"

	"dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinDealTxFn func(ctx context.Context, dealID string, fn func(r uow.Repos, d *deal.Deal) error) error
}

// Passthrough returns a UoW that runs every callback directly against r,
// locking nothing. WithinDealTx loads the deal through r.Deals.GetByDealIDForUpdate.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(r) },
		WithinDealTxFn: func(ctx context.Context, dealID string, fn func(uow.Repos, *deal.Deal) error) error {
			d, err := r.Deals.GetByDealIDForUpdate(ctx, dealID)
			if err != nil {
				return err
			}
			return fn(r, d)
		},
	}
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinDealTx(fn func(context.Context, string, func(uow.Repos, *deal.Deal) error) error) *UoW {
	m.WithinDealTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinDealTx(ctx context.Context, dealID string, fn func(r uow.Repos, d *deal.Deal) error) error {
	if m.WithinDealTxFn != nil {
		return m.WithinDealTxFn(ctx, dealID, fn)
	}
	return errUnimplemented
}
