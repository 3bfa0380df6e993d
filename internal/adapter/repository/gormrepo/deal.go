package gormrepo

import (
	"context"

	dealDomain "dealdesk/internal/domain/deal"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 50

type DealRepository struct{ db *gorm.DB }

func NewDealRepository(db *gorm.DB) *DealRepository { return &DealRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *DealRepository) Tx(ctx context.Context, fn func(repo dealDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DealRepository{db: tx})
	})
}

func (r *DealRepository) Create(ctx context.Context, d *dealDomain.Deal) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DealRepository) Save(ctx context.Context, d *dealDomain.Deal) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DealRepository) GetByDealID(ctx context.Context, dealID string) (*dealDomain.Deal, error) {
	var out dealDomain.Deal
	res := r.db.WithContext(ctx).Where("deal_id = ?", dealID).First(&out)
	return &out, res.Error
}

// GetByDealIDForUpdate issues SELECT ... FOR UPDATE. SQLite has no row
// locks and the clause is dropped there; its single writer serializes
// instead.
func (r *DealRepository) GetByDealIDForUpdate(ctx context.Context, dealID string) (*dealDomain.Deal, error) {
	var out dealDomain.Deal
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	res := q.Where("deal_id = ?", dealID).First(&out)
	return &out, res.Error
}

func (r *DealRepository) ListByOperator(ctx context.Context, operatorID string, f dealDomain.ListFilter) ([]dealDomain.Deal, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := r.db.WithContext(ctx).Where("operator_id = ?", operatorID)
	if f.Stage != "" {
		q = q.Where("stage = ?", f.Stage)
	}
	var out []dealDomain.Deal
	res := q.Order("updated_at DESC, id DESC").Limit(limit).Offset(f.Offset).Find(&out)
	return out, res.Error
}
