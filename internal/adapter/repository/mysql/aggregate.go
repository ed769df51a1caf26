package mysql

import (
	"context"
	"errors"

	aggregateDomain "findoc-pipeline/internal/domain/aggregate"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AggregateRepository struct{ db *gorm.DB }

func NewAggregateRepository(db *gorm.DB) *AggregateRepository { return &AggregateRepository{db: db} }

// Create inserts the aggregate and its line items in one go (gorm walks the
// association).
func (r *AggregateRepository) Create(ctx context.Context, a *aggregateDomain.Aggregate) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AggregateRepository) Save(ctx context.Context, a *aggregateDomain.Aggregate) error {
	return r.db.WithContext(ctx).Omit("Items").Save(a).Error
}

func (r *AggregateRepository) GetByAggregateID(ctx context.Context, aggregateID string) (*aggregateDomain.Aggregate, error) {
	var out aggregateDomain.Aggregate
	res := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_number ASC") }).
		Where("aggregate_id = ?", aggregateID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, aggregateDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *AggregateRepository) GetByAggregateIDForUpdate(ctx context.Context, aggregateID string) (*aggregateDomain.Aggregate, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no row locks (writers serialize anyway)
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out aggregateDomain.Aggregate
	res := q.
		Where("aggregate_id = ?", aggregateID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, aggregateDomain.ErrNotFound
	}
	return &out, res.Error
}
