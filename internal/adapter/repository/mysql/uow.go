package mysql

import (
	"context"

	"findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos(tx))
	})
}

func (u *GormUoW) WithinAggregateTx(ctx context.Context, aggregateID string, fn func(r uow.Repos, a *aggregate.Aggregate) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := txRepos(tx)
		// lock the aggregate row up-front to prevent races
		a, err := r.Aggregates.GetByAggregateIDForUpdate(ctx, aggregateID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

func txRepos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Ledger:      &LedgerRepository{db: tx},
		Aggregates:  &AggregateRepository{db: tx},
		InvalidDocs: &InvalidDocRepository{db: tx},
	}
}
