package uow

import (
	"context"

	"findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/invaliddoc"
	"findoc-pipeline/internal/domain/ledger"
)

type Repos struct {
	Ledger      ledger.Repository
	Aggregates  aggregate.Repository
	InvalidDocs invaliddoc.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the aggregate row first, then pass it in
	WithinAggregateTx(ctx context.Context, aggregateID string, fn func(r Repos, a *aggregate.Aggregate) error) error
}
