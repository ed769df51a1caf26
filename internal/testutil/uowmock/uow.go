package uowmock

import (
	"context"
	"errors"

	"findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn          func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinAggregateTxFn func(ctx context.Context, aggregateID string, fn func(r uow.Repos, a *aggregate.Aggregate) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough returns a UoW whose transactions just run the callback against
// the given repos, no transactionality.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		},
		WithinAggregateTxFn: func(ctx context.Context, aggregateID string, fn func(uow.Repos, *aggregate.Aggregate) error) error {
			a, err := r.Aggregates.GetByAggregateIDForUpdate(ctx, aggregateID)
			if err != nil {
				return err
			}
			return fn(r, a)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinAggregateTx(ctx context.Context, aggregateID string, fn func(r uow.Repos, a *aggregate.Aggregate) error) error {
	if m.WithinAggregateTxFn != nil {
		return m.WithinAggregateTxFn(ctx, aggregateID, fn)
	}
	return errUnimplemented
}
