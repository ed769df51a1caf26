package aggregate

import "context"

type Repository interface {
	// Create inserts the aggregate together with its line items.
	Create(ctx context.Context, a *Aggregate) error

	// GetByAggregateID loads by public id with items preloaded in order.
	GetByAggregateID(ctx context.Context, aggregateID string) (*Aggregate, error)

	// GetByAggregateIDForUpdate locks the row within the current transaction.
	GetByAggregateIDForUpdate(ctx context.Context, aggregateID string) (*Aggregate, error)

	Save(ctx context.Context, a *Aggregate) error
}
