package aggregatemock

import (
	"context"

	domain "findoc-pipeline/internal/domain/aggregate"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                    func(ctx context.Context, a *domain.Aggregate) error
	GetByAggregateIDFn          func(ctx context.Context, aggregateID string) (*domain.Aggregate, error)
	GetByAggregateIDForUpdateFn func(ctx context.Context, aggregateID string) (*domain.Aggregate, error)
	SaveFn                      func(ctx context.Context, a *domain.Aggregate) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Aggregate) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAggregateID(ctx context.Context, aggregateID string) (*domain.Aggregate, error) {
	if m.GetByAggregateIDFn != nil {
		return m.GetByAggregateIDFn(ctx, aggregateID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByAggregateIDForUpdate(ctx context.Context, aggregateID string) (*domain.Aggregate, error) {
	if m.GetByAggregateIDForUpdateFn != nil {
		return m.GetByAggregateIDForUpdateFn(ctx, aggregateID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, a *domain.Aggregate) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}
