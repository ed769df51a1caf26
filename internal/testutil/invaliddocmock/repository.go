package invaliddocmock

import (
	"context"
	"time"

	"findoc-pipeline/internal/domain/document"
	domain "findoc-pipeline/internal/domain/invaliddoc"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	UpsertFn        func(ctx context.Context, r *domain.Record) error
	GetByRecordIDFn func(ctx context.Context, recordID string) (*domain.Record, error)
	ListFn          func(ctx context.Context, dt document.Type, offset, limit int) ([]domain.Record, int64, error)
	MarkReviewedFn  func(ctx context.Context, recordID, reviewer string, res domain.Resolution, at time.Time) error
}

func (m *Repo) Upsert(ctx context.Context, r *domain.Record) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRecordID(ctx context.Context, recordID string) (*domain.Record, error) {
	if m.GetByRecordIDFn != nil {
		return m.GetByRecordIDFn(ctx, recordID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, dt document.Type, offset, limit int) ([]domain.Record, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, dt, offset, limit)
	}
	return nil, 0, nil
}

func (m *Repo) MarkReviewed(ctx context.Context, recordID, reviewer string, res domain.Resolution, at time.Time) error {
	if m.MarkReviewedFn != nil {
		return m.MarkReviewedFn(ctx, recordID, reviewer, res, at)
	}
	return nil
}
