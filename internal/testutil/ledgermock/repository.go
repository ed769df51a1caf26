package ledgermock

import (
	"context"
	"time"

	"findoc-pipeline/internal/domain/document"
	domain "findoc-pipeline/internal/domain/ledger"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only fill in what a test needs; unfilled claim defaults to Claimed.
type Repo struct {
	TryClaimFn func(ctx context.Context, dt document.Type, filename, owner string, ttl time.Duration) (domain.ClaimStatus, error)
	CommitFn   func(ctx context.Context, dt document.Type, filename, owner string, valid bool, errMsg string) error
	ReleaseFn  func(ctx context.Context, dt document.Type, filename, owner string) error
	GetFn      func(ctx context.Context, dt document.Type, filename string) (*domain.Entry, error)
}

func (m *Repo) TryClaim(ctx context.Context, dt document.Type, filename, owner string, ttl time.Duration) (domain.ClaimStatus, error) {
	if m.TryClaimFn != nil {
		return m.TryClaimFn(ctx, dt, filename, owner, ttl)
	}
	return domain.Claimed, nil
}

func (m *Repo) Commit(ctx context.Context, dt document.Type, filename, owner string, valid bool, errMsg string) error {
	if m.CommitFn != nil {
		return m.CommitFn(ctx, dt, filename, owner, valid, errMsg)
	}
	return nil
}

func (m *Repo) Release(ctx context.Context, dt document.Type, filename, owner string) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(ctx, dt, filename, owner)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, dt document.Type, filename string) (*domain.Entry, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, dt, filename)
	}
	return nil, domain.ErrNotFound
}
