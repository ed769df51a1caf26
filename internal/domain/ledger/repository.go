package ledger

import (
	"context"
	"time"

	"findoc-pipeline/internal/domain/document"
)

type Repository interface {
	// TryClaim atomically claims (documentType, filename) for owner with a
	// lease of ttl. Implementations must use conditional writes, never
	// read-then-write.
	TryClaim(ctx context.Context, dt document.Type, filename, owner string, ttl time.Duration) (ClaimStatus, error)

	// Commit marks the entry processed with the given validity, but only if
	// owner still holds an unexpired lease; otherwise ErrLeaseExpired.
	Commit(ctx context.Context, dt document.Type, filename, owner string, valid bool, errMsg string) error

	// Release clears the lease without marking processed, keeping the file
	// eligible for a later claim.
	Release(ctx context.Context, dt document.Type, filename, owner string) error

	Get(ctx context.Context, dt document.Type, filename string) (*Entry, error)
}
