package invaliddoc

import (
	"context"
	"time"

	"findoc-pipeline/internal/domain/document"
)

type Repository interface {
	// Upsert inserts or, when (documentType, filename) already exists,
	// replaces the stored message with the newest one.
	Upsert(ctx context.Context, r *Record) error

	GetByRecordID(ctx context.Context, recordID string) (*Record, error)

	// List returns unresolved records, newest first, with the total count.
	// dt may be empty to list across all document types.
	List(ctx context.Context, dt document.Type, offset, limit int) ([]Record, int64, error)

	// MarkReviewed transitions Unreviewed -> Reviewed atomically.
	// ErrAlreadyReviewed when the record was already closed, ErrNotFound when
	// there is no such record.
	MarkReviewed(ctx context.Context, recordID, reviewer string, res Resolution, at time.Time) error
}
