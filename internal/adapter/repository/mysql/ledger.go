package mysql

import (
	"context"
	"errors"
	"time"

	"findoc-pipeline/internal/domain/document"
	ledgerDomain "findoc-pipeline/internal/domain/ledger"

	"gorm.io/gorm"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

// TryClaim is a single atomic conditional write: insert-if-absent, otherwise
// a guarded UPDATE that only succeeds when the entry is unprocessed and the
// lease is free, expired, or already ours. No read-then-write.
func (r *LedgerRepository) TryClaim(ctx context.Context, dt document.Type, filename, owner string, ttl time.Duration) (ledgerDomain.ClaimStatus, error) {
	now := time.Now().UTC()
	expires := now.Add(ttl)

	e := &ledgerDomain.Entry{
		DocumentType:   dt,
		Filename:       filename,
		LeaseOwner:     owner,
		LeaseExpiresAt: &expires,
	}
	err := r.db.WithContext(ctx).Create(e).Error
	if err == nil {
		return ledgerDomain.Claimed, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}

	// Entry exists: take over only if unprocessed and the lease is not live
	// under another owner.
	res := r.db.WithContext(ctx).Model(&ledgerDomain.Entry{}).
		Where("document_type = ? AND filename = ? AND is_processed = ?", dt, filename, false).
		Where("lease_owner = '' OR lease_owner = ? OR lease_expires_at IS NULL OR lease_expires_at < ?", owner, now).
		Updates(map[string]any{"lease_owner": owner, "lease_expires_at": expires})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 1 {
		return ledgerDomain.Claimed, nil
	}

	cur, err := r.Get(ctx, dt, filename)
	if err != nil {
		return 0, err
	}
	if cur.IsProcessed {
		return ledgerDomain.AlreadyProcessed, nil
	}
	return ledgerDomain.AlreadyLeased, nil
}

func (r *LedgerRepository) Commit(ctx context.Context, dt document.Type, filename, owner string, valid bool, errMsg string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&ledgerDomain.Entry{}).
		Where("document_type = ? AND filename = ? AND is_processed = ?", dt, filename, false).
		Where("lease_owner = ? AND lease_expires_at >= ?", owner, now).
		Updates(map[string]any{
			"is_processed":     true,
			"is_valid":         valid,
			"error_message":    errMsg,
			"processed_at":     now,
			"lease_owner":      "",
			"lease_expires_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledgerDomain.ErrLeaseExpired
	}
	return nil
}

func (r *LedgerRepository) Release(ctx context.Context, dt document.Type, filename, owner string) error {
	res := r.db.WithContext(ctx).Model(&ledgerDomain.Entry{}).
		Where("document_type = ? AND filename = ? AND is_processed = ? AND lease_owner = ?", dt, filename, false, owner).
		Updates(map[string]any{"lease_owner": "", "lease_expires_at": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledgerDomain.ErrLeaseExpired
	}
	return nil
}

func (r *LedgerRepository) Get(ctx context.Context, dt document.Type, filename string) (*ledgerDomain.Entry, error) {
	var out ledgerDomain.Entry
	res := r.db.WithContext(ctx).
		Where("document_type = ? AND filename = ?", dt, filename).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, ledgerDomain.ErrNotFound
	}
	return &out, res.Error
}
