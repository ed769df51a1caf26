package mysql

import (
	"context"
	"errors"
	"time"

	"findoc-pipeline/internal/domain/document"
	invaliddocDomain "findoc-pipeline/internal/domain/invaliddoc"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvalidDocRepository struct{ db *gorm.DB }

func NewInvalidDocRepository(db *gorm.DB) *InvalidDocRepository {
	return &InvalidDocRepository{db: db}
}

// Upsert keys on (document_type, filename) and keeps the newest message.
func (r *InvalidDocRepository) Upsert(ctx context.Context, rec *invaliddocDomain.Record) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_type"}, {Name: "filename"}},
		DoUpdates: clause.Assignments(map[string]any{"message": rec.Message, "updated_at": time.Now().UTC()}),
	}).Create(rec).Error
}

func (r *InvalidDocRepository) GetByRecordID(ctx context.Context, recordID string) (*invaliddocDomain.Record, error) {
	var out invaliddocDomain.Record
	res := r.db.WithContext(ctx).Where("record_id = ?", recordID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, invaliddocDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *InvalidDocRepository) List(ctx context.Context, dt document.Type, offset, limit int) ([]invaliddocDomain.Record, int64, error) {
	q := r.db.WithContext(ctx).Model(&invaliddocDomain.Record{}).Where("reviewed_at IS NULL")
	if dt != "" {
		q = q.Where("document_type = ?", dt)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []invaliddocDomain.Record
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// MarkReviewed is a guarded UPDATE so two reviewers cannot both close the
// same record.
func (r *InvalidDocRepository) MarkReviewed(ctx context.Context, recordID, reviewer string, resolution invaliddocDomain.Resolution, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&invaliddocDomain.Record{}).
		Where("record_id = ? AND reviewed_at IS NULL", recordID).
		Updates(map[string]any{"reviewed_at": at, "reviewed_by": reviewer, "resolution": resolution})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.GetByRecordID(ctx, recordID); err != nil {
		return err
	}
	return invaliddocDomain.ErrAlreadyReviewed
}
