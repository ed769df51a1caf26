package invaliddoc

import (
	"errors"
	"time"

	"findoc-pipeline/internal/domain/document"
)

var (
	ErrNotFound        = errors.New("invalid-document record not found")
	ErrAlreadyReviewed = errors.New("invalid-document record already reviewed")
)

// Resolution records how a reviewer closed an invalid-document entry.
type Resolution string

const (
	ResolutionDismissed Resolution = "dismissed"
	ResolutionReflagged Resolution = "reflagged"
)

// Record is one permanently rejected file. It feeds a small review queue
// distinct from financial approval: a human acknowledges the failure, the
// file never becomes a financial record.
type Record struct {
	ID           uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	RecordID     string        `gorm:"column:record_id;type:char(32);not null;uniqueIndex:ux_invalid_docs_record_id"`
	DocumentType document.Type `gorm:"column:document_type;size:16;not null;uniqueIndex:ux_invalid_docs_type_filename"`
	Filename     string        `gorm:"column:filename;size:255;not null;uniqueIndex:ux_invalid_docs_type_filename"`
	Message      string        `gorm:"column:message;type:text;not null"`
	ReviewedAt   *time.Time    `gorm:"column:reviewed_at"`
	ReviewedBy   *string       `gorm:"column:reviewed_by;size:64"`
	Resolution   Resolution    `gorm:"column:resolution;size:16"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string { return "invalid_documents" }
