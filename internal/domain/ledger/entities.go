package ledger

import (
	"errors"
	"time"

	"findoc-pipeline/internal/domain/document"
)

var (
	ErrNotFound = errors.New("ledger entry not found")
	// ErrLeaseExpired is returned when a commit or release arrives after the
	// caller's lease lapsed (or was never held). The caller must discard its
	// work: another owner's outcome is authoritative.
	ErrLeaseExpired = errors.New("processing lease expired or not held")
)

// ClaimStatus is the outcome of a TryClaim attempt.
type ClaimStatus int

const (
	Claimed ClaimStatus = iota
	AlreadyProcessed
	AlreadyLeased
)

func (s ClaimStatus) String() string {
	switch s {
	case Claimed:
		return "claimed"
	case AlreadyProcessed:
		return "already_processed"
	case AlreadyLeased:
		return "already_leased"
	}
	return "unknown"
}

// Entry is the durable processing record per (document type, filename).
// It is the sole source of truth for "has this file been handled".
// IsValid is meaningful only once IsProcessed is true.
type Entry struct {
	ID             uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	DocumentType   document.Type `gorm:"column:document_type;size:16;not null;uniqueIndex:ux_ledger_type_filename"`
	Filename       string        `gorm:"column:filename;size:255;not null;uniqueIndex:ux_ledger_type_filename"`
	IsProcessed    bool          `gorm:"column:is_processed;not null;default:false"`
	IsValid        bool          `gorm:"column:is_valid;not null;default:false"`
	ProcessedAt    *time.Time    `gorm:"column:processed_at"`
	ErrorMessage   string        `gorm:"column:error_message;type:text"`
	LeaseOwner     string        `gorm:"column:lease_owner;size:32"`
	LeaseExpiresAt *time.Time    `gorm:"column:lease_expires_at"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string { return "processing_ledger" }

// LeaseLive reports whether the entry carries an unexpired lease at now.
func (e *Entry) LeaseLive(now time.Time) bool {
	return e.LeaseOwner != "" && e.LeaseExpiresAt != nil && e.LeaseExpiresAt.After(now)
}
