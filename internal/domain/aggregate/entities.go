package aggregate

import (
	"errors"
	"time"

	"findoc-pipeline/internal/domain/document"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("aggregate not found")
	// ErrApprovalStateViolation is returned when approve/reject hits an
	// aggregate already in a terminal state.
	ErrApprovalStateViolation = errors.New("aggregate already approved or rejected")
)

// Aggregate is the persisted financial record promoted from a validated
// extraction: one row per successfully processed file, tagged by document
// type, awaiting reviewer approval.
//
// Approval pair invariant: ApprovedAt and ApprovedBy are set together or not
// at all. Same for the rejection triple.
type Aggregate struct {
	ID           uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	AggregateID  string        `gorm:"column:aggregate_id;type:char(32);not null;uniqueIndex:ux_aggregates_aggregate_id"`
	DocumentType document.Type `gorm:"column:document_type;size:16;not null;index:idx_aggregates_type"`
	Filename     string        `gorm:"column:filename;size:255;not null"`

	DocumentNumber  string          `gorm:"column:document_number;size:64"`
	CounterpartyRef string          `gorm:"column:counterparty_ref;size:64"`
	IssueDate       *time.Time      `gorm:"column:issue_date;type:date"`
	DueDate         *time.Time      `gorm:"column:due_date;type:date"`
	Currency        string          `gorm:"column:currency;size:3"`
	NetTotal        decimal.Decimal `gorm:"column:net_total;type:decimal(18,2)"`
	VATTotal        decimal.Decimal `gorm:"column:vat_total;type:decimal(18,2)"`
	GrossTotal      decimal.Decimal `gorm:"column:gross_total;type:decimal(18,2)"`
	Notes           string          `gorm:"column:notes;type:text"`

	ApprovedAt *time.Time `gorm:"column:approved_at"`
	ApprovedBy *string    `gorm:"column:approved_by;size:64"`

	RejectedAt   *time.Time `gorm:"column:rejected_at"`
	RejectedBy   *string    `gorm:"column:rejected_by;size:64"`
	RejectReason string     `gorm:"column:reject_reason;type:text"`

	Items []LineItem `gorm:"foreignKey:AggregateRowID;references:ID"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
	DeletedBy *string        `gorm:"column:deleted_by;size:64"`
}

func (Aggregate) TableName() string { return "aggregates" }

// Terminal reports whether the approval state machine has reached a final
// state (approved or rejected).
func (a *Aggregate) Terminal() bool {
	return a.ApprovedAt != nil || a.RejectedAt != nil
}

// LineItem is one ordered position of an aggregate. OrderNumber preserves the
// position from the source document end to end.
type LineItem struct {
	ID             uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	AggregateRowID uint64           `gorm:"column:aggregate_id;not null;index:idx_line_items_aggregate"`
	OrderNumber    int              `gorm:"column:order_number;not null"`
	Description    string           `gorm:"column:description;type:text"`
	Quantity       *decimal.Decimal `gorm:"column:quantity;type:decimal(18,4)"`
	UnitPrice      *decimal.Decimal `gorm:"column:unit_price;type:decimal(18,2)"`
	NetSubtotal    decimal.Decimal  `gorm:"column:net_subtotal;type:decimal(18,2)"`
	VATAmount      decimal.Decimal  `gorm:"column:vat_amount;type:decimal(18,2)"`
	GrossSubtotal  decimal.Decimal  `gorm:"column:gross_subtotal;type:decimal(18,2)"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (LineItem) TableName() string { return "line_items" }
