package extraction

import (
	"fmt"
	"time"

	"findoc-pipeline/internal/domain/document"

	"github.com/shopspring/decimal"
)

// Header carries the normalized top-level fields of an extracted document.
type Header struct {
	DocumentNumber  string
	CounterpartyRef string
	IssueDate       *time.Time
	DueDate         *time.Time
	Currency        string
	NetTotal        decimal.Decimal
	VATTotal        decimal.Decimal
	GrossTotal      decimal.Decimal
	Notes           string
}

// Item is one normalized document position.
type Item struct {
	OrderNumber   int
	Description   string
	Quantity      *decimal.Decimal
	UnitPrice     *decimal.Decimal
	NetSubtotal   decimal.Decimal
	VATAmount     decimal.Decimal
	GrossSubtotal decimal.Decimal
}

// Result is the transient, validated extraction. It is never persisted as-is;
// the coordinator either promotes it to an aggregate or discards it.
// Warnings are non-fatal findings (amount reconciliation mismatches).
type Result struct {
	DocumentType document.Type
	Header       Header
	Items        []Item
	Warnings     []string
}

// RejectionError is a permanent, human-facing validation failure. It produces
// an invalid-document record and is never retried.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return "document rejected: " + e.Reason }

func rejectf(format string, args ...any) *RejectionError {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}

// TransientError marks a retryable boundary failure (network, timeout,
// overloaded provider, garbled body). The lease is released and the file
// stays eligible for a later cycle.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient extraction failure: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a definitive provider-side failure (provider says it
// cannot parse the file, or the response lacks the discriminant). Retrying
// cannot change the outcome.
type PermanentError struct {
	Reason string
}

func (e *PermanentError) Error() string { return "permanent extraction failure: " + e.Reason }
