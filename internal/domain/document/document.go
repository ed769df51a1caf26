package document

import (
	"context"
	"fmt"
)

// Type identifies a financial document category. Values follow the
// bookkeeping ledgers the files come from (KUF = purchase invoice book,
// KIF = sales invoice book).
type Type string

const (
	TypePurchaseInvoice Type = "kuf"
	TypeSalesInvoice    Type = "kif"
	TypeContract        Type = "ugovor"
	TypeBankStatement   Type = "izvod"
)

var All = []Type{TypePurchaseInvoice, TypeSalesInvoice, TypeContract, TypeBankStatement}

func (t Type) Valid() bool {
	switch t {
	case TypePurchaseInvoice, TypeSalesInvoice, TypeContract, TypeBankStatement:
		return true
	}
	return false
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// Discriminant is the boolean key the extraction service sets to state
// whether the file actually matches the expected document type.
func (t Type) Discriminant() string {
	switch t {
	case TypePurchaseInvoice:
		return "isPurchaseInvoice"
	case TypeSalesInvoice:
		return "isSalesInvoice"
	case TypeContract:
		return "isContract"
	case TypeBankStatement:
		return "isBankStatement"
	}
	return ""
}

// CounterpartyField is the response key carrying the counterparty reference
// for this document type.
func (t Type) CounterpartyField() string {
	switch t {
	case TypePurchaseInvoice:
		return "supplierId"
	case TypeSalesInvoice:
		return "customerId"
	case TypeContract:
		return "counterpartyId"
	case TypeBankStatement:
		return "accountNumber"
	}
	return ""
}

// FileEvent is what the external inbox watcher produces per attachment.
type FileEvent struct {
	DocumentType  Type   `json:"document_type"`
	Filename      string `json:"filename"`
	FileReference string `json:"file_reference"`
}

// Source hands out file events to pipeline workers. Requeue puts an event
// back for a later cycle after a transient failure.
type Source interface {
	Next(ctx context.Context) (FileEvent, error)
	Requeue(ctx context.Context, ev FileEvent) error
}
