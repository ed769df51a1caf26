package approval

import "time"

type ApproveInput struct {
	AggregateID string
	ReviewerID  string
}

type RejectInput struct {
	AggregateID string
	ReviewerID  string
	Reason      string
}

type LineItemDTO struct {
	OrderNumber   int     `json:"order_number"`
	Description   string  `json:"description,omitempty"`
	Quantity      *string `json:"quantity,omitempty"`
	UnitPrice     *string `json:"unit_price,omitempty"`
	NetSubtotal   string  `json:"net_subtotal"`
	VATAmount     string  `json:"vat_amount"`
	GrossSubtotal string  `json:"gross_subtotal"`
}

type AggregateDTO struct {
	AggregateID     string        `json:"aggregate_id"`
	DocumentType    string        `json:"document_type"`
	Filename        string        `json:"filename"`
	DocumentNumber  string        `json:"document_number,omitempty"`
	CounterpartyRef string        `json:"counterparty_ref"`
	IssueDate       *string       `json:"issue_date,omitempty"`
	DueDate         *string       `json:"due_date,omitempty"`
	Currency        string        `json:"currency"`
	NetTotal        string        `json:"net_total"`
	VATTotal        string        `json:"vat_total"`
	GrossTotal      string        `json:"gross_total"`
	Status          string        `json:"status"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	ApprovedBy      *string       `json:"approved_by,omitempty"`
	RejectedAt      *time.Time    `json:"rejected_at,omitempty"`
	RejectedBy      *string       `json:"rejected_by,omitempty"`
	RejectReason    string        `json:"reject_reason,omitempty"`
	Items           []LineItemDTO `json:"items,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
