package notify

import (
	"context"

	"findoc-pipeline/internal/domain/document"
)

type Kind string

const (
	KindPendingApproval    Kind = "pending_approval"
	KindNewInvalidDocument Kind = "new_invalid_document"
)

// Event is delivered at-least-once to the external dispatcher (email queue,
// real-time push). Receivers must tolerate duplicates.
type Event struct {
	Kind         Kind          `json:"kind"`
	DocumentType document.Type `json:"document_type"`
	AggregateID  string        `json:"aggregate_id,omitempty"`
	Filename     string        `json:"filename,omitempty"`
	Message      string        `json:"message,omitempty"`
}

func PendingApproval(dt document.Type, aggregateID string) Event {
	return Event{Kind: KindPendingApproval, DocumentType: dt, AggregateID: aggregateID}
}

func NewInvalidDocument(dt document.Type, filename, message string) Event {
	return Event{Kind: KindNewInvalidDocument, DocumentType: dt, Filename: filename, Message: message}
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}
