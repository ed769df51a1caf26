package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"findoc-pipeline/internal/domain/document"
	invaliddocDomain "findoc-pipeline/internal/domain/invaliddoc"
	"findoc-pipeline/pkg/id"
)

func TestInvalidDocUpsert_KeepsNewestMessage(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvalidDocRepository(db)
	ctx := context.Background()

	first := &invaliddocDomain.Record{
		RecordID:     id.NewID32(),
		DocumentType: document.TypePurchaseInvoice,
		Filename:     "bad.pdf",
		Message:      "This is a shipping label",
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second := &invaliddocDomain.Record{
		RecordID:     id.NewID32(),
		DocumentType: document.TypePurchaseInvoice,
		Filename:     "bad.pdf",
		Message:      "Still not an invoice after re-scan",
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	recs, total, err := repo.List(ctx, document.TypePurchaseInvoice, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(recs) != 1 {
		t.Fatalf("total = %d, len = %d, want exactly one row", total, len(recs))
	}
	if recs[0].Message != "Still not an invoice after re-scan" {
		t.Errorf("message = %q, want the newest one", recs[0].Message)
	}
}

func TestInvalidDocList_FiltersAndPaginates(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvalidDocRepository(db)
	ctx := context.Background()

	for i, dt := range []document.Type{document.TypePurchaseInvoice, document.TypePurchaseInvoice, document.TypeContract} {
		rec := &invaliddocDomain.Record{
			RecordID:     id.NewID32(),
			DocumentType: dt,
			Filename:     "f" + string(rune('a'+i)) + ".pdf",
			Message:      "broken",
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	recs, total, err := repo.List(ctx, document.TypePurchaseInvoice, 0, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(recs) != 1 {
		t.Errorf("page len = %d, want 1", len(recs))
	}

	all, total, err := repo.List(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("all: total = %d len = %d, want 3", total, len(all))
	}
}

func TestInvalidDocMarkReviewed(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvalidDocRepository(db)
	ctx := context.Background()

	rec := &invaliddocDomain.Record{
		RecordID:     id.NewID32(),
		DocumentType: document.TypeSalesInvoice,
		Filename:     "kif_9.pdf",
		Message:      "missing invoiceDate",
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.MarkReviewed(ctx, rec.RecordID, "reviewer-1", invaliddocDomain.ResolutionDismissed, now); err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}

	got, err := repo.GetByRecordID(ctx, rec.RecordID)
	if err != nil {
		t.Fatalf("GetByRecordID: %v", err)
	}
	if got.ReviewedAt == nil || got.ReviewedBy == nil || *got.ReviewedBy != "reviewer-1" {
		t.Fatalf("review fields not set: %+v", got)
	}
	if got.Resolution != invaliddocDomain.ResolutionDismissed {
		t.Errorf("resolution = %q", got.Resolution)
	}

	// reviewed records drop off the unresolved queue
	_, total, _ := repo.List(ctx, document.TypeSalesInvoice, 0, 10)
	if total != 0 {
		t.Errorf("reviewed record still listed, total = %d", total)
	}

	// second review is a conflict
	err = repo.MarkReviewed(ctx, rec.RecordID, "reviewer-2", invaliddocDomain.ResolutionReflagged, now)
	if !errors.Is(err, invaliddocDomain.ErrAlreadyReviewed) {
		t.Fatalf("err = %v, want ErrAlreadyReviewed", err)
	}
}

func TestInvalidDocMarkReviewed_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvalidDocRepository(db)

	err := repo.MarkReviewed(context.Background(), id.NewID32(), "r", invaliddocDomain.ResolutionDismissed, time.Now().UTC())
	if !errors.Is(err, invaliddocDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
