package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	aggregateDomain "findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/document"
	ledgerDomain "findoc-pipeline/internal/domain/ledger"
	"findoc-pipeline/internal/domain/uow"
	"findoc-pipeline/pkg/id"
)

// The aggregate insert and the ledger commit must live or die together: a
// lease-loss rollback cannot leave an orphaned aggregate.
func TestWithinTx_RollsBackAggregateOnLeaseLoss(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ledgerRepo := NewLedgerRepository(db)
	aggRepo := NewAggregateRepository(db)
	ctx := context.Background()

	ownerA, ownerB := id.NewID32(), id.NewID32()
	// A's lease is already expired, B holds the live one
	if _, err := ledgerRepo.TryClaim(ctx, document.TypePurchaseInvoice, "kuf_race.pdf", ownerA, -time.Second); err != nil {
		t.Fatalf("claim A: %v", err)
	}
	if _, err := ledgerRepo.TryClaim(ctx, document.TypePurchaseInvoice, "kuf_race.pdf", ownerB, time.Minute); err != nil {
		t.Fatalf("claim B: %v", err)
	}

	aggID := id.NewID32()
	err := u.WithinTx(ctx, func(r uow.Repos) error {
		a := makeAggregate(aggID)
		a.Filename = "kuf_race.pdf"
		if err := r.Aggregates.Create(ctx, a); err != nil {
			return err
		}
		return r.Ledger.Commit(ctx, document.TypePurchaseInvoice, "kuf_race.pdf", ownerA, true, "")
	})
	if !errors.Is(err, ledgerDomain.ErrLeaseExpired) {
		t.Fatalf("err = %v, want ErrLeaseExpired", err)
	}

	// the aggregate insert was rolled back
	if _, err := aggRepo.GetByAggregateID(ctx, aggID); !errors.Is(err, aggregateDomain.ErrNotFound) {
		t.Fatalf("orphaned aggregate survived the rollback: %v", err)
	}
}

func TestWithinTx_CommitsBothWrites(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ledgerRepo := NewLedgerRepository(db)
	aggRepo := NewAggregateRepository(db)
	ctx := context.Background()

	owner := id.NewID32()
	if _, err := ledgerRepo.TryClaim(ctx, document.TypePurchaseInvoice, "kuf_ok.pdf", owner, time.Minute); err != nil {
		t.Fatalf("claim: %v", err)
	}

	aggID := id.NewID32()
	err := u.WithinTx(ctx, func(r uow.Repos) error {
		a := makeAggregate(aggID)
		a.Filename = "kuf_ok.pdf"
		if err := r.Aggregates.Create(ctx, a); err != nil {
			return err
		}
		return r.Ledger.Commit(ctx, document.TypePurchaseInvoice, "kuf_ok.pdf", owner, true, "")
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	if _, err := aggRepo.GetByAggregateID(ctx, aggID); err != nil {
		t.Fatalf("aggregate missing after commit: %v", err)
	}
	e, _ := ledgerRepo.Get(ctx, document.TypePurchaseInvoice, "kuf_ok.pdf")
	if !e.IsProcessed || !e.IsValid {
		t.Fatalf("ledger not committed: %+v", e)
	}
}

func TestWithinAggregateTx_LocksAndPasses(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	aggRepo := NewAggregateRepository(db)
	ctx := context.Background()

	aggID := id.NewID32()
	if err := aggRepo.Create(ctx, makeAggregate(aggID)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := u.WithinAggregateTx(ctx, aggID, func(r uow.Repos, a *aggregateDomain.Aggregate) error {
		if a.AggregateID != aggID {
			t.Fatalf("wrong aggregate passed: %s", a.AggregateID)
		}
		now := time.Now().UTC()
		reviewer := "rev-1"
		a.ApprovedAt = &now
		a.ApprovedBy = &reviewer
		return r.Aggregates.Save(ctx, a)
	})
	if err != nil {
		t.Fatalf("WithinAggregateTx: %v", err)
	}

	got, _ := aggRepo.GetByAggregateID(ctx, aggID)
	if got.ApprovedAt == nil {
		t.Fatalf("approval not persisted")
	}
}

func TestWithinAggregateTx_NotFound(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)

	err := u.WithinAggregateTx(context.Background(), id.NewID32(), func(r uow.Repos, a *aggregateDomain.Aggregate) error {
		t.Fatal("callback must not run")
		return nil
	})
	if !errors.Is(err, aggregateDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
