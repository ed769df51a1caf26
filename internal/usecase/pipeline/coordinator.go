package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/document"
	"findoc-pipeline/internal/domain/invaliddoc"
	"findoc-pipeline/internal/domain/ledger"
	"findoc-pipeline/internal/domain/notify"
	"findoc-pipeline/internal/domain/uow"
	"findoc-pipeline/internal/usecase/extraction"
	"findoc-pipeline/pkg/id"
)

// ErrRetryLater signals a transient failure: the lease was released and the
// caller should feed the event back on a later cycle.
var ErrRetryLater = errors.New("transient failure, retry on a later cycle")

// Extractor is the injected AI boundary.
type Extractor interface {
	Extract(ctx context.Context, dt document.Type, fileRef string) (json.RawMessage, error)
}

type Config struct {
	LeaseTTL     time.Duration
	WriteRetries int // non-lease storage write attempts while the lease is held
}

// Coordinator orchestrates claim -> extract -> validate -> commit for one
// file event as a crash-safe unit.
type Coordinator struct {
	ledger    ledger.Repository
	uow       uow.UnitOfWork
	extractor Extractor
	notifier  notify.Notifier
	cfg       Config
}

func NewCoordinator(lr ledger.Repository, tx uow.UnitOfWork, ex Extractor, n notify.Notifier, cfg Config) *Coordinator {
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 5 * time.Minute
	}
	if cfg.WriteRetries <= 0 {
		cfg.WriteRetries = 3
	}
	return &Coordinator{ledger: lr, uow: tx, extractor: ex, notifier: n, cfg: cfg}
}

// ProcessFile handles one file event end to end. AlreadyProcessed and
// AlreadyLeased are idempotent no-ops. ErrRetryLater means the event should
// be requeued; any other error is operational and needs out-of-band alerting.
func (c *Coordinator) ProcessFile(ctx context.Context, ev document.FileEvent) error {
	if !ev.DocumentType.Valid() {
		return fmt.Errorf("file event %q: unknown document type %q", ev.Filename, ev.DocumentType)
	}

	owner := id.NewID32()
	status, err := c.ledger.TryClaim(ctx, ev.DocumentType, ev.Filename, owner, c.cfg.LeaseTTL)
	if err != nil {
		return fmt.Errorf("claim %s/%s: %w", ev.DocumentType, ev.Filename, err)
	}
	if status != ledger.Claimed {
		log.Printf("pipeline: skip %s/%s (%s)", ev.DocumentType, ev.Filename, status)
		return nil
	}

	raw, err := c.extractor.Extract(ctx, ev.DocumentType, ev.FileReference)
	if err != nil {
		var transient *extraction.TransientError
		if errors.As(err, &transient) {
			if rerr := c.ledger.Release(ctx, ev.DocumentType, ev.Filename, owner); rerr != nil {
				log.Printf("pipeline: release %s/%s: %v", ev.DocumentType, ev.Filename, rerr)
			}
			return ErrRetryLater
		}
		var permanent *extraction.PermanentError
		if errors.As(err, &permanent) {
			// Skip validation: the provider already gave a definitive reason.
			return c.commitInvalid(ctx, ev, owner, permanent.Reason)
		}
		_ = c.ledger.Release(ctx, ev.DocumentType, ev.Filename, owner)
		return fmt.Errorf("extract %s/%s: %w", ev.DocumentType, ev.Filename, err)
	}

	res, err := extraction.Validate(ev.DocumentType, raw)
	if err != nil {
		var rejection *extraction.RejectionError
		if errors.As(err, &rejection) {
			return c.commitInvalid(ctx, ev, owner, rejection.Reason)
		}
		return c.commitInvalid(ctx, ev, owner, err.Error())
	}

	return c.commitValid(ctx, ev, owner, res)
}

// commitValid inserts the aggregate and marks the ledger valid in one
// transaction. Losing the lease rolls back the aggregate insert entirely so
// the winning owner's result stays the only one.
func (c *Coordinator) commitValid(ctx context.Context, ev document.FileEvent, owner string, res *extraction.Result) error {
	agg := buildAggregate(ev, res)
	err := c.withWriteRetries(ctx, ev, owner, func() error {
		return c.uow.WithinTx(ctx, func(r uow.Repos) error {
			if err := r.Aggregates.Create(ctx, agg); err != nil {
				return err
			}
			return r.Ledger.Commit(ctx, ev.DocumentType, ev.Filename, owner, true, "")
		})
	})
	if errors.Is(err, ledger.ErrLeaseExpired) {
		log.Printf("pipeline: lost lease on %s/%s, discarding result", ev.DocumentType, ev.Filename)
		return nil
	}
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		log.Printf("pipeline: %s/%s: %s", ev.DocumentType, ev.Filename, w)
	}
	c.publish(ctx, notify.PendingApproval(ev.DocumentType, agg.AggregateID))
	return nil
}

// commitInvalid upserts the invalid-document record and marks the ledger
// invalid in one transaction.
func (c *Coordinator) commitInvalid(ctx context.Context, ev document.FileEvent, owner, reason string) error {
	err := c.withWriteRetries(ctx, ev, owner, func() error {
		return c.uow.WithinTx(ctx, func(r uow.Repos) error {
			rec := &invaliddoc.Record{
				RecordID:     id.NewID32(),
				DocumentType: ev.DocumentType,
				Filename:     ev.Filename,
				Message:      reason,
			}
			if err := r.InvalidDocs.Upsert(ctx, rec); err != nil {
				return err
			}
			return r.Ledger.Commit(ctx, ev.DocumentType, ev.Filename, owner, false, reason)
		})
	})
	if errors.Is(err, ledger.ErrLeaseExpired) {
		log.Printf("pipeline: lost lease on %s/%s, discarding rejection", ev.DocumentType, ev.Filename)
		return nil
	}
	if err != nil {
		return err
	}

	c.publish(ctx, notify.NewInvalidDocument(ev.DocumentType, ev.Filename, reason))
	return nil
}

// withWriteRetries retries non-lease storage failures while the lease is
// still held (the lease TTL must exceed the retry window). Exhausting the
// budget releases the lease and escalates.
func (c *Coordinator) withWriteRetries(ctx context.Context, ev document.FileEvent, owner string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= c.cfg.WriteRetries; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, ledger.ErrLeaseExpired) {
			return err
		}
		log.Printf("pipeline: write attempt %d/%d for %s/%s failed: %v",
			attempt, c.cfg.WriteRetries, ev.DocumentType, ev.Filename, err)
	}
	_ = c.ledger.Release(ctx, ev.DocumentType, ev.Filename, owner)
	return fmt.Errorf("persistence failed for %s/%s after %d attempts: %w",
		ev.DocumentType, ev.Filename, c.cfg.WriteRetries, err)
}

// publish is best-effort at-least-once: delivery failures are logged, never
// fail the pipeline (the record is already committed).
func (c *Coordinator) publish(ctx context.Context, ev notify.Event) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Publish(ctx, ev); err != nil {
		log.Printf("pipeline: notify %s: %v", ev.Kind, err)
	}
}

func buildAggregate(ev document.FileEvent, res *extraction.Result) *aggregate.Aggregate {
	agg := &aggregate.Aggregate{
		AggregateID:     id.NewID32(),
		DocumentType:    ev.DocumentType,
		Filename:        ev.Filename,
		DocumentNumber:  res.Header.DocumentNumber,
		CounterpartyRef: res.Header.CounterpartyRef,
		IssueDate:       res.Header.IssueDate,
		DueDate:         res.Header.DueDate,
		Currency:        res.Header.Currency,
		NetTotal:        res.Header.NetTotal,
		VATTotal:        res.Header.VATTotal,
		GrossTotal:      res.Header.GrossTotal,
		Notes:           res.Header.Notes,
	}
	for _, it := range res.Items {
		agg.Items = append(agg.Items, aggregate.LineItem{
			OrderNumber:   it.OrderNumber,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			NetSubtotal:   it.NetSubtotal,
			VATAmount:     it.VATAmount,
			GrossSubtotal: it.GrossSubtotal,
		})
	}
	return agg
}
