package approval

import (
	"context"
	"time"

	domainAggregate "findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/uow"
)

// Usecase is the approval gate: a two-way terminal state machine over
// already-persisted aggregates. Pending -> Approved or Pending -> Rejected,
// never out of a terminal state.
type Usecase struct {
	aggRepo domainAggregate.Repository
	uow     uow.UnitOfWork
}

func NewUsecase(aggs domainAggregate.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{aggRepo: aggs, uow: tx}
}

// Approve sets the approval pair (ApprovedAt, ApprovedBy) atomically.
// ErrApprovalStateViolation when the aggregate is already terminal.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*AggregateDTO, error) {
	var dto *AggregateDTO
	err := u.uow.WithinAggregateTx(ctx, in.AggregateID, func(r uow.Repos, a *domainAggregate.Aggregate) error {
		if a.Terminal() {
			return domainAggregate.ErrApprovalStateViolation
		}
		now := time.Now().UTC()
		reviewer := in.ReviewerID
		a.ApprovedAt = &now
		a.ApprovedBy = &reviewer
		if err := r.Aggregates.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Reject marks the aggregate terminally rejected. Distinct from the
// invalid-document path: a rejected aggregate was structurally valid, a
// human just refused it.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*AggregateDTO, error) {
	var dto *AggregateDTO
	err := u.uow.WithinAggregateTx(ctx, in.AggregateID, func(r uow.Repos, a *domainAggregate.Aggregate) error {
		if a.Terminal() {
			return domainAggregate.ErrApprovalStateViolation
		}
		now := time.Now().UTC()
		reviewer := in.ReviewerID
		a.RejectedAt = &now
		a.RejectedBy = &reviewer
		a.RejectReason = in.Reason
		if err := r.Aggregates.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, aggregateID string) (*AggregateDTO, error) {
	a, err := u.aggRepo.GetByAggregateID(ctx, aggregateID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func toDTO(a *domainAggregate.Aggregate) *AggregateDTO {
	status := "pending"
	switch {
	case a.ApprovedAt != nil:
		status = "approved"
	case a.RejectedAt != nil:
		status = "rejected"
	}
	dto := &AggregateDTO{
		AggregateID:     a.AggregateID,
		DocumentType:    string(a.DocumentType),
		Filename:        a.Filename,
		DocumentNumber:  a.DocumentNumber,
		CounterpartyRef: a.CounterpartyRef,
		IssueDate:       dateString(a.IssueDate),
		DueDate:         dateString(a.DueDate),
		Currency:        a.Currency,
		NetTotal:        a.NetTotal.StringFixed(2),
		VATTotal:        a.VATTotal.StringFixed(2),
		GrossTotal:      a.GrossTotal.StringFixed(2),
		Status:          status,
		ApprovedAt:      a.ApprovedAt,
		ApprovedBy:      a.ApprovedBy,
		RejectedAt:      a.RejectedAt,
		RejectedBy:      a.RejectedBy,
		RejectReason:    a.RejectReason,
		CreatedAt:       a.CreatedAt,
	}
	for _, it := range a.Items {
		item := LineItemDTO{
			OrderNumber:   it.OrderNumber,
			Description:   it.Description,
			NetSubtotal:   it.NetSubtotal.StringFixed(2),
			VATAmount:     it.VATAmount.StringFixed(2),
			GrossSubtotal: it.GrossSubtotal.StringFixed(2),
		}
		if it.Quantity != nil {
			q := it.Quantity.String()
			item.Quantity = &q
		}
		if it.UnitPrice != nil {
			p := it.UnitPrice.StringFixed(2)
			item.UnitPrice = &p
		}
		dto.Items = append(dto.Items, item)
	}
	return dto
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
