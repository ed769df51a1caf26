package invalidreview

import (
	"context"
	"errors"
	"time"

	"findoc-pipeline/internal/domain/document"
	"findoc-pipeline/internal/domain/invaliddoc"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Usecase is the small review workflow over invalid-document records:
// Unreviewed -> Reviewed, nothing ever becomes a financial record here.
type Usecase struct {
	repo invaliddoc.Repository
}

func NewUsecase(r invaliddoc.Repository) *Usecase { return &Usecase{repo: r} }

type ListInput struct {
	DocumentType string
	Page         int
	Limit        int
}

type RecordDTO struct {
	RecordID     string     `json:"record_id"`
	DocumentType string     `json:"document_type"`
	Filename     string     `json:"filename"`
	Message      string     `json:"message"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy   *string    `json:"reviewed_by,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ListDTO struct {
	Records []RecordDTO `json:"records"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// List returns unresolved extraction failures, newest first.
func (u *Usecase) List(ctx context.Context, in ListInput) (*ListDTO, error) {
	var dt document.Type
	if in.DocumentType != "" {
		parsed, err := document.ParseType(in.DocumentType)
		if err != nil {
			return nil, err
		}
		dt = parsed
	}
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	recs, total, err := u.repo.List(ctx, dt, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	out := &ListDTO{Records: make([]RecordDTO, 0, len(recs)), Total: total, Page: page, Limit: limit}
	for i := range recs {
		out.Records = append(out.Records, toDTO(&recs[i]))
	}
	return out, nil
}

type ReviewInput struct {
	RecordID   string
	ReviewerID string
	Action     string // dismiss | reflag
}

// Review closes one record. Dismiss acknowledges the failure; reflag marks
// it for re-submission through an out-of-band channel. Both are terminal.
func (u *Usecase) Review(ctx context.Context, in ReviewInput) (*RecordDTO, error) {
	var res invaliddoc.Resolution
	switch in.Action {
	case "dismiss":
		res = invaliddoc.ResolutionDismissed
	case "reflag":
		res = invaliddoc.ResolutionReflagged
	default:
		return nil, errors.New("action must be dismiss or reflag")
	}

	if err := u.repo.MarkReviewed(ctx, in.RecordID, in.ReviewerID, res, time.Now().UTC()); err != nil {
		return nil, err
	}
	rec, err := u.repo.GetByRecordID(ctx, in.RecordID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(rec)
	return &dto, nil
}

func toDTO(r *invaliddoc.Record) RecordDTO {
	return RecordDTO{
		RecordID:     r.RecordID,
		DocumentType: string(r.DocumentType),
		Filename:     r.Filename,
		Message:      r.Message,
		ReviewedAt:   r.ReviewedAt,
		ReviewedBy:   r.ReviewedBy,
		Resolution:   string(r.Resolution),
		CreatedAt:    r.CreatedAt,
	}
}
