package http

import (
	"errors"
	"net/http"

	domainInvalidDoc "findoc-pipeline/internal/domain/invaliddoc"
	ucReview "findoc-pipeline/internal/usecase/invalidreview"

	"github.com/labstack/echo/v4"
)

type InvalidDocHandler struct{ uc *ucReview.Usecase }

func NewInvalidDocHandler(uc *ucReview.Usecase) *InvalidDocHandler {
	return &InvalidDocHandler{uc: uc}
}

type listInvalidDocsReq struct {
	Type  string `query:"type"  validate:"omitempty,doctype"`
	Page  int    `query:"page"  validate:"omitempty,gte=1"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (h *InvalidDocHandler) ListInvalidDocuments(c echo.Context) error {
	var req listInvalidDocsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query params"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.List(c.Request().Context(), ucReview.ListInput{
		DocumentType: req.Type,
		Page:         req.Page,
		Limit:        req.Limit,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, dto)
}

type reviewInvalidDocReq struct {
	Action string `json:"action" validate:"required,oneof=dismiss reflag"`
}

func (h *InvalidDocHandler) ReviewInvalidDocument(c echo.Context) error {
	recordID := c.Param("record_id")
	if recordID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing record_id path param"})
	}
	reviewer := reviewerFrom(c)
	if reviewer == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Reviewer-Id"})
	}

	var req reviewInvalidDocReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Review(c.Request().Context(), ucReview.ReviewInput{
		RecordID:   recordID,
		ReviewerID: reviewer,
		Action:     req.Action,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, dto)
	case errors.Is(err, domainInvalidDoc.ErrAlreadyReviewed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainInvalidDoc.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid-document record not found"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
