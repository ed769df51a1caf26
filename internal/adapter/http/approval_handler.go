package http

import (
	"errors"
	"net/http"

	domainAggregate "findoc-pipeline/internal/domain/aggregate"
	ucApproval "findoc-pipeline/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *ucApproval.Usecase }

func NewApprovalHandler(uc *ucApproval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type rejectAggregateReq struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *ApprovalHandler) ApproveAggregate(c echo.Context) error {
	aggregateID := c.Param("aggregate_id")
	if aggregateID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing aggregate_id path param"})
	}
	reviewer := reviewerFrom(c)
	if reviewer == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Reviewer-Id"})
	}

	dto, err := h.uc.Approve(c.Request().Context(), ucApproval.ApproveInput{
		AggregateID: aggregateID,
		ReviewerID:  reviewer,
	})
	if err != nil {
		return approvalError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) RejectAggregate(c echo.Context) error {
	aggregateID := c.Param("aggregate_id")
	if aggregateID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing aggregate_id path param"})
	}
	reviewer := reviewerFrom(c)
	if reviewer == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Reviewer-Id"})
	}

	var req rejectAggregateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Reject(c.Request().Context(), ucApproval.RejectInput{
		AggregateID: aggregateID,
		ReviewerID:  reviewer,
		Reason:      req.Reason,
	})
	if err != nil {
		return approvalError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) GetAggregate(c echo.Context) error {
	aggregateID := c.Param("aggregate_id")
	if aggregateID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing aggregate_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), aggregateID)
	if err != nil {
		return approvalError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// approvalError maps domain errors to HTTP codes.
func approvalError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domainAggregate.ErrApprovalStateViolation):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainAggregate.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "aggregate not found"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
