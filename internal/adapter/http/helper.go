package http

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

// reviewerFrom extracts the reviewer identity the external auth layer put on
// the request. Empty string means the header is missing or malformed.
func reviewerFrom(c echo.Context) string {
	id := strings.TrimSpace(c.Request().Header.Get("Ax-Reviewer-Id"))
	if !reReviewerID.MatchString(id) {
		return ""
	}
	return id
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
