package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestReviewerFrom(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"plain id", "42", "42"},
		{"token shape", "rev_A.b-1", "rev_A.b-1"},
		{"trims spaces", "  42  ", "42"},
		{"missing", "", ""},
		{"illegal chars", "rev 42", ""},
		{"too long", strings.Repeat("a", 65), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Ax-Reviewer-Id", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			if got := reviewerFrom(c); got != tt.want {
				t.Errorf("reviewerFrom(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestCustomValidator_Doctype(t *testing.T) {
	cv := NewValidator()
	type req struct {
		Type string `validate:"omitempty,doctype"`
	}
	if err := cv.Validate(&req{Type: "izvod"}); err != nil {
		t.Errorf("izvod should pass: %v", err)
	}
	if err := cv.Validate(&req{Type: ""}); err != nil {
		t.Errorf("empty should pass omitempty: %v", err)
	}
	if err := cv.Validate(&req{Type: "memo"}); err == nil {
		t.Error("memo should fail")
	}
}

func TestCustomValidator_ReviewerID(t *testing.T) {
	cv := NewValidator()
	type req struct {
		Reviewer string `validate:"reviewerid"`
	}
	if err := cv.Validate(&req{Reviewer: "42"}); err != nil {
		t.Errorf("42 should pass: %v", err)
	}
	if err := cv.Validate(&req{Reviewer: "bad id"}); err == nil {
		t.Error("spaces should fail")
	}
}

func TestToFieldErrors_Messages(t *testing.T) {
	cv := NewValidator()
	type req struct {
		Reason string `validate:"required,max=1000"`
		Page   int    `validate:"omitempty,gte=1"`
	}
	err := cv.Validate(&req{Page: -1})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	out := ToFieldErrors(err)
	if !containsFieldMsg(out, "Reason", "required") {
		t.Errorf("missing required message: %+v", out)
	}
	if !containsFieldMsg(out, "Page", "greater than or equal to 1") {
		t.Errorf("missing gte message: %+v", out)
	}
}
