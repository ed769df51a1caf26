package http

import (
	"regexp"

	"findoc-pipeline/internal/domain/document"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var reReviewerID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// reviewer ids come from the external auth layer; accept its token shape
	_ = v.RegisterValidation("reviewerid", func(fl validator.FieldLevel) bool {
		return reReviewerID.MatchString(fl.Field().String())
	})
	// one of the known document-type codes
	_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		return document.Type(fl.Field().String()).Valid()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "reviewerid":
			out = append(out, FieldError{Field: field, Message: "must be a valid reviewer id"})
		case "doctype":
			out = append(out, FieldError{Field: field, Message: "must be one of kuf, kif, ugovor, izvod"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of: " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
