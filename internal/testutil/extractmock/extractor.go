package extractmock

import (
	"context"
	"encoding/json"
	"errors"

	"findoc-pipeline/internal/domain/document"
)

// Extractor is a function-backed mock for the pipeline's AI boundary.
type Extractor struct {
	ExtractFn func(ctx context.Context, dt document.Type, fileRef string) (json.RawMessage, error)
}

func (m *Extractor) Extract(ctx context.Context, dt document.Type, fileRef string) (json.RawMessage, error) {
	if m.ExtractFn != nil {
		return m.ExtractFn(ctx, dt, fileRef)
	}
	return nil, errors.New("extractmock: ExtractFn not set")
}
