package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"findoc-pipeline/internal/domain/document"
	"findoc-pipeline/internal/usecase/extraction"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultMaxRetries     = 2
	defaultInitialBackoff = 1 * time.Second
)

// Client wraps the external extraction service: one JSON-over-HTTP call per
// file, a per-attempt timeout, and a bounded retry budget applied only to
// transient failures.
type Client struct {
	endpoint         string
	apiKey           string
	promptTemplateID string
	maxRetries       int
	initialBackoff   time.Duration
	httpClient       *http.Client
}

type Config struct {
	Endpoint         string
	APIKey           string
	PromptTemplateID string
	Timeout          time.Duration
	MaxRetries       int
	InitialBackoff   time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	return &Client{
		endpoint:         cfg.Endpoint,
		apiKey:           cfg.APIKey,
		promptTemplateID: cfg.PromptTemplateID,
		maxRetries:       cfg.MaxRetries,
		initialBackoff:   cfg.InitialBackoff,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
	}
}

type extractRequest struct {
	DocumentType     string `json:"document_type"`
	FileReference    string `json:"file_reference"`
	PromptTemplateID string `json:"prompt_template_id"`
}

// Extract calls the extraction service and returns the raw JSON response.
// Transient conditions (network errors, timeouts, 429, 5xx, non-JSON bodies)
// are retried with exponential backoff up to the budget, then surfaced as
// extraction.TransientError. Definitive provider failures and responses
// missing the discriminant flag come back as extraction.PermanentError and
// are never retried.
func (c *Client) Extract(ctx context.Context, dt document.Type, fileRef string) (json.RawMessage, error) {
	payload, err := json.Marshal(extractRequest{
		DocumentType:     string(dt),
		FileReference:    fileRef,
		PromptTemplateID: c.promptTemplateID,
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	backoff := c.initialBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &extraction.TransientError{Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		raw, err := c.doRequest(ctx, payload, dt)
		if err == nil {
			return raw, nil
		}
		if _, transient := err.(*extraction.TransientError); !transient {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, payload []byte, dt document.Type) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &extraction.TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &extraction.TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &extraction.TransientError{Err: fmt.Errorf("extraction service returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &extraction.PermanentError{
			Reason: fmt.Sprintf("extraction service returned %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}

	// Responses must be a bare JSON object with no surrounding text.
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &extraction.TransientError{Err: fmt.Errorf("response body is not a JSON object: %w", err)}
	}

	// Provider-reported definitive failure: no point retrying.
	if raw, ok := doc["error"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		if msg == "" {
			msg = string(raw)
		}
		return nil, &extraction.PermanentError{Reason: msg}
	}

	if _, ok := doc[dt.Discriminant()]; !ok {
		return nil, &extraction.PermanentError{
			Reason: fmt.Sprintf("response missing %s flag", dt.Discriminant()),
		}
	}

	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
