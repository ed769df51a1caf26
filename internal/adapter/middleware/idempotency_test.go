package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// helper: new Echo with the middleware and the approval routes
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(IdempotencyMiddleware(rdb, ttl))
	e.POST("/aggregates/:aggregate_id/approve", handler)
	e.GET("/aggregates/:aggregate_id", handler) // for non-mutating bypass test
	return e
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

// simple handler to exercise respRecorder capture & saveFinal
func approvedHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "approved"})
}

func validHeaders() map[string]string {
	return map[string]string{
		"Ax-Request-Id":  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", // 32-hex
		"Ax-Request-At":  time.Now().UTC().Format(time.RFC3339),
		"Ax-Reviewer-Id": "reviewer-42",
	}
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/aggregates/agg-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, approvedHandler)

	tests := []struct {
		name   string
		mutate func(h map[string]string)
	}{
		{"missing Ax-Request-Id", func(h map[string]string) { delete(h, "Ax-Request-Id") }},
		{"invalid Ax-Request-Id", func(h map[string]string) { h["Ax-Request-Id"] = "NOT-VALID" }},
		{"invalid Ax-Request-At", func(h map[string]string) { h["Ax-Request-At"] = "not-a-time" }},
		{"skewed Ax-Request-At", func(h map[string]string) {
			h["Ax-Request-At"] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"missing Ax-Reviewer-Id", func(h map[string]string) { delete(h, "Ax-Reviewer-Id") }},
		{"invalid Ax-Reviewer-Id", func(h map[string]string) { h["Ax-Reviewer-Id"] = "has spaces" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeaders()
			tt.mutate(h)
			rec := doReq(t, e, http.MethodPost, "/aggregates/agg-1/approve", bytes.NewReader([]byte(`{}`)), h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, approvedHandler)

	h := validHeaders()

	// First request -> goes through handler
	rec1 := doReq(t, e, http.MethodPost, "/aggregates/agg-1/approve", bytes.NewReader([]byte(`{}`)), h)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request => want 200, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Second request with SAME headers & body -> replay stored response
	rec2 := doReq(t, e, http.MethodPost, "/aggregates/agg-1/approve", bytes.NewReader([]byte(`{}`)), h)
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay => want 200, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, approvedHandler)

	method := http.MethodPost
	path := "/aggregates/:aggregate_id/approve"
	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	reviewerID := "reviewer-42"
	body := []byte(`{}`)

	// Seed a provisional "in-progress" entry so SetNX fails and loadEntry
	// sees InProgress=true.
	key := buildKey(method, path, reviewerID, reqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	h := validHeaders()
	rec := doReq(t, e, method, "/aggregates/agg-1/approve", bytes.NewReader(body), h)

	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, approvedHandler)

	method := http.MethodPost
	path := "/aggregates/:aggregate_id/approve"
	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	reviewerID := "reviewer-42"

	body1 := []byte(`{"note":"first"}`)
	body2 := []byte(`{"note":"second"}`)

	// Seed a FINAL entry hashed from body1 so the middleware detects the
	// reused request id arriving with a different body.
	key := buildKey(method, path, reviewerID, reqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusOK,
		Body:        []byte(`{"status":"approved"}`),
		BodySHA256:  bodyHash(body1),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	h := validHeaders()
	rec := doReq(t, e, method, "/aggregates/agg-1/approve", bytes.NewReader(body2), h)

	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// Client pointing at a closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, approvedHandler)

	rec := doReq(t, e, http.MethodPost, "/aggregates/agg-1/approve", bytes.NewReader([]byte(`{}`)), validHeaders())

	if rec.Code != http.StatusServiceUnavailable && rec.Code != http.StatusBadGateway {
		t.Fatalf("store unavailable => want 503-ish, got %d", rec.Code)
	}
}
