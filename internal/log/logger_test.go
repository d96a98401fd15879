package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})

	logger.Info("loaded", FieldRecords, 3)
	logger.WithComponent(ComponentHTTP).Debug("request")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "records=3") {
		t.Errorf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=http") {
		t.Errorf("WithComponent not applied: %q", out)
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})

	var got *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected request logger in context")
	}
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %q", buf.String())
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Errorf("expected fallback logger")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	r := httptest.NewRequest(http.MethodPost, "/expenses?x=1", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusUnprocessableEntity, 12, "10.0.0.1")
	sl.LogExpenseRecorded(context.Background(), "2024-01-01", "Food", "12.5", 4)
	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpAppend)

	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=422", "position=4", "amount=12.5", "level=ERROR", `error="disk full"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}
