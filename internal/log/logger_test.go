package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func bufferLogger(component string) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, nil),
	})
	return logger, buf
}

func TestNewCarriesComponent(t *testing.T) {
	logger, buf := bufferLogger(ComponentHTTP)

	logger.Info("hello")
	if out := buf.String(); !strings.Contains(out, "component=http") {
		t.Fatalf("missing component attr: %q", out)
	}
	if logger.Component() != ComponentHTTP {
		t.Fatalf("component: %q", logger.Component())
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := bufferLogger(ComponentApp)

	logger.WithComponent(ComponentWorker).Info("tick")
	if out := buf.String(); !strings.Contains(out, "component=worker") {
		t.Fatalf("missing rebased component: %q", out)
	}
}

func TestWithKeepsComponent(t *testing.T) {
	logger, buf := bufferLogger(ComponentRecord)

	logger.With(FieldRecordID, "abc").Info("saved")
	out := buf.String()
	if !strings.Contains(out, "component=record") || !strings.Contains(out, "record_id=abc") {
		t.Fatalf("got %q", out)
	}
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Logger == nil {
		t.Fatalf("expected a usable fallback logger")
	}
	if logger.Component() != "unknown" {
		t.Fatalf("component: %q", logger.Component())
	}
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	logger, _ := bufferLogger(ComponentHTTP)

	var seen *Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != logger {
		t.Fatalf("expected the injected logger, got %+v", seen)
	}
}

func TestStructuredLoggerHTTPLifecycle(t *testing.T) {
	logger, buf := bufferLogger(ComponentHTTP)
	sl := NewStructuredLogger(logger)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/api/stats?kind=annually", nil)
	sl.LogHTTPStart(ctx, req, "10.0.0.1", "req_1")
	sl.LogHTTPEnd(ctx, req, http.StatusInternalServerError, 12, "10.0.0.1", "req_1")

	out := buf.String()
	for _, want := range []string{
		"request started", "request completed",
		"request_id=req_1", "client_ip=10.0.0.1",
		"path=/api/stats", "status_code=500",
		"level=ERROR",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestLogRecordCreated(t *testing.T) {
	logger, buf := bufferLogger(ComponentHTTP)
	sl := NewStructuredLogger(logger)

	sl.LogRecordCreated(context.Background(), "id-1", "2025/01", "Acme", 2.5)
	out := buf.String()
	for _, want := range []string{"record_id=id-1", "month=2025/01", "deal_name=Acme", "hours=2.5", "operation=create"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
