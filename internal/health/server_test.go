package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"aesthetic_doctor_bot/internal/instrument"
)

type stubStoreChecker struct {
	err error
}

func (s stubStoreChecker) Ping(context.Context) error {
	return s.err
}

func serve(t *testing.T, server *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthHandlerOK(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	server := NewServer(0, stubStoreChecker{err: nil}, logrus.NewEntry(logger))

	rr := serve(t, server, http.MethodGet, "/healthz")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}

	body := strings.TrimSpace(rr.Body.String())
	if body != `{"status":"ok"}` {
		t.Fatalf("unexpected body: %s", body)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}
}

func TestHealthHandlerStoreError(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	server := NewServer(0, stubStoreChecker{err: errors.New("store down")}, logrus.NewEntry(logger))

	rr := serve(t, server, http.MethodGet, "/healthz")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}

	body := strings.TrimSpace(rr.Body.String())
	if body != `{"status":"degraded","store":"error"}` {
		t.Fatalf("unexpected body: %s", body)
	}

	if entry := hook.LastEntry(); entry == nil || entry.Data["event"] != "health_store_error" {
		t.Fatalf("expected health_store_error log entry, got %+v", entry)
	}
}

func TestHealthHandlerMissingStoreChecker(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	server := NewServer(0, nil, logrus.NewEntry(logger))

	rr := serve(t, server, http.MethodGet, "/healthz")

	body := strings.TrimSpace(rr.Body.String())
	if body != `{"status":"degraded","store":"error"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestMetricsEndpointExposesCollectors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	server := NewServer(0, stubStoreChecker{}, logrus.NewEntry(logger))

	instrument.CommandsHandled.WithLabelValues("ping").Inc()

	rr := serve(t, server, http.MethodGet, "/metrics")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "aesthetic_doctor_bot_commands_total") {
		t.Fatalf("expected commands counter in exposition")
	}
}

func TestHealthRejectsOtherMethods(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	server := NewServer(0, stubStoreChecker{}, logrus.NewEntry(logger))

	rr := serve(t, server, http.MethodPost, "/healthz")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected HTTP 405, got %d", rr.Code)
	}
}
