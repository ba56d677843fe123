package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChecksReportFailuresByName(t *testing.T) {
	checks := Checks{
		"graph": ProbeFunc(func(context.Context) error { return errors.New("bolt refused") }),
		"cache": ProbeFunc(func(context.Context) error { return nil }),
		"chain": ProbeFunc(func(context.Context) error { return errors.New("node behind") }),
	}

	err := checks.Probe(context.Background())
	if err == nil {
		t.Fatal("expected an error from failing checks")
	}
	msg := err.Error()
	if msg != "chain: node behind\ngraph: bolt refused" {
		t.Fatalf("unexpected error %q", msg)
	}
	if strings.Contains(msg, "cache") {
		t.Fatalf("healthy check reported as failed: %q", msg)
	}
}

func TestChecksEmptyIsHealthy(t *testing.T) {
	if err := (Checks{}).Probe(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestHealthzReportsCheckNames(t *testing.T) {
	health := Checks{"graph": ProbeFunc(func(context.Context) error { return errors.New("down") })}
	rec := httptest.NewRecorder()
	newTestRouter(&stubScorer{}, health).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["error"] != "graph: down" {
		t.Fatalf("unexpected payload %v", payload)
	}
}
