package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"
)

const healthProbeTimeout = 2 * time.Second

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a plain function to HealthService.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Probe(ctx context.Context) error { return f(ctx) }

// Checks probes every named dependency concurrently. Failures are reported
// by name, sorted, so the payload is stable across calls.
type Checks map[string]HealthService

func (c Checks) Probe(ctx context.Context) error {
	var (
		wg     sync.WaitGroup
		failed []error
	)
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, check HealthService) {
			defer wg.Done()
			results[i] = check.Probe(ctx)
		}(i, c[name])
	}
	wg.Wait()

	for i, err := range results {
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", names[i], err))
		}
	}
	return errors.Join(failed...)
}

func healthHandler(logger *slog.Logger, health HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{"status": "ok"}
		if health != nil {
			if err := health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}
		respondJSON(w, status, payload)
	}
}
