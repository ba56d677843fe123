package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

type stubScorer struct {
	proximity     domain.ProximityScore
	reputation    *domain.ReputationScore
	support       domain.LoanSocialSupport
	lastFIDs      [2]int64
	lastAddresses []string
	lastDetail    bool
}

func (s *stubScorer) ComputeProximity(_ context.Context, borrowerID, viewerID int64, _, _ *float64) domain.ProximityScore {
	s.lastFIDs = [2]int64{borrowerID, viewerID}
	return s.proximity
}

func (s *stubScorer) ComputeProximityByAddress(_ context.Context, borrower, viewer string) (domain.ProximityScore, error) {
	s.lastAddresses = []string{borrower, viewer}
	return s.proximity, nil
}

func (s *stubScorer) ComputeReputation(_ context.Context, address string) *domain.ReputationScore {
	s.lastAddresses = []string{address}
	return s.reputation
}

func (s *stubScorer) ComputeLoanSupport(_ context.Context, borrower string, lenders []string, includeDetail bool) domain.LoanSocialSupport {
	s.lastAddresses = append([]string{borrower}, lenders...)
	s.lastDetail = includeDetail
	return s.support
}

type stubHealth struct{ err error }

func (s stubHealth) Probe(context.Context) error { return s.err }

func newTestRouter(scorer *stubScorer, health HealthService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, RouterDependencies{
		Health: health,
		API:    NewAPIHandlers(logger, scorer),
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleProximityByAddress(t *testing.T) {
	scorer := &stubScorer{proximity: domain.ProximityScore{
		BorrowerID:            1,
		ViewerID:              2,
		MutualCount:           20,
		EffectiveMutualWeight: 3.57868,
		SocialDistance:        20,
		RiskTier:              domain.RiskMedium,
		QualityTier:           domain.QualityHigh,
	}}
	router := newTestRouter(scorer, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/proximity?borrower=0xB&viewer=0xV", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", rec.Header().Get(requestIDHeader))
	}
	var payload proximityResponse
	decodeBody(t, rec, &payload)
	if payload.MutualCount != 20 || payload.EffectiveMutualWeight != 3.58 || payload.RiskTier != "MEDIUM" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if scorer.lastAddresses[0] != "0xB" || scorer.lastAddresses[1] != "0xV" {
		t.Fatalf("unexpected addresses forwarded %v", scorer.lastAddresses)
	}
}

func TestHandleProximityRequiresBothAddresses(t *testing.T) {
	router := newTestRouter(&stubScorer{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/proximity?borrower=0xB", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestHandleProximityByFID(t *testing.T) {
	scorer := &stubScorer{proximity: domain.NoConnection(10, 20)}
	router := newTestRouter(scorer, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/proximity/fid/10/20", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if scorer.lastFIDs != [2]int64{10, 20} {
		t.Fatalf("unexpected fids forwarded %v", scorer.lastFIDs)
	}
	var payload proximityResponse
	decodeBody(t, rec, &payload)
	if payload.RiskTier != "HIGH" || payload.QualityTier != "LOW" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/proximity/fid/abc/20", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a non-numeric fid, got %d", rec.Code)
	}
}

func TestHandleReputation(t *testing.T) {
	scorer := &stubScorer{reputation: &domain.ReputationScore{
		Address:          "0xabc",
		FID:              42,
		HasSocialProfile: true,
		Overall:          77,
		SocialComponent:  45,
		WalletComponent:  32,
		Breakdown:        map[string]float64{domain.FactorPowerBadge: 24},
	}}
	router := newTestRouter(scorer, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reputation/0xABC", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var payload reputationResponse
	decodeBody(t, rec, &payload)
	if payload.Overall != 77 || payload.FID != 42 || payload.Breakdown[domain.FactorPowerBadge] != 24 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestHandleLoanSupport(t *testing.T) {
	scorer := &stubScorer{support: domain.LoanSocialSupport{
		BorrowerAddress:          "0xb",
		TotalLenders:             2,
		ConnectedLenderCount:     1,
		AverageMutualConnections: 4.5,
		PercentConnected:         50,
		SupportTier:              domain.SupportModerate,
		PerLenderDetail: []domain.LenderConnection{
			{Address: "0xl1", MutualConnections: 9, IsConnected: true},
			{Address: "0xl2"},
		},
	}}
	router := newTestRouter(scorer, nil)

	body := `{"borrowerAddress":"0xb","lenderAddresses":["0xl1","0xl2"],"includeDetail":true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/loans/support", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !scorer.lastDetail || len(scorer.lastAddresses) != 3 {
		t.Fatalf("unexpected forwarding detail=%v addresses=%v", scorer.lastDetail, scorer.lastAddresses)
	}
	var payload loanSupportResponse
	decodeBody(t, rec, &payload)
	if payload.SupportTier != "MODERATE" || payload.PercentConnected != 50 || len(payload.PerLenderDetail) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !payload.PerLenderDetail[0].IsConnected {
		t.Fatalf("expected first lender to be connected, got %+v", payload.PerLenderDetail[0])
	}
}

func TestHandleLoanSupportRejectsBadRequests(t *testing.T) {
	router := newTestRouter(&stubScorer{}, nil)
	cases := map[string]string{
		"unknown field":    `{"borrowerAddress":"0xb","lenders":[]}`,
		"missing borrower": `{"lenderAddresses":["0xl1"]}`,
		"malformed":        `{"borrowerAddress":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/loans/support", bytes.NewBufferString(body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(&stubScorer{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/loans/support", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubScorer{}, stubHealth{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newTestRouter(&stubScorer{}, stubHealth{err: errors.New("neo4j unreachable")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["status"] != "degraded" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestCORSPreflight(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, RouterDependencies{AllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/v1/loans/support", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("expected allowed preflight, got %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodOptions, "/v1/loans/support", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected rejected preflight, got %d", rec.Code)
	}
}
