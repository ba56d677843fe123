package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/service"
)

const (
	maxRequestBytes = 1 << 20
	maxLenders      = 1000
)

// Scorer is the scoring surface the API exposes.
type Scorer interface {
	ComputeProximity(ctx context.Context, borrowerID, viewerID int64, borrowerQuality, viewerQuality *float64) domain.ProximityScore
	ComputeProximityByAddress(ctx context.Context, borrowerAddress, viewerAddress string) (domain.ProximityScore, error)
	ComputeReputation(ctx context.Context, address string) *domain.ReputationScore
	ComputeLoanSupport(ctx context.Context, borrowerAddress string, lenderAddresses []string, includeDetail bool) domain.LoanSocialSupport
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger *slog.Logger
	scorer Scorer
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, scorer Scorer) *APIHandlers {
	return &APIHandlers{
		logger: logger,
		scorer: scorer,
	}
}

func (h *APIHandlers) register(r *mux.Router) {
	r.HandleFunc("/proximity", h.handleProximity).Methods(http.MethodGet)
	r.HandleFunc("/proximity/fid/{borrowerId}/{viewerId}", h.handleProximityByFID).Methods(http.MethodGet)
	r.HandleFunc("/reputation/{address}", h.handleReputation).Methods(http.MethodGet)
	r.HandleFunc("/loans/support", h.handleLoanSupport).Methods(http.MethodPost)
}

func (h *APIHandlers) handleProximity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	borrower := strings.TrimSpace(query.Get("borrower"))
	viewer := strings.TrimSpace(query.Get("viewer"))
	if borrower == "" || viewer == "" {
		writeError(w, http.StatusBadRequest, "borrower and viewer are required")
		return
	}

	score, err := h.scorer.ComputeProximityByAddress(r.Context(), borrower, viewer)
	if err != nil {
		if errors.Is(err, service.ErrEmptyAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to compute proximity", "error", err, "borrower", borrower, "viewer", viewer)
		writeError(w, http.StatusInternalServerError, "failed to compute proximity")
		return
	}
	respondJSON(w, http.StatusOK, newProximityResponse(score))
}

func (h *APIHandlers) handleProximityByFID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	borrowerID, err := parseFID(vars["borrowerId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid borrowerId")
		return
	}
	viewerID, err := parseFID(vars["viewerId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid viewerId")
		return
	}

	score := h.scorer.ComputeProximity(r.Context(), borrowerID, viewerID, nil, nil)
	respondJSON(w, http.StatusOK, newProximityResponse(score))
}

func (h *APIHandlers) handleReputation(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(mux.Vars(r)["address"])
	rep := h.scorer.ComputeReputation(r.Context(), address)
	if rep == nil {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	respondJSON(w, http.StatusOK, newReputationResponse(*rep))
}

func (h *APIHandlers) handleLoanSupport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req loanSupportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.BorrowerAddress) == "" {
		writeError(w, http.StatusBadRequest, "borrowerAddress is required")
		return
	}
	if len(req.LenderAddresses) > maxLenders {
		writeError(w, http.StatusBadRequest, "too many lenderAddresses (max "+strconv.Itoa(maxLenders)+")")
		return
	}

	support := h.scorer.ComputeLoanSupport(r.Context(), req.BorrowerAddress, req.LenderAddresses, req.IncludeDetail)
	respondJSON(w, http.StatusOK, newLoanSupportResponse(support))
}

func parseFID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("fid must be positive")
	}
	return id, nil
}
