package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

type proximityResponse struct {
	BorrowerID            int64   `json:"borrowerId"`
	ViewerID              int64   `json:"viewerId"`
	MutualCount           int     `json:"mutualCount"`
	EffectiveMutualWeight float64 `json:"effectiveMutualWeight"`
	SocialDistance        int     `json:"socialDistance"`
	RiskTier              string  `json:"riskTier"`
	OverlapPercent        float64 `json:"overlapPercent"`
	QualityTier           string  `json:"qualityTier"`
	AverageQuality        float64 `json:"averageQuality"`
	BorrowerNetworkSize   int     `json:"borrowerNetworkSize"`
	ViewerNetworkSize     int     `json:"viewerNetworkSize"`
	BorrowerFollowsViewer bool    `json:"borrowerFollowsViewer"`
	ViewerFollowsBorrower bool    `json:"viewerFollowsBorrower"`
}

func newProximityResponse(s domain.ProximityScore) proximityResponse {
	return proximityResponse{
		BorrowerID:            s.BorrowerID,
		ViewerID:              s.ViewerID,
		MutualCount:           s.MutualCount,
		EffectiveMutualWeight: round2(s.EffectiveMutualWeight),
		SocialDistance:        s.SocialDistance,
		RiskTier:              string(s.RiskTier),
		OverlapPercent:        round2(s.OverlapPercent),
		QualityTier:           string(s.QualityTier),
		AverageQuality:        round2(s.AverageQuality),
		BorrowerNetworkSize:   s.BorrowerNetworkSize,
		ViewerNetworkSize:     s.ViewerNetworkSize,
		BorrowerFollowsViewer: s.BorrowerFollowsViewer,
		ViewerFollowsBorrower: s.ViewerFollowsBorrower,
	}
}

type reputationResponse struct {
	Address          string             `json:"address"`
	FID              int64              `json:"fid,omitempty"`
	HasSocialProfile bool               `json:"hasSocialProfile"`
	Overall          int                `json:"overall"`
	SocialComponent  float64            `json:"socialComponent"`
	WalletComponent  float64            `json:"walletComponent"`
	Breakdown        map[string]float64 `json:"breakdown"`
}

func newReputationResponse(r domain.ReputationScore) reputationResponse {
	return reputationResponse{
		Address:          r.Address,
		FID:              r.FID,
		HasSocialProfile: r.HasSocialProfile,
		Overall:          r.Overall,
		SocialComponent:  r.SocialComponent,
		WalletComponent:  r.WalletComponent,
		Breakdown:        r.Breakdown,
	}
}

type loanSupportRequest struct {
	BorrowerAddress string   `json:"borrowerAddress"`
	LenderAddresses []string `json:"lenderAddresses"`
	IncludeDetail   bool     `json:"includeDetail"`
}

type lenderConnection struct {
	Address           string `json:"address"`
	MutualConnections int    `json:"mutualConnections"`
	IsConnected       bool   `json:"isConnected"`
}

type loanSupportResponse struct {
	BorrowerAddress          string             `json:"borrowerAddress"`
	TotalLenders             int                `json:"totalLenders"`
	ConnectedLenderCount     int                `json:"connectedLenderCount"`
	AverageMutualConnections float64            `json:"averageMutualConnections"`
	PercentConnected         int                `json:"percentConnected"`
	SupportTier              string             `json:"supportTier"`
	PerLenderDetail          []lenderConnection `json:"perLenderDetail,omitempty"`
}

func newLoanSupportResponse(s domain.LoanSocialSupport) loanSupportResponse {
	resp := loanSupportResponse{
		BorrowerAddress:          s.BorrowerAddress,
		TotalLenders:             s.TotalLenders,
		ConnectedLenderCount:     s.ConnectedLenderCount,
		AverageMutualConnections: s.AverageMutualConnections,
		PercentConnected:         s.PercentConnected,
		SupportTier:              string(s.SupportTier),
	}
	for _, l := range s.PerLenderDetail {
		resp.PerLenderDetail = append(resp.PerLenderDetail, lenderConnection{
			Address:           l.Address,
			MutualConnections: l.MutualConnections,
			IsConnected:       l.IsConnected,
		})
	}
	return resp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
