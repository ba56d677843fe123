package scoring

import (
	"math"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

// IsConnected reports whether a lender shares enough mutuals with the borrower.
func (p Params) IsConnected(mutualConnections int) bool {
	return mutualConnections >= p.ConnectedLenderThreshold
}

// SupportTier classifies the share of connected lenders.
func (p Params) SupportTier(percentConnected int) domain.SupportTier {
	switch {
	case percentConnected >= p.StrongSupportPercent:
		return domain.SupportStrong
	case percentConnected >= p.ModerateSupportPercent:
		return domain.SupportModerate
	case percentConnected > 0:
		return domain.SupportWeak
	default:
		return domain.SupportNone
	}
}

// Summarize fills the aggregate fields of support from its per-lender detail.
func (p Params) Summarize(support domain.LoanSocialSupport) domain.LoanSocialSupport {
	support.TotalLenders = len(support.PerLenderDetail)
	support.ConnectedLenderCount = 0
	support.AverageMutualConnections = 0
	support.PercentConnected = 0
	if support.TotalLenders == 0 {
		support.SupportTier = domain.SupportNone
		return support
	}

	sum := 0
	for i, l := range support.PerLenderDetail {
		connected := p.IsConnected(l.MutualConnections)
		support.PerLenderDetail[i].IsConnected = connected
		if connected {
			support.ConnectedLenderCount++
		}
		sum += l.MutualConnections
	}

	total := float64(support.TotalLenders)
	support.AverageMutualConnections = round(float64(sum)/total, 1)
	support.PercentConnected = clampInt(int(math.Round(float64(support.ConnectedLenderCount)/total*100)), 0, 100)
	support.SupportTier = p.SupportTier(support.PercentConnected)
	return support
}
