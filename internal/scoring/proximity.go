package scoring

import (
	"math"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

// weightBands map effective mutual weight onto the base social distance.
var weightBands = []struct {
	min    float64
	points int
}{
	{20, 60},
	{10, 50},
	{5, 35},
	{2.5, 20},
	{1, 10},
}

// MutualContribution is the Adamic-Adar term of one shared neighbour with the
// given network size. Neighbours with at most one connection count as a flat
// 1.0, and no neighbour may count for more than that: the plain 1/ln(d) term
// is about 1.44 at degree 2, above the flat 1.0 given to degree 1, so the cap
// keeps the contribution non-increasing in degree. Degree 2 is the only one
// it changes.
func MutualContribution(degree int) float64 {
	if degree <= 1 {
		return 1.0
	}
	return math.Min(1.0, 1/math.Log(float64(degree)))
}

// AdamicAdar sums MutualContribution over the degrees of all mutuals.
func AdamicAdar(degrees []int) float64 {
	total := 0.0
	for _, d := range degrees {
		total += MutualContribution(d)
	}
	return total
}

// AverageQuality is the mean quality of both sides, or fallback when either
// side is unknown.
func AverageQuality(a, b *float64, fallback float64) float64 {
	if a == nil || b == nil {
		return fallback
	}
	return (clampFloat(*a, 0, 1) + clampFloat(*b, 0, 1)) / 2
}

// OverlapPercent is |mutual| / |union| * 100, zero for an empty union.
func OverlapPercent(mutual, union int) float64 {
	if union <= 0 || mutual <= 0 {
		return 0
	}
	return clampFloat(float64(mutual)/float64(union)*100, 0, 100)
}

// SocialDistance combines the weight band, overlap bonus and follow bonus
// into a 0-100 score.
func (p Params) SocialDistance(weight, overlap float64, borrowerFollowsViewer, viewerFollowsBorrower bool) int {
	base := 0
	for _, band := range weightBands {
		if weight >= band.min {
			base = band.points
			break
		}
	}

	bonus := 0.0
	if overlap > p.OverlapFloor {
		bonus = math.Min(overlap*p.OverlapMultiplier, p.OverlapBonusCap)
	}

	follow := 0
	switch {
	case borrowerFollowsViewer && viewerFollowsBorrower:
		follow = p.MutualFollowBonus
	case borrowerFollowsViewer || viewerFollowsBorrower:
		follow = p.OneWayFollowBonus
	}

	return clampInt(base+int(bonus)+follow, 0, 100)
}

// RiskTier classifies a pair from its effective weight and social distance.
func (p Params) RiskTier(weight float64, distance int) domain.RiskTier {
	switch {
	case weight >= p.LowRiskWeight || distance >= p.LowRiskDistance:
		return domain.RiskLow
	case weight >= p.MediumRiskWeight || distance >= p.MediumRiskDistance:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// QualityTier classifies the pair's average quality.
func (p Params) QualityTier(avgQuality float64) domain.QualityTier {
	switch {
	case avgQuality >= p.HighQuality:
		return domain.QualityHigh
	case avgQuality >= p.MediumQuality:
		return domain.QualityMedium
	default:
		return domain.QualityLow
	}
}

func clampFloat(value, min, max float64) float64 {
	if math.IsNaN(value) || value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
