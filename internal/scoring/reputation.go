package scoring

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

// Point budgets of the composite score. The social signal is rescaled from
// its native 0-100 range into 60 points, wallet activity into 40.
const (
	SocialBudgetScale = 0.6
	WalletBudgetScale = 0.4
)

type tier struct {
	min    float64
	points int
}

var (
	followerTiers = []tier{{10000, 30}, {1000, 24}, {500, 18}, {100, 12}, {20, 6}}
	accountAge    = []tier{{730, 20}, {365, 16}, {180, 12}, {90, 8}, {30, 4}}
	walletAge     = []tier{{730, 30}, {365, 25}, {180, 18}, {90, 12}, {30, 6}}
	txActivity    = []tier{{500, 30}, {200, 25}, {100, 20}, {50, 15}, {10, 8}, {1, 3}}
)

var balanceTiers = []struct {
	min    decimal.Decimal
	points int
}{
	{decimal.NewFromInt(10), 20},
	{decimal.NewFromInt(1), 15},
	{decimal.RequireFromString("0.1"), 10},
	{decimal.RequireFromString("0.01"), 5},
}

func pick(value float64, tiers []tier) int {
	for _, t := range tiers {
		if value >= t.min {
			return t.points
		}
	}
	return 0
}

func daysSince(now, t time.Time) float64 {
	if t.IsZero() || t.After(now) {
		return 0
	}
	return now.Sub(t).Hours() / 24
}

// SocialPoints scores a social profile on its native 0-100 scale, keyed by
// breakdown label.
func SocialPoints(id domain.Identity, now time.Time) map[string]int {
	points := map[string]int{
		domain.FactorPowerBadge:   0,
		domain.FactorFollowerTier: pick(float64(id.FollowerCount), followerTiers),
		domain.FactorAccountAge:   0,
		domain.FactorEngagement:   engagementPoints(id.FollowerCount, id.FollowingCount),
	}
	if id.PowerBadge {
		points[domain.FactorPowerBadge] = 40
	}
	if id.RegisteredAt != nil {
		points[domain.FactorAccountAge] = pick(daysSince(now, *id.RegisteredAt), accountAge)
	}
	return points
}

func engagementPoints(followers, following int) int {
	if followers <= 0 || following <= 0 {
		return 0
	}
	ratio := float64(followers) / float64(following)
	if ratio >= 0.2 && ratio <= 5 {
		return 10
	}
	return 5
}

// WalletActivity scores an on-chain history into the four bounded sub-scores.
func WalletActivity(h domain.WalletHistory, now time.Time) domain.ActivityScore {
	score := domain.ActivityScore{
		Address:  h.Address,
		Activity: pick(float64(h.TxCount), txActivity),
	}
	if !h.FirstSeen.IsZero() {
		score.Age = pick(daysSince(now, h.FirstSeen), walletAge)
		if score.Age == 0 {
			score.Age = 2
		}
	}
	if !h.LastSeen.IsZero() {
		switch d := daysSince(now, h.LastSeen); {
		case d <= 7:
			score.Recency = 20
		case d <= 30:
			score.Recency = 15
		case d <= 90:
			score.Recency = 10
		case d <= 180:
			score.Recency = 5
		}
	}
	for _, t := range balanceTiers {
		if h.Balance.GreaterThanOrEqual(t.min) {
			score.Balance = t.points
			break
		}
	}
	score.Total = score.Age + score.Activity + score.Recency + score.Balance
	return score
}

// Composite rescales the social points (nil when the address has no social
// profile) and the wallet score (nil when it could not be analysed) into a
// single 0-100 reputation. A missing input contributes zero; the remaining
// budget is never reweighted.
func Composite(address string, social map[string]int, wallet *domain.ActivityScore) domain.ReputationScore {
	rep := domain.ReputationScore{
		Address: address,
		Breakdown: map[string]float64{
			domain.FactorPowerBadge:     0,
			domain.FactorFollowerTier:   0,
			domain.FactorAccountAge:     0,
			domain.FactorEngagement:     0,
			domain.FactorWalletAge:      0,
			domain.FactorWalletActivity: 0,
			domain.FactorRecentActivity: 0,
			domain.FactorBalance:        0,
		},
	}

	for label, pts := range social {
		v := round(float64(pts)*SocialBudgetScale, 2)
		rep.Breakdown[label] = v
		rep.SocialComponent += v
	}
	rep.HasSocialProfile = social != nil

	if wallet != nil {
		parts := map[string]int{
			domain.FactorWalletAge:      wallet.Age,
			domain.FactorWalletActivity: wallet.Activity,
			domain.FactorRecentActivity: wallet.Recency,
			domain.FactorBalance:        wallet.Balance,
		}
		for label, pts := range parts {
			v := round(float64(pts)*WalletBudgetScale, 2)
			rep.Breakdown[label] = v
			rep.WalletComponent += v
		}
	}

	rep.SocialComponent = clampFloat(round(rep.SocialComponent, 2), 0, 60)
	rep.WalletComponent = clampFloat(round(rep.WalletComponent, 2), 0, 40)
	rep.Overall = clampInt(int(math.Round(rep.SocialComponent+rep.WalletComponent)), 0, 100)
	return rep
}

func round(value float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(value*pow) / pow
}
