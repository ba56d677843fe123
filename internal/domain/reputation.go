package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Breakdown labels used by ReputationScore.
const (
	FactorPowerBadge     = "power-badge"
	FactorFollowerTier   = "follower-tier"
	FactorAccountAge     = "account-age"
	FactorEngagement     = "engagement"
	FactorWalletAge      = "wallet-age"
	FactorWalletActivity = "wallet-activity"
	FactorRecentActivity = "recent-activity"
	FactorBalance        = "balance"
)

// ActivityScore is the on-chain activity assessment of a single wallet.
// Sub-scores use fixed point ranges: Age and Activity 0-30, Recency and
// Balance 0-20.
type ActivityScore struct {
	Address  string
	Age      int
	Activity int
	Recency  int
	Balance  int
	Total    int
}

// ReputationScore is the composite 0-100 trust score of one address.
type ReputationScore struct {
	Address          string
	FID              int64
	HasSocialProfile bool
	Overall          int
	SocialComponent  float64
	WalletComponent  float64
	Breakdown        map[string]float64
}

// WalletHistory is the raw on-chain summary the activity analyzer scores.
// Zero times mean the wallet has no recorded activity.
type WalletHistory struct {
	Address   string
	FirstSeen time.Time
	LastSeen  time.Time
	TxCount   int
	Balance   decimal.Decimal
}
