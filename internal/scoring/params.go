package scoring

import (
	"errors"
	"time"
)

// Params collects every calibration constant of the engine. The defaults are
// hand-tuned and are expected to be revisited once repayment outcomes exist.
type Params struct {
	// DefaultQuality stands in for the pair's average quality when either
	// side has no quality score.
	DefaultQuality float64 `mapstructure:"default_quality" yaml:"default_quality"`
	// AssumedDegree replaces a mutual's network size when it cannot be fetched
	// or when the mutual falls outside MaxWeightedMutuals.
	AssumedDegree      int `mapstructure:"assumed_degree" yaml:"assumed_degree"`
	MaxWeightedMutuals int `mapstructure:"max_weighted_mutuals" yaml:"max_weighted_mutuals"`
	DegreeConcurrency  int `mapstructure:"degree_concurrency" yaml:"degree_concurrency"`
	LenderConcurrency  int `mapstructure:"lender_concurrency" yaml:"lender_concurrency"`

	LowRiskWeight      float64 `mapstructure:"low_risk_weight" yaml:"low_risk_weight"`
	LowRiskDistance    int     `mapstructure:"low_risk_distance" yaml:"low_risk_distance"`
	MediumRiskWeight   float64 `mapstructure:"medium_risk_weight" yaml:"medium_risk_weight"`
	MediumRiskDistance int     `mapstructure:"medium_risk_distance" yaml:"medium_risk_distance"`

	HighQuality   float64 `mapstructure:"high_quality" yaml:"high_quality"`
	MediumQuality float64 `mapstructure:"medium_quality" yaml:"medium_quality"`

	OverlapFloor      float64 `mapstructure:"overlap_floor" yaml:"overlap_floor"`
	OverlapMultiplier float64 `mapstructure:"overlap_multiplier" yaml:"overlap_multiplier"`
	OverlapBonusCap   float64 `mapstructure:"overlap_bonus_cap" yaml:"overlap_bonus_cap"`
	MutualFollowBonus int     `mapstructure:"mutual_follow_bonus" yaml:"mutual_follow_bonus"`
	OneWayFollowBonus int     `mapstructure:"one_way_follow_bonus" yaml:"one_way_follow_bonus"`

	// ConnectedLenderThreshold calibrates lender quality, not borrower risk.
	ConnectedLenderThreshold int `mapstructure:"connected_lender_threshold" yaml:"connected_lender_threshold"`
	StrongSupportPercent     int `mapstructure:"strong_support_percent" yaml:"strong_support_percent"`
	ModerateSupportPercent   int `mapstructure:"moderate_support_percent" yaml:"moderate_support_percent"`

	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
	IdentityTTL  time.Duration `mapstructure:"identity_ttl" yaml:"identity_ttl"`
	GraphTTL     time.Duration `mapstructure:"graph_ttl" yaml:"graph_ttl"`
	ProximityTTL time.Duration `mapstructure:"proximity_ttl" yaml:"proximity_ttl"`
	WalletTTL    time.Duration `mapstructure:"wallet_ttl" yaml:"wallet_ttl"`
	SupportTTL   time.Duration `mapstructure:"support_ttl" yaml:"support_ttl"`
}

// DefaultParams returns the production calibration.
func DefaultParams() Params {
	return Params{
		DefaultQuality:     0.7,
		AssumedDegree:      100,
		MaxWeightedMutuals: 200,
		DegreeConcurrency:  16,
		LenderConcurrency:  8,

		LowRiskWeight:      9,
		LowRiskDistance:    60,
		MediumRiskWeight:   2.5,
		MediumRiskDistance: 30,

		HighQuality:   0.7,
		MediumQuality: 0.4,

		OverlapFloor:      10,
		OverlapMultiplier: 3,
		OverlapBonusCap:   30,
		MutualFollowBonus: 10,
		OneWayFollowBonus: 5,

		ConnectedLenderThreshold: 5,
		StrongSupportPercent:     60,
		ModerateSupportPercent:   30,

		FetchTimeout: 5 * time.Second,
		IdentityTTL:  5 * time.Minute,
		GraphTTL:     5 * time.Minute,
		ProximityTTL: 5 * time.Minute,
		WalletTTL:    10 * time.Minute,
		SupportTTL:   30 * time.Minute,
	}
}

// WithDefaults fills the operational fields (fan-out sizes, the assumed
// degree, timeouts and TTLs) when they are not positive. Calibration fields
// are taken as given, zero included, so build on DefaultParams rather than a
// zero Params.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.AssumedDegree <= 0 {
		p.AssumedDegree = d.AssumedDegree
	}
	if p.MaxWeightedMutuals <= 0 {
		p.MaxWeightedMutuals = d.MaxWeightedMutuals
	}
	if p.DegreeConcurrency <= 0 {
		p.DegreeConcurrency = d.DegreeConcurrency
	}
	if p.LenderConcurrency <= 0 {
		p.LenderConcurrency = d.LenderConcurrency
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = d.FetchTimeout
	}
	if p.IdentityTTL <= 0 {
		p.IdentityTTL = d.IdentityTTL
	}
	if p.GraphTTL <= 0 {
		p.GraphTTL = d.GraphTTL
	}
	if p.ProximityTTL <= 0 {
		p.ProximityTTL = d.ProximityTTL
	}
	if p.WalletTTL <= 0 {
		p.WalletTTL = d.WalletTTL
	}
	if p.SupportTTL <= 0 {
		p.SupportTTL = d.SupportTTL
	}
	return p
}

// Validate rejects calibrations that no score could be read against.
func (p Params) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{p.DefaultQuality >= 0 && p.DefaultQuality <= 1, "default_quality must be within [0, 1]"},
		{p.MediumQuality >= 0 && p.MediumQuality <= p.HighQuality && p.HighQuality <= 1, "quality tiers must satisfy 0 <= medium_quality <= high_quality <= 1"},
		{p.MediumRiskWeight >= 0 && p.MediumRiskWeight <= p.LowRiskWeight, "risk weights must satisfy 0 <= medium_risk_weight <= low_risk_weight"},
		{p.MediumRiskDistance >= 0 && p.MediumRiskDistance <= p.LowRiskDistance, "risk distances must satisfy 0 <= medium_risk_distance <= low_risk_distance"},
		{p.OverlapFloor >= 0 && p.OverlapMultiplier >= 0 && p.OverlapBonusCap >= 0, "overlap parameters must not be negative"},
		{p.MutualFollowBonus >= 0 && p.OneWayFollowBonus >= 0, "follow bonuses must not be negative"},
		{p.ConnectedLenderThreshold >= 0, "connected_lender_threshold must not be negative"},
		{p.ModerateSupportPercent >= 0 && p.ModerateSupportPercent <= p.StrongSupportPercent, "support tiers must satisfy 0 <= moderate_support_percent <= strong_support_percent"},
	}
	for _, c := range checks {
		if !c.ok {
			return errors.New(c.msg)
		}
	}
	return nil
}
