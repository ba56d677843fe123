package generator

// Config drives the synthetic social graph generator.
type Config struct {
	NumIdentities      int
	AvgFollowing       int
	CommunitySize      int
	InCommunityChance  float64
	PowerBadgeChance   float64
	QualityKnownChance float64
	SolanaWalletChance float64
	Seed               int64
}

// DefaultConfig returns a graph dense enough to produce LOW, MEDIUM and HIGH
// risk pairs.
func DefaultConfig() Config {
	return Config{
		NumIdentities:      2000,
		AvgFollowing:       60,
		CommunitySize:      100,
		InCommunityChance:  0.8,
		PowerBadgeChance:   0.05,
		QualityKnownChance: 0.85,
		SolanaWalletChance: 0.4,
		Seed:               42,
	}
}
