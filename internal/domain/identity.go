package domain

import (
	"strings"
	"time"
)

// Identity is a social-identity record owned by the external provider.
// Follower and following id sets are not carried here; they are fetched
// separately because they are large and cached on their own.
type Identity struct {
	ID              int64
	Username        string
	DisplayName     string
	QualityScore    *float64
	PowerBadge      bool
	FollowerCount   int
	FollowingCount  int
	RegisteredAt    *time.Time
	VerifiedWallets []string
}

// HasQuality reports whether the provider supplied a quality score.
func (i Identity) HasQuality() bool {
	return i.QualityScore != nil
}

// NormalizeAddress returns the canonical form of a wallet address. EVM
// addresses are case-insensitive and are lowercased; base58 addresses are
// case-sensitive and only trimmed.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if len(address) > 2 && (strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X")) {
		return "0x" + strings.ToLower(address[2:])
	}
	return address
}
