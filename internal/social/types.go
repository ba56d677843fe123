package social

import "github.com/aagoldberg/far-mca-sub002/internal/domain"

type hubUser struct {
	FID            int64    `json:"fid"`
	Username       string   `json:"username"`
	DisplayName    string   `json:"display_name"`
	FollowerCount  int      `json:"follower_count"`
	FollowingCount int      `json:"following_count"`
	PowerBadge     bool     `json:"power_badge"`
	Score          *float64 `json:"score"`
	Experimental   *struct {
		UserScore *float64 `json:"neynar_user_score"`
	} `json:"experimental"`
	VerifiedAddresses struct {
		EthAddresses []string `json:"eth_addresses"`
		SolAddresses []string `json:"sol_addresses"`
	} `json:"verified_addresses"`
}

type relationPage struct {
	Users []struct {
		User hubUser `json:"user"`
	} `json:"users"`
	Next struct {
		Cursor *string `json:"cursor"`
	} `json:"next"`
}

// toIdentity normalizes a provider user into the domain record. Quality
// scores outside [0,1] are clamped; a missing score stays unknown.
func (u hubUser) toIdentity() domain.Identity {
	id := domain.Identity{
		ID:             u.FID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		FollowerCount:  max(u.FollowerCount, 0),
		FollowingCount: max(u.FollowingCount, 0),
		PowerBadge:     u.PowerBadge,
	}

	quality := u.Score
	if quality == nil && u.Experimental != nil {
		quality = u.Experimental.UserScore
	}
	if quality != nil {
		q := min(max(*quality, 0), 1)
		id.QualityScore = &q
	}

	for _, a := range u.VerifiedAddresses.EthAddresses {
		if a = domain.NormalizeAddress(a); a != "" {
			id.VerifiedWallets = append(id.VerifiedWallets, a)
		}
	}
	for _, a := range u.VerifiedAddresses.SolAddresses {
		if a = domain.NormalizeAddress(a); a != "" {
			id.VerifiedWallets = append(id.VerifiedWallets, a)
		}
	}
	return id
}
