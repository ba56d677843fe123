package generator

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

// IdentityRecord is one generated social identity.
type IdentityRecord struct {
	FID            int64     `json:"fid"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName"`
	Quality        *float64  `json:"quality,omitempty"`
	PowerBadge     bool      `json:"powerBadge"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	RegisteredAt   time.Time `json:"registeredAt"`
	Wallets        []string  `json:"wallets"`
}

// Identity converts the record into the domain type.
func (r IdentityRecord) Identity() domain.Identity {
	registered := r.RegisteredAt
	return domain.Identity{
		ID:              r.FID,
		Username:        r.Username,
		DisplayName:     r.DisplayName,
		QualityScore:    r.Quality,
		PowerBadge:      r.PowerBadge,
		FollowerCount:   r.FollowerCount,
		FollowingCount:  r.FollowingCount,
		RegisteredAt:    &registered,
		VerifiedWallets: append([]string(nil), r.Wallets...),
	}
}

// FollowRecord lists every fid one identity follows.
type FollowRecord struct {
	FID       int64   `json:"fid"`
	Following []int64 `json:"following"`
}

// Dataset contains the generated identities and follow edges.
type Dataset struct {
	Identities []IdentityRecord `json:"identities"`
	Follows    []FollowRecord   `json:"follows"`
}

// Generator produces a clustered synthetic social graph: identities belong to
// communities and mostly follow inside them, which is what gives pairs their
// mutual connections.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	now           time.Time
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	d := DefaultConfig()
	if cfg.NumIdentities <= 0 {
		cfg.NumIdentities = d.NumIdentities
	}
	if cfg.AvgFollowing <= 0 {
		cfg.AvgFollowing = d.AvgFollowing
	}
	if cfg.AvgFollowing >= cfg.NumIdentities {
		cfg.AvgFollowing = cfg.NumIdentities - 1
	}
	if cfg.CommunitySize <= 1 {
		cfg.CommunitySize = d.CommunitySize
	}
	if cfg.InCommunityChance <= 0 {
		cfg.InCommunityChance = d.InCommunityChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		now:           time.Now().UTC(),
		nameFragments: defaultNameFragments(),
	}
}

// WithClock pins the reference time used for registration dates.
func (g *Generator) WithClock(now time.Time) {
	if !now.IsZero() {
		g.now = now.UTC()
	}
}

// Generate synthesises identities and follows. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	n := g.cfg.NumIdentities
	identities := make([]IdentityRecord, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		identities[i] = g.identity(int64(i + 1))
	}

	follows := make([]FollowRecord, 0, n)
	followers := make([]int, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		fid := int64(i + 1)
		targets := g.followTargets(i)
		for _, t := range targets {
			followers[t-1]++
		}
		identities[i].FollowingCount = len(targets)
		if len(targets) > 0 {
			follows = append(follows, FollowRecord{FID: fid, Following: targets})
		}
	}
	for i := range identities {
		identities[i].FollowerCount = followers[i]
	}

	return Dataset{Identities: identities, Follows: follows}, nil
}

func (g *Generator) identity(fid int64) IdentityRecord {
	first := g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))]
	last := g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))]
	rec := IdentityRecord{
		FID:          fid,
		Username:     fmt.Sprintf("%s%d", first, fid),
		DisplayName:  first + " " + last,
		PowerBadge:   g.rand.Float64() < g.cfg.PowerBadgeChance,
		RegisteredAt: g.now.Add(-time.Duration(g.rand.Intn(3*365)+1) * 24 * time.Hour),
		Wallets:      []string{g.randomEVMAddress()},
	}
	if g.rand.Float64() < g.cfg.QualityKnownChance {
		q := float64(g.rand.Intn(101)) / 100
		rec.Quality = &q
	}
	if g.rand.Float64() < g.cfg.SolanaWalletChance {
		rec.Wallets = append(rec.Wallets, g.randomSolanaAddress())
	}
	return rec
}

// followTargets picks a de-duplicated, sorted set of fids for identity idx,
// never including idx itself.
func (g *Generator) followTargets(idx int) []int64 {
	n := g.cfg.NumIdentities
	count := g.rand.Intn(2*g.cfg.AvgFollowing + 1)
	if count > n-1 {
		count = n - 1
	}

	community := idx / g.cfg.CommunitySize
	lo := community * g.cfg.CommunitySize
	hi := min(lo+g.cfg.CommunitySize, n)

	chosen := make(map[int]struct{}, count)
	for attempts := 0; len(chosen) < count && attempts < count*10; attempts++ {
		var target int
		if hi-lo > 1 && g.rand.Float64() < g.cfg.InCommunityChance {
			target = lo + g.rand.Intn(hi-lo)
		} else {
			target = g.rand.Intn(n)
		}
		if target == idx {
			continue
		}
		chosen[target] = struct{}{}
	}

	out := make([]int64, 0, len(chosen))
	for t := range chosen {
		out = append(out, int64(t+1))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Generator) randomEVMAddress() string {
	var b [20]byte
	g.rand.Read(b[:])
	return "0x" + hex.EncodeToString(b[:])
}

func (g *Generator) randomSolanaAddress() string {
	var b [32]byte
	g.rand.Read(b[:])
	return solana.PublicKeyFromBytes(b[:]).String()
}

type nameFragments struct {
	first []string
	last  []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first: []string{"jane", "john", "alex", "priya", "liu", "maria", "omar", "sofia", "noah", "emma", "lucas", "mia", "ava", "ethan", "zara"},
		last:  []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
	}
}
