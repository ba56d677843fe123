package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/graph"
)

// SocialGraphRepository serves the social graph out of Neo4j:
// (:Identity)-[:FOLLOWS]->(:Identity) and (:Identity)-[:VERIFIED]->(:Wallet).
type SocialGraphRepository struct {
	client graph.Client
}

// New instantiates a SocialGraphRepository backed by the supplied graph client.
func New(client graph.Client) *SocialGraphRepository {
	return &SocialGraphRepository{client: client}
}

// EnsureSchema creates the uniqueness constraints the queries rely on.
func (r *SocialGraphRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// FetchFollowers returns the ids of identities following fid.
func (r *SocialGraphRepository) FetchFollowers(ctx context.Context, fid int64) ([]int64, error) {
	return r.fetchIDs(ctx, followersCypher, fid)
}

// FetchFollowing returns the ids of identities fid follows.
func (r *SocialGraphRepository) FetchFollowing(ctx context.Context, fid int64) ([]int64, error) {
	return r.fetchIDs(ctx, followingCypher, fid)
}

func (r *SocialGraphRepository) fetchIDs(ctx context.Context, cypher string, fid int64) ([]int64, error) {
	res, err := r.client.ExecuteRead(ctx, cypher, map[string]any{"fid": fid})
	if err != nil {
		return nil, fmt.Errorf("fetch network of %d: %w", fid, err)
	}
	ids := make([]int64, 0, len(res.Records))
	for _, record := range res.Records {
		if id, ok := toInt64(record["fid"]); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FetchProfileByAddress returns the identity that verified address, or nil
// when no identity did.
func (r *SocialGraphRepository) FetchProfileByAddress(ctx context.Context, address string) (*domain.Identity, error) {
	profiles, err := r.FetchProfilesByAddresses(ctx, []string{address})
	if err != nil {
		return nil, err
	}
	if id, ok := profiles[address]; ok {
		return &id, nil
	}
	return nil, nil
}

// FetchProfilesByAddresses resolves many addresses in one query. Addresses
// without an identity are absent from the returned map.
func (r *SocialGraphRepository) FetchProfilesByAddresses(ctx context.Context, addresses []string) (map[string]domain.Identity, error) {
	out := make(map[string]domain.Identity, len(addresses))
	if len(addresses) == 0 {
		return out, nil
	}

	res, err := r.client.ExecuteRead(ctx, profilesByAddressCypher, map[string]any{
		"addresses": addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch profiles by address: %w", err)
	}

	for _, record := range res.Records {
		address := toString(record["address"])
		fid, ok := toInt64(record["fid"])
		if address == "" || !ok {
			continue
		}
		// rows are ordered by fid; the oldest identity wins when a wallet
		// was verified by more than one.
		if _, seen := out[address]; seen {
			continue
		}
		out[address] = decodeIdentity(fid, record)
	}
	return out, nil
}

// UpsertIdentity ensures an identity node exists with the latest profile
// data and verified wallet edges.
func (r *SocialGraphRepository) UpsertIdentity(ctx context.Context, id domain.Identity) error {
	if id.ID <= 0 {
		return errors.New("identity fid is required")
	}

	wallets := make([]string, 0, len(id.VerifiedWallets))
	for _, w := range id.VerifiedWallets {
		if w = domain.NormalizeAddress(w); w != "" {
			wallets = append(wallets, w)
		}
	}

	_, err := r.client.ExecuteWrite(ctx, upsertIdentityCypher, map[string]any{
		"fid":     id.ID,
		"props":   identityProperties(id),
		"wallets": wallets,
	})
	if err != nil {
		return fmt.Errorf("upsert identity %d: %w", id.ID, err)
	}
	return nil
}

// UpsertFollows records that fid follows every id in followees.
func (r *SocialGraphRepository) UpsertFollows(ctx context.Context, fid int64, followees []int64) error {
	if fid <= 0 {
		return errors.New("follower fid is required")
	}
	if len(followees) == 0 {
		return nil
	}
	_, err := r.client.ExecuteWrite(ctx, upsertFollowsCypher, map[string]any{
		"fid":       fid,
		"followees": followees,
	})
	if err != nil {
		return fmt.Errorf("upsert follows of %d: %w", fid, err)
	}
	return nil
}

func decodeIdentity(fid int64, record graph.Record) domain.Identity {
	id := domain.Identity{
		ID:          fid,
		Username:    toString(record["username"]),
		DisplayName: toString(record["displayName"]),
		PowerBadge:  toBool(record["powerBadge"]),
	}
	if q, ok := toFloat64(record["qualityScore"]); ok {
		q = clampFloat(q, 0, 1)
		id.QualityScore = &q
	}
	if n, ok := toInt64(record["followerCount"]); ok {
		id.FollowerCount = int(n)
	}
	if n, ok := toInt64(record["followingCount"]); ok {
		id.FollowingCount = int(n)
	}
	id.RegisteredAt = toTimePtr(record["registeredAt"])
	id.VerifiedWallets = toStringSlice(record["wallets"])
	sort.Strings(id.VerifiedWallets)
	return id
}

func identityProperties(id domain.Identity) map[string]any {
	props := map[string]any{
		"username":    id.Username,
		"displayName": id.DisplayName,
		"powerBadge":  id.PowerBadge,
	}
	if id.QualityScore != nil {
		props["qualityScore"] = clampFloat(*id.QualityScore, 0, 1)
	}
	if id.RegisteredAt != nil && !id.RegisteredAt.IsZero() {
		props["registeredAt"] = id.RegisteredAt.UTC().Format(time.RFC3339)
	}
	return props
}
