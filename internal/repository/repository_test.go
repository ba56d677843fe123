package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/graph"
)

func TestRepository_UpsertIdentity(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	registered := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	quality := 1.3
	err := repo.UpsertIdentity(context.Background(), domain.Identity{
		ID:              42,
		Username:        "alice",
		DisplayName:     "Alice",
		QualityScore:    &quality,
		PowerBadge:      true,
		RegisteredAt:    &registered,
		VerifiedWallets: []string{" 0xABCDEF ", ""},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	call := calls[0]
	if call.Query != upsertIdentityCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertIdentityCypher, call.Query)
	}
	if call.Params["fid"] != int64(42) {
		t.Errorf("expected fid 42, got %v", call.Params["fid"])
	}
	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["qualityScore"] != 1.0 {
		t.Errorf("expected clamped quality 1.0, got %v", props["qualityScore"])
	}
	if props["registeredAt"] != "2023-03-01T00:00:00Z" {
		t.Errorf("unexpected registeredAt %v", props["registeredAt"])
	}
	wallets, ok := call.Params["wallets"].([]string)
	if !ok || len(wallets) != 1 || wallets[0] != "0xabcdef" {
		t.Errorf("expected normalized wallet list, got %v", call.Params["wallets"])
	}
}

func TestRepository_UpsertIdentityRequiresFID(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.UpsertIdentity(context.Background(), domain.Identity{}); err == nil {
		t.Fatalf("expected error for missing fid")
	}
}

func TestRepository_UpsertFollowsSkipsEmpty(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)
	if err := repo.UpsertFollows(context.Background(), 1, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mem.WriteCalls()) != 0 {
		t.Fatalf("expected no writes for empty followee list")
	}
	if err := repo.UpsertFollows(context.Background(), 1, []int64{2, 3}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls := mem.WriteCalls(); len(calls) != 1 || calls[0].Query != upsertFollowsCypher {
		t.Fatalf("expected one follows write, got %+v", calls)
	}
}

func TestRepository_FetchFollowers(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"fid": int64(7)},
		{"fid": int64(9)},
		{"fid": "garbage"},
	}})
	repo := New(mem)

	ids, err := repo.FetchFollowers(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 9 {
		t.Fatalf("unexpected ids %v", ids)
	}
	calls := mem.ReadCalls()
	if len(calls) != 1 || calls[0].Query != followersCypher || calls[0].Params["fid"] != int64(1) {
		t.Fatalf("unexpected read calls %+v", calls)
	}
}

func TestRepository_FetchFollowingPropagatesErrors(t *testing.T) {
	mem := graph.NewMemoryClient().WithError(errors.New("connection refused"))
	repo := New(mem)
	if _, err := repo.FetchFollowing(context.Background(), 1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRepository_FetchProfilesByAddresses(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"address":        "0xaaa",
			"fid":            int64(10),
			"username":       "bob",
			"displayName":    "Bob",
			"qualityScore":   0.85,
			"powerBadge":     true,
			"registeredAt":   "2022-01-02T00:00:00Z",
			"followerCount":  int64(1200),
			"followingCount": int64(300),
			"wallets":        []any{"0xbbb", "0xaaa"},
		},
		{
			"address": "0xaaa",
			"fid":     int64(99),
		},
	}})
	repo := New(mem)

	profiles, err := repo.FetchProfilesByAddresses(context.Background(), []string{"0xaaa", "0xccc"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 resolved address, got %d", len(profiles))
	}
	id := profiles["0xaaa"]
	if id.ID != 10 || id.Username != "bob" || !id.PowerBadge {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.QualityScore == nil || *id.QualityScore != 0.85 {
		t.Fatalf("expected quality 0.85, got %v", id.QualityScore)
	}
	if id.FollowerCount != 1200 || id.FollowingCount != 300 {
		t.Fatalf("unexpected counts %+v", id)
	}
	if id.RegisteredAt == nil || id.RegisteredAt.Year() != 2022 {
		t.Fatalf("expected registeredAt to be parsed, got %v", id.RegisteredAt)
	}
	if len(id.VerifiedWallets) != 2 || id.VerifiedWallets[0] != "0xaaa" {
		t.Fatalf("expected sorted wallets, got %v", id.VerifiedWallets)
	}
}

func TestRepository_FetchProfileByAddressAbsent(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	id, err := repo.FetchProfileByAddress(context.Background(), "0xnone")
	if err != nil {
		t.Fatalf("expected absence without error, got %v", err)
	}
	if id != nil {
		t.Fatalf("expected nil identity, got %+v", id)
	}
}
