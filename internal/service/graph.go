package service

import (
	"context"
	"fmt"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
)

type relation int

const (
	followersOf relation = iota
	followingOf
)

func (r relation) String() string {
	if r == followingOf {
		return "following"
	}
	return "followers"
}

type relationRequest struct {
	fid  int64
	kind relation
}

// relation returns one cached id list. Provider failures and timeouts come
// back as errors and are never cached; callers choose the fallback.
func (e *Engine) relation(ctx context.Context, req relationRequest) ([]int64, error) {
	key := fmt.Sprintf("%s:%d", req.kind, req.fid)
	return cache.WithCache(ctx, e.cache, key, e.params.GraphTTL, func(ctx context.Context) ([]int64, error) {
		fctx, cancel := e.fetchContext(ctx)
		defer cancel()

		fetch := e.graph.FetchFollowers
		if req.kind == followingOf {
			fetch = e.graph.FetchFollowing
		}
		ids, err := fetch(fctx, req.fid)
		if err != nil {
			return nil, fmt.Errorf("fetch %s of %d: %w", req.kind, req.fid, err)
		}
		if ids == nil {
			ids = []int64{}
		}
		return ids, nil
	})
}

// degree is the size of an identity's combined follower and following lists.
func (e *Engine) degree(ctx context.Context, fid int64) (int, error) {
	followers, err := e.relation(ctx, relationRequest{fid: fid, kind: followersOf})
	if err != nil {
		return 0, err
	}
	following, err := e.relation(ctx, relationRequest{fid: fid, kind: followingOf})
	if err != nil {
		return 0, err
	}
	return len(followers) + len(following), nil
}
