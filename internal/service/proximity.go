package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
	"github.com/aagoldberg/far-mca-sub002/internal/workpool"
)

var errGraphUnavailable = errors.New("social graph unavailable")

// pairStats is the quality-independent part of a proximity score. It is what
// gets cached per ordered pair; quality and tiers are applied on every call.
type pairStats struct {
	MutualCount           int     `json:"mutualCount"`
	RawWeight             float64 `json:"rawWeight"`
	OverlapPercent        float64 `json:"overlapPercent"`
	BorrowerNetworkSize   int     `json:"borrowerNetworkSize"`
	ViewerNetworkSize     int     `json:"viewerNetworkSize"`
	BorrowerFollowsViewer bool    `json:"borrowerFollowsViewer"`
	ViewerFollowsBorrower bool    `json:"viewerFollowsBorrower"`
}

// ComputeProximity scores how socially close a viewer is to a borrower.
// Qualities may be nil when unknown. It never fails: an unreachable provider
// or a cancelled context yields domain.NoConnection.
func (e *Engine) ComputeProximity(ctx context.Context, borrowerID, viewerID int64, borrowerQuality, viewerQuality *float64) domain.ProximityScore {
	score, _ := e.proximity(ctx, borrowerID, viewerID, borrowerQuality, viewerQuality)
	return score
}

// proximity also reports whether the score rests on a fallback for a failed
// fetch. Only complete pair statistics are cached.
func (e *Engine) proximity(ctx context.Context, borrowerID, viewerID int64, borrowerQuality, viewerQuality *float64) (domain.ProximityScore, bool) {
	if borrowerID <= 0 || viewerID <= 0 || borrowerID == viewerID {
		return domain.NoConnection(borrowerID, viewerID), false
	}

	key := fmt.Sprintf("proximity:%d:%d", borrowerID, viewerID)
	if stats, ok := cache.Lookup[pairStats](ctx, e.cache, key); ok {
		return e.applyQuality(borrowerID, viewerID, stats, borrowerQuality, viewerQuality), false
	}

	stats, degraded, err := e.pairStats(ctx, borrowerID, viewerID)
	if err != nil {
		e.logger.Warn("proximity degraded to no connection",
			"borrower_id", borrowerID,
			"viewer_id", viewerID,
			"error", err,
		)
		return domain.NoConnection(borrowerID, viewerID), true
	}
	if degraded {
		e.logger.Warn("proximity computed from partial graph, not cached",
			"borrower_id", borrowerID,
			"viewer_id", viewerID,
		)
	} else if err := cache.Put(ctx, e.cache, key, e.params.ProximityTTL, stats); err != nil {
		e.logger.Warn("proximity not cached", "borrower_id", borrowerID, "viewer_id", viewerID, "error", err)
	}
	return e.applyQuality(borrowerID, viewerID, stats, borrowerQuality, viewerQuality), degraded
}

// ComputeProximityByAddress resolves both wallets and scores the pair. A
// wallet without a social identity yields domain.NoConnection.
func (e *Engine) ComputeProximityByAddress(ctx context.Context, borrowerAddress, viewerAddress string) (domain.ProximityScore, error) {
	borrowerAddress = domain.NormalizeAddress(borrowerAddress)
	viewerAddress = domain.NormalizeAddress(viewerAddress)
	if borrowerAddress == "" || viewerAddress == "" {
		return domain.NoConnection(0, 0), ErrEmptyAddress
	}

	ids, err := e.ResolveMany(ctx, []string{borrowerAddress, viewerAddress})
	if err != nil {
		e.logger.Warn("identity resolution failed", "borrower", borrowerAddress, "viewer", viewerAddress, "error", err)
		return domain.NoConnection(0, 0), nil
	}
	borrower, viewer := ids[borrowerAddress], ids[viewerAddress]
	if borrower == nil || viewer == nil {
		var bid, vid int64
		if borrower != nil {
			bid = borrower.ID
		}
		if viewer != nil {
			vid = viewer.ID
		}
		return domain.NoConnection(bid, vid), nil
	}
	return e.ComputeProximity(ctx, borrower.ID, viewer.ID, borrower.QualityScore, viewer.QualityScore), nil
}

// pairStats fetches both networks and weighs their mutuals. degraded is set
// when any list or degree stood in for a failed fetch.
func (e *Engine) pairStats(ctx context.Context, borrowerID, viewerID int64) (stats pairStats, degraded bool, err error) {
	requests := []relationRequest{
		{fid: borrowerID, kind: followersOf},
		{fid: borrowerID, kind: followingOf},
		{fid: viewerID, kind: followersOf},
		{fid: viewerID, kind: followingOf},
	}
	outcomes := workpool.Map(ctx, e.basePool, requests, e.relation)

	lists := make([][]int64, len(requests))
	var failures []error
	for i, o := range outcomes {
		if o.OK() {
			lists[i] = o.Value
			continue
		}
		failures = append(failures, o.Err)
		e.logger.Warn("relation fetch failed, using empty list",
			"fid", requests[i].fid,
			"relation", requests[i].kind.String(),
			"error", o.Err,
		)
	}
	if err := ctx.Err(); err != nil {
		return pairStats{}, true, err
	}
	if len(failures) == len(requests) {
		return pairStats{}, true, fmt.Errorf("%w: %w", errGraphUnavailable, errors.Join(failures...))
	}

	borrowerNet := scoring.NewNetwork(lists[0], lists[1])
	viewerNet := scoring.NewNetwork(lists[2], lists[3])
	mutual := borrowerNet.Mutual(viewerNet)

	stats = pairStats{
		MutualCount:           len(mutual),
		OverlapPercent:        scoring.OverlapPercent(len(mutual), borrowerNet.UnionSize(viewerNet)),
		BorrowerNetworkSize:   len(borrowerNet),
		ViewerNetworkSize:     len(viewerNet),
		BorrowerFollowsViewer: scoring.NewNetwork(lists[1]).Contains(viewerID),
		ViewerFollowsBorrower: scoring.NewNetwork(lists[3]).Contains(borrowerID),
	}
	weight, weightDegraded := e.mutualWeight(ctx, mutual)
	stats.RawWeight = weight
	if err := ctx.Err(); err != nil {
		return pairStats{}, true, err
	}
	return stats, len(failures) > 0 || weightDegraded, nil
}

// mutualWeight is the Adamic-Adar sum over mutual. Only the first
// MaxWeightedMutuals ids are looked up; the rest, and every failed lookup,
// count at AssumedDegree. The flag reports failed lookups only.
func (e *Engine) mutualWeight(ctx context.Context, mutual []int64) (float64, bool) {
	if len(mutual) == 0 {
		return 0, false
	}
	limit := min(len(mutual), e.params.MaxWeightedMutuals)

	outcomes := workpool.Map(ctx, e.degreePool, mutual[:limit], e.degree)
	degrees := make([]int, 0, len(mutual))
	failed := 0
	for _, o := range outcomes {
		if o.OK() {
			degrees = append(degrees, o.Value)
			continue
		}
		failed++
		degrees = append(degrees, e.params.AssumedDegree)
	}
	for range mutual[limit:] {
		degrees = append(degrees, e.params.AssumedDegree)
	}
	if failed > 0 || limit < len(mutual) {
		e.logger.Debug("mutual degrees assumed",
			"mutuals", len(mutual),
			"failed", failed,
			"unweighted", len(mutual)-limit,
		)
	}
	return scoring.AdamicAdar(degrees), failed > 0
}

func (e *Engine) applyQuality(borrowerID, viewerID int64, stats pairStats, borrowerQuality, viewerQuality *float64) domain.ProximityScore {
	avg := scoring.AverageQuality(borrowerQuality, viewerQuality, e.params.DefaultQuality)
	weight := stats.RawWeight * avg
	distance := e.params.SocialDistance(weight, stats.OverlapPercent, stats.BorrowerFollowsViewer, stats.ViewerFollowsBorrower)

	return domain.ProximityScore{
		BorrowerID:            borrowerID,
		ViewerID:              viewerID,
		MutualCount:           stats.MutualCount,
		EffectiveMutualWeight: weight,
		SocialDistance:        distance,
		RiskTier:              e.params.RiskTier(weight, distance),
		OverlapPercent:        stats.OverlapPercent,
		QualityTier:           e.params.QualityTier(avg),
		AverageQuality:        avg,
		BorrowerNetworkSize:   stats.BorrowerNetworkSize,
		ViewerNetworkSize:     stats.ViewerNetworkSize,
		BorrowerFollowsViewer: stats.BorrowerFollowsViewer,
		ViewerFollowsBorrower: stats.ViewerFollowsBorrower,
	}
}
