package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
)

// AnalyzeWallet scores the on-chain history of address. The raw history is
// cached so that recency is always measured against the current time.
func (e *Engine) AnalyzeWallet(ctx context.Context, address string) (domain.ActivityScore, error) {
	address = domain.NormalizeAddress(address)
	if address == "" {
		return domain.ActivityScore{}, ErrEmptyAddress
	}
	if e.wallets == nil {
		return domain.ActivityScore{Address: address}, ErrNoWalletProvider
	}

	history, err := cache.WithCache(ctx, e.cache, "wallet:"+address, e.params.WalletTTL, func(ctx context.Context) (domain.WalletHistory, error) {
		fctx, cancel := e.fetchContext(ctx)
		defer cancel()
		return e.wallets.WalletHistory(fctx, address)
	})
	if err != nil {
		return domain.ActivityScore{Address: address}, fmt.Errorf("analyze wallet %s: %w", address, err)
	}
	history.Address = address
	return scoring.WalletActivity(history, e.nowFn()), nil
}

// ComputeReputation blends social and wallet signals into a 0-100 score. It
// returns nil only when address is empty. Either half failing contributes
// zero to its budget.
func (e *Engine) ComputeReputation(ctx context.Context, address string) *domain.ReputationScore {
	address = domain.NormalizeAddress(address)
	if address == "" {
		return nil
	}

	var (
		wg       sync.WaitGroup
		identity *domain.Identity
		wallet   *domain.ActivityScore
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		id, err := e.Resolve(ctx, address)
		if err != nil {
			e.logger.Warn("identity lookup failed, social budget is zero", "address", address, "error", err)
			return
		}
		identity = id
	}()
	go func() {
		defer wg.Done()
		score, err := e.AnalyzeWallet(ctx, address)
		if err != nil {
			e.logger.Warn("wallet analysis failed, wallet budget is zero", "address", address, "error", err)
			return
		}
		wallet = &score
	}()
	wg.Wait()

	var social map[string]int
	if identity != nil {
		social = scoring.SocialPoints(*identity, e.nowFn())
	}
	score := scoring.Composite(address, social, wallet)
	if identity != nil {
		score.FID = identity.ID
	}
	return &score
}
