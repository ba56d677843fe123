package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/workpool"
)

// ComputeLoanSupport measures how connected a loan's lenders are to its
// borrower. Lender order and duplicates do not matter. The result is cached
// per borrower and lender set; includeDetail only controls what is returned.
func (e *Engine) ComputeLoanSupport(ctx context.Context, borrowerAddress string, lenderAddresses []string, includeDetail bool) domain.LoanSocialSupport {
	borrower := domain.NormalizeAddress(borrowerAddress)
	lenders := canonicalLenders(lenderAddresses)
	if len(lenders) == 0 {
		return domain.NoLenders(borrower)
	}
	if borrower == "" {
		return e.unsupported(borrower, lenders, includeDetail)
	}

	key := supportKey(borrower, lenders)
	support, ok := cache.Lookup[domain.LoanSocialSupport](ctx, e.cache, key)
	if !ok {
		var (
			degraded bool
			err      error
		)
		support, degraded, err = e.loanSupport(ctx, borrower, lenders)
		if err != nil {
			e.logger.Warn("loan support degraded to none", "borrower", borrower, "lenders", len(lenders), "error", err)
			return e.unsupported(borrower, lenders, includeDetail)
		}
		if degraded {
			e.logger.Warn("loan support computed from partial data, not cached", "borrower", borrower, "lenders", len(lenders))
		} else if err := cache.Put(ctx, e.cache, key, e.params.SupportTTL, support); err != nil {
			e.logger.Warn("loan support not cached", "borrower", borrower, "error", err)
		}
	}
	if !includeDetail {
		support.PerLenderDetail = nil
	}
	return support
}

// loanSupport reports degraded when lender resolution or any lender's
// proximity fell back on a failed fetch.
func (e *Engine) loanSupport(ctx context.Context, borrowerAddress string, lenders []string) (domain.LoanSocialSupport, bool, error) {
	support := domain.LoanSocialSupport{
		BorrowerAddress: borrowerAddress,
		PerLenderDetail: make([]domain.LenderConnection, len(lenders)),
	}
	for i, address := range lenders {
		support.PerLenderDetail[i] = domain.LenderConnection{Address: address}
	}

	borrower, err := e.Resolve(ctx, borrowerAddress)
	if err != nil {
		return support, true, err
	}
	if borrower == nil {
		return e.params.Summarize(support), false, nil
	}

	degraded := false
	identities, err := e.ResolveMany(ctx, lenders)
	if err != nil {
		degraded = true
		e.logger.Warn("lender resolution failed, treating lenders as unresolved", "borrower", borrowerAddress, "error", err)
	}

	type lenderResult struct {
		mutual   int
		degraded bool
	}
	outcomes := workpool.Map(ctx, e.lenderPool, lenders, func(ctx context.Context, address string) (lenderResult, error) {
		lender := identities[address]
		if lender == nil || lender.ID == borrower.ID {
			return lenderResult{}, nil
		}
		score, partial := e.proximity(ctx, borrower.ID, lender.ID, borrower.QualityScore, lender.QualityScore)
		return lenderResult{mutual: score.MutualCount, degraded: partial}, nil
	})
	if err := ctx.Err(); err != nil {
		return support, true, err
	}
	for i, o := range outcomes {
		if !o.OK() {
			degraded = true
			continue
		}
		support.PerLenderDetail[i].MutualConnections = o.Value.mutual
		degraded = degraded || o.Value.degraded
	}
	return e.params.Summarize(support), degraded, nil
}

// unsupported is the zeroed result for a loan whose support cannot be assessed.
func (e *Engine) unsupported(borrower string, lenders []string, includeDetail bool) domain.LoanSocialSupport {
	support := domain.LoanSocialSupport{BorrowerAddress: borrower}
	for _, address := range lenders {
		support.PerLenderDetail = append(support.PerLenderDetail, domain.LenderConnection{Address: address})
	}
	support = e.params.Summarize(support)
	if !includeDetail {
		support.PerLenderDetail = nil
	}
	return support
}

// canonicalLenders normalizes, de-duplicates and sorts lender addresses.
func canonicalLenders(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, raw := range addresses {
		address := domain.NormalizeAddress(raw)
		if address == "" {
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		out = append(out, address)
	}
	sort.Strings(out)
	return out
}

func supportKey(borrower string, sortedLenders []string) string {
	return "support:" + borrower + ":" + hashValue(strings.Join(sortedLenders, ","))
}

// hashValue produces a hex encoded SHA-256 digest.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
