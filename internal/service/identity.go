package service

import (
	"context"
	"fmt"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

func identityKey(address string) string {
	return "identity:" + address
}

// Resolve maps a wallet address to its social identity. A nil identity with
// a nil error means the address has no profile; that absence is cached like
// any other answer.
func (e *Engine) Resolve(ctx context.Context, address string) (*domain.Identity, error) {
	address = domain.NormalizeAddress(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}
	return cache.WithCache(ctx, e.cache, identityKey(address), e.params.IdentityTTL, func(ctx context.Context) (*domain.Identity, error) {
		fctx, cancel := e.fetchContext(ctx)
		defer cancel()
		id, err := e.graph.FetchProfileByAddress(fctx, address)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", address, err)
		}
		return id, nil
	})
}

// ResolveMany resolves addresses with at most one provider round trip for
// the ones not already cached. The result is keyed by normalized address;
// addresses without a profile map to nil.
func (e *Engine) ResolveMany(ctx context.Context, addresses []string) (map[string]*domain.Identity, error) {
	out := make(map[string]*domain.Identity, len(addresses))
	var missing []string
	for _, raw := range addresses {
		address := domain.NormalizeAddress(raw)
		if address == "" {
			continue
		}
		if _, seen := out[address]; seen {
			continue
		}
		if id, ok := cache.Lookup[*domain.Identity](ctx, e.cache, identityKey(address)); ok {
			out[address] = id
			continue
		}
		out[address] = nil
		missing = append(missing, address)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fctx, cancel := e.fetchContext(ctx)
	defer cancel()
	profiles, err := e.graph.FetchProfilesByAddresses(fctx, missing)
	if err != nil {
		return out, fmt.Errorf("resolve %d addresses: %w", len(missing), err)
	}

	for _, address := range missing {
		var id *domain.Identity
		if profile, ok := profiles[address]; ok {
			profile := profile
			id = &profile
		}
		out[address] = id
		if err := cache.Put(ctx, e.cache, identityKey(address), e.params.IdentityTTL, id); err != nil {
			e.logger.Warn("identity not cached", "address", address, "error", err)
		}
	}
	return out, nil
}
