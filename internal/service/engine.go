package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
	"github.com/aagoldberg/far-mca-sub002/internal/workpool"
)

var (
	// ErrEmptyAddress is returned when a caller supplies no wallet address.
	ErrEmptyAddress = errors.New("address is required")
	// ErrNoWalletProvider is returned by AnalyzeWallet when no on-chain
	// provider is configured.
	ErrNoWalletProvider = errors.New("no wallet history provider configured")
)

// SocialGraph is the social-identity provider contract. An address with no
// profile is a normal outcome: nil from FetchProfileByAddress and a missing
// key from FetchProfilesByAddresses.
type SocialGraph interface {
	FetchFollowers(ctx context.Context, fid int64) ([]int64, error)
	FetchFollowing(ctx context.Context, fid int64) ([]int64, error)
	FetchProfileByAddress(ctx context.Context, address string) (*domain.Identity, error)
	FetchProfilesByAddresses(ctx context.Context, addresses []string) (map[string]domain.Identity, error)
}

// WalletHistoryProvider supplies the on-chain facts the wallet analyzer scores.
type WalletHistoryProvider interface {
	WalletHistory(ctx context.Context, address string) (domain.WalletHistory, error)
}

// Engine computes proximity, reputation and loan support scores. Every
// public entry point returns a well-formed conservative result when its
// providers fail.
type Engine struct {
	graph   SocialGraph
	wallets WalletHistoryProvider
	cache   *cache.Cache
	params  scoring.Params
	logger  *slog.Logger
	nowFn   func() time.Time

	basePool   *workpool.Pool
	degreePool *workpool.Pool
	lenderPool *workpool.Pool
}

// NewEngine wires an Engine. wallets and c may be nil; a nil cache disables
// memoization and a nil wallet provider scores every wallet as empty.
func NewEngine(graph SocialGraph, wallets WalletHistoryProvider, c *cache.Cache, params scoring.Params, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	params = params.WithDefaults()
	return &Engine{
		graph:      graph,
		wallets:    wallets,
		cache:      c,
		params:     params,
		logger:     logger.With("component", "engine"),
		nowFn:      time.Now,
		basePool:   workpool.New(4),
		degreePool: workpool.New(params.DegreeConcurrency),
		lenderPool: workpool.New(params.LenderConcurrency),
	}
}

// WithClock overrides the time provider of the engine and its cache (used
// primarily in tests).
func (e *Engine) WithClock(nowFn func() time.Time) {
	if nowFn == nil {
		return
	}
	e.nowFn = nowFn
	if e.cache != nil {
		e.cache.WithClock(nowFn)
	}
}

// Params returns the effective scoring parameters.
func (e *Engine) Params() scoring.Params {
	return e.params
}

func (e *Engine) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.params.FetchTimeout)
}
