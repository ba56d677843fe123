package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/aagoldberg/far-mca-sub002/internal/cache"
	"github.com/aagoldberg/far-mca-sub002/internal/chain"
	"github.com/aagoldberg/far-mca-sub002/internal/config"
	"github.com/aagoldberg/far-mca-sub002/internal/graph"
	"github.com/aagoldberg/far-mca-sub002/internal/repository"
	"github.com/aagoldberg/far-mca-sub002/internal/service"
	"github.com/aagoldberg/far-mca-sub002/internal/social"
)

// App holds the wired engine and the resources behind it.
type App struct {
	Engine     *service.Engine
	Graph      graph.Client
	Repository *repository.SocialGraphRepository

	store   cache.Store
	cache   *cache.Cache
	wallets *chain.SolanaProvider
	logger  *slog.Logger
}

// Build connects the configured providers and cache. Graph and Repository
// are nil when the HTTP social provider is selected.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	var socialGraph service.SocialGraph
	switch cfg.Social.Provider {
	case config.ProviderHTTP:
		socialGraph = social.NewHubClient(social.HubOptions{
			BaseURL:  cfg.Social.BaseURL,
			APIKey:   cfg.Social.APIKey,
			Timeout:  cfg.Social.Timeout,
			PageSize: cfg.Social.PageSize,
			MaxPages: cfg.Social.MaxPages,
		})
	default:
		client, err := BuildGraphClient(ctx, cfg.Graph)
		if err != nil {
			return nil, err
		}
		a.Graph = client
		a.Repository = repository.New(client)
		socialGraph = a.Repository
	}

	store, err := buildStore(cfg.Cache)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.store = store
	a.cache = cache.New(store, logger.With("component", "cache"))

	var wallets service.WalletHistoryProvider
	if cfg.Chain.RPCEndpoint != "" {
		a.wallets = chain.NewSolanaProvider(chain.SolanaOptions{
			Endpoint:   cfg.Chain.RPCEndpoint,
			PageSize:   cfg.Chain.PageSize,
			MaxPages:   cfg.Chain.MaxPages,
			Commitment: rpc.CommitmentType(cfg.Chain.Commitment),
		})
		wallets = a.wallets
	} else {
		logger.Warn("CHAIN_RPC_ENDPOINT not set, wallet scoring disabled")
	}

	a.Engine = service.NewEngine(socialGraph, wallets, a.cache, cfg.Scoring, logger)
	return a, nil
}

// BuildGraphClient opens the Neo4j driver described by cfg.
func BuildGraphClient(ctx context.Context, cfg config.GraphConfig) (graph.Client, error) {
	if cfg.URI == "" {
		return nil, graph.ErrMissingURI
	}
	return graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
		QueryTimeout:   cfg.QueryTimeout,
	})
}

func buildStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case config.CacheSQLite:
		store, err := cache.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
		return store, nil
	default:
		return cache.NewMemoryStore(), nil
	}
}

// Probes returns one readiness check per remote dependency Build opened.
func (a *App) Probes() map[string]func(context.Context) error {
	probes := map[string]func(context.Context) error{}
	if a.Graph != nil {
		probes["graph"] = a.Graph.VerifyConnectivity
	}
	if s, ok := a.store.(*cache.SQLiteStore); ok {
		probes["cache"] = s.Ping
	}
	if a.wallets != nil {
		probes["chain"] = a.wallets.Ping
	}
	return probes
}

// PurgeExpired drops expired cache entries and reports how many went.
func (a *App) PurgeExpired(ctx context.Context) (int64, error) {
	now := time.Now()
	if a.cache != nil {
		now = a.cache.Now()
	}
	switch s := a.store.(type) {
	case *cache.SQLiteStore:
		return s.Purge(ctx, now)
	case *cache.MemoryStore:
		return int64(s.Purge(now)), nil
	default:
		return 0, nil
	}
}

// Close releases every resource Build opened.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Graph != nil {
		if err := a.Graph.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close graph client: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.wallets != nil {
		if err := a.wallets.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rpc client: %w", err))
		}
	}
	return errors.Join(errs...)
}
