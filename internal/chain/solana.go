package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

const lamportsExponent = -9

// SolanaOptions configures a SolanaProvider.
type SolanaOptions struct {
	Endpoint   string
	PageSize   int
	MaxPages   int
	Commitment rpc.CommitmentType
}

// SolanaProvider derives wallet history from Solana JSON-RPC.
type SolanaProvider struct {
	rpc        *rpc.Client
	pageSize   int
	maxPages   int
	commitment rpc.CommitmentType
}

// NewSolanaProvider connects to the RPC endpoint. No request is issued until
// the first lookup.
func NewSolanaProvider(opts SolanaOptions) *SolanaProvider {
	if opts.Endpoint == "" {
		opts.Endpoint = rpc.MainNetBeta_RPC
	}
	if opts.PageSize <= 0 || opts.PageSize > 1000 {
		opts.PageSize = 1000
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	return &SolanaProvider{
		rpc:        rpc.New(opts.Endpoint),
		pageSize:   opts.PageSize,
		maxPages:   opts.MaxPages,
		commitment: opts.Commitment,
	}
}

// Ping asks the RPC node whether it is healthy.
func (p *SolanaProvider) Ping(ctx context.Context) error {
	status, err := p.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("rpc health: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("rpc health: %s", status)
	}
	return nil
}

// Close releases the RPC transport.
func (p *SolanaProvider) Close() error {
	return p.rpc.Close()
}

// WalletHistory returns first/last activity, transaction count and SOL balance.
// Histories longer than MaxPages*PageSize signatures are truncated, so
// FirstSeen is the oldest signature inside that window.
func (p *SolanaProvider) WalletHistory(ctx context.Context, address string) (domain.WalletHistory, error) {
	address = strings.TrimSpace(address)
	history := domain.WalletHistory{Address: address, Balance: decimal.Zero}

	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return history, fmt.Errorf("parse solana address %q: %w", address, err)
	}

	balance, err := p.rpc.GetBalance(ctx, account, p.commitment)
	if err != nil {
		return history, fmt.Errorf("get balance: %w", err)
	}
	if balance != nil {
		history.Balance = lamportsToSOL(balance.Value)
	}

	var before solana.Signature
	for page := 0; page < p.maxPages; page++ {
		limit := p.pageSize
		opts := &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Before:     before,
			Commitment: p.commitment,
		}
		sigs, err := p.rpc.GetSignaturesForAddressWithOpts(ctx, account, opts)
		if err != nil {
			return history, fmt.Errorf("get signatures page %d: %w", page, err)
		}

		for _, sig := range sigs {
			if sig == nil {
				continue
			}
			history.TxCount++
			if sig.BlockTime == nil {
				continue
			}
			at := sig.BlockTime.Time().UTC()
			if history.LastSeen.IsZero() || at.After(history.LastSeen) {
				history.LastSeen = at
			}
			if history.FirstSeen.IsZero() || at.Before(history.FirstSeen) {
				history.FirstSeen = at
			}
		}

		if len(sigs) < p.pageSize || sigs[len(sigs)-1] == nil {
			break
		}
		before = sigs[len(sigs)-1].Signature
	}
	return history, nil
}

func lamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.New(int64(lamports), lamportsExponent)
}
