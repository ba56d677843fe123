package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aagoldberg/far-mca-sub002/internal/generator"
)

func datagenCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		outputDir   string
		writeStdout bool
	)
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate a synthetic social graph dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InCommunityChance = clampProbability(cfg.InCommunityChance)
			cfg.PowerBadgeChance = clampProbability(cfg.PowerBadgeChance)
			cfg.QualityKnownChance = clampProbability(cfg.QualityKnownChance)
			cfg.SolanaWalletChance = clampProbability(cfg.SolanaWalletChance)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			dataset, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if writeStdout {
				return printJSON(cmd.OutOrStdout(), dataset)
			}
			if err := generator.WriteDataset(dataset, outputDir); err != nil {
				return fmt.Errorf("write dataset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d identities and %d follow lists into %s\n",
				len(dataset.Identities), len(dataset.Follows), outputDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.NumIdentities, "identities", cfg.NumIdentities, "number of identities to generate")
	flags.IntVar(&cfg.AvgFollowing, "avg-following", cfg.AvgFollowing, "average number of accounts each identity follows")
	flags.IntVar(&cfg.CommunitySize, "community-size", cfg.CommunitySize, "identities per community")
	flags.Float64Var(&cfg.InCommunityChance, "in-community-chance", cfg.InCommunityChance, "probability a follow stays inside the community")
	flags.Float64Var(&cfg.PowerBadgeChance, "power-badge-chance", cfg.PowerBadgeChance, "probability of a power badge")
	flags.Float64Var(&cfg.QualityKnownChance, "quality-chance", cfg.QualityKnownChance, "probability an identity has a quality score")
	flags.Float64Var(&cfg.SolanaWalletChance, "solana-chance", cfg.SolanaWalletChance, "probability of an extra Solana wallet")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for deterministic generation")
	flags.StringVar(&outputDir, "output-dir", "data", "directory to write identities.json and follows.json")
	flags.BoolVar(&writeStdout, "stdout", false, "write combined dataset to stdout instead of files")
	return cmd
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
