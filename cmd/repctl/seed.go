package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aagoldberg/far-mca-sub002/internal/app"
	"github.com/aagoldberg/far-mca-sub002/internal/config"
	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/generator"
	"github.com/aagoldberg/far-mca-sub002/internal/logging"
	"github.com/aagoldberg/far-mca-sub002/internal/repository"
	"github.com/aagoldberg/far-mca-sub002/internal/workpool"
)

func seedCmd() *cobra.Command {
	var (
		datasetDir string
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a generated dataset into the Neo4j social graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).With("component", "seed")

			dataset, err := generator.ReadDataset(datasetDir)
			if err != nil {
				return err
			}
			if len(dataset.Identities) == 0 {
				return fmt.Errorf("dataset in %s has no identities", datasetDir)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client, err := app.BuildGraphClient(ctx, cfg.Graph)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(context.Background()); err != nil {
					logger.Warn("closing graph client failed", "error", err)
				}
			}()
			if err := client.VerifyConnectivity(ctx); err != nil {
				return fmt.Errorf("connect to graph: %w", err)
			}
			logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)

			repo := repository.New(client)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			start := time.Now()
			if err := seedDataset(ctx, repo, workpool.New(workers), dataset); err != nil {
				return err
			}
			logger.Info("seeding complete",
				"duration", time.Since(start).String(),
				"identities", len(dataset.Identities),
				"follow_lists", len(dataset.Follows),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetDir, "dataset-dir", "data", "directory containing identities.json and follows.json")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent writers")
	return cmd
}

type seedWriter interface {
	UpsertIdentity(ctx context.Context, id domain.Identity) error
	UpsertFollows(ctx context.Context, fid int64, followees []int64) error
}

// seedDataset writes identities before follows so that follow edges always
// attach to existing nodes.
func seedDataset(ctx context.Context, repo seedWriter, pool *workpool.Pool, dataset generator.Dataset) error {
	err := pool.Run(ctx, len(dataset.Identities), func(idx int) error {
		id := dataset.Identities[idx]
		if err := repo.UpsertIdentity(ctx, id.Identity()); err != nil {
			return fmt.Errorf("identity %d: %w", id.FID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed identities: %w", err)
	}

	err = pool.Run(ctx, len(dataset.Follows), func(idx int) error {
		f := dataset.Follows[idx]
		if err := repo.UpsertFollows(ctx, f.FID, f.Following); err != nil {
			return fmt.Errorf("follows of %d: %w", f.FID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed follows: %w", err)
	}
	return nil
}
