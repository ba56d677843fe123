package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aagoldberg/far-mca-sub002/internal/app"
	"github.com/aagoldberg/far-mca-sub002/internal/config"
	"github.com/aagoldberg/far-mca-sub002/internal/logging"
)

var Version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repctl",
		Short:         "Operate the social-proximity reputation engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(proximityCmd())
	rootCmd.AddCommand(reputationCmd())
	rootCmd.AddCommand(loanSupportCmd())
	rootCmd.AddCommand(datagenCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(paramsCmd())
	return rootCmd
}

// withApp loads configuration, wires the engine and runs fn under a
// context cancelled by SIGINT/SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).With("component", "repctl")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn("closing resources failed", "error", err)
		}
	}()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
