package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aagoldberg/far-mca-sub002/internal/app"
)

func proximityCmd() *cobra.Command {
	var byFID bool
	cmd := &cobra.Command{
		Use:   "proximity <borrower> <viewer>",
		Short: "Score the social proximity of a viewer to a borrower",
		Long: `Score how socially close a viewer is to a borrower.

Arguments are wallet addresses, or identity ids with --fid.

Examples:
  repctl proximity 0xabc... 0xdef...
  repctl proximity --fid 3 194`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var borrowerID, viewerID int64
			if byFID {
				var err error
				if borrowerID, err = strconv.ParseInt(args[0], 10, 64); err != nil {
					return fmt.Errorf("invalid borrower fid %q: %w", args[0], err)
				}
				if viewerID, err = strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("invalid viewer fid %q: %w", args[1], err)
				}
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if byFID {
					return printJSON(cmd.OutOrStdout(), a.Engine.ComputeProximity(ctx, borrowerID, viewerID, nil, nil))
				}
				score, err := a.Engine.ComputeProximityByAddress(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), score)
			})
		},
	}
	cmd.Flags().BoolVar(&byFID, "fid", false, "treat arguments as identity ids instead of addresses")
	return cmd
}

func reputationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reputation <address>",
		Short: "Compute the composite reputation of a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rep := a.Engine.ComputeReputation(ctx, args[0])
				if rep == nil {
					return errors.New("address is required")
				}
				return printJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
}

func loanSupportCmd() *cobra.Command {
	var detail bool
	cmd := &cobra.Command{
		Use:   "loan-support <borrower> [lender...]",
		Short: "Aggregate how connected a loan's lenders are to its borrower",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				support := a.Engine.ComputeLoanSupport(ctx, args[0], args[1:], detail)
				return printJSON(cmd.OutOrStdout(), support)
			})
		},
	}
	cmd.Flags().BoolVar(&detail, "detail", false, "include per-lender detail")
	return cmd
}
