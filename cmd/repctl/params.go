package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aagoldberg/far-mca-sub002/internal/config"
)

func paramsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the effective scoring parameters as YAML",
		Long: `Print the effective scoring parameters: the defaults overlaid with the
file named by --file, or by SCORING_CONFIG when --file is not set. The output
is itself a valid parameter file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = os.Getenv("SCORING_CONFIG")
			}
			params, err := config.LoadScoringParams(file)
			if err != nil {
				return err
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			defer encoder.Close()
			return encoder.Encode(params)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "scoring parameter file (YAML)")
	return cmd
}
