package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/novel-lexicon/internal/observability"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the analysis stages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		observability.NewPrinter(cmd.OutOrStdout()).PrintStages(stages.Ordered())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}
