package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/reelmatch"
)

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Compute and store the neighbor snapshot for the configured dataset",
	Args:  cobra.NoArgs,
	RunE:  runPrecompute,
}

func runPrecompute(cmd *cobra.Command, args []string) error {
	app, snap, err := reelmatch.Precompute(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "movies:   %d\n", snap.Rows)
	fmt.Fprintf(out, "depth:    %d\n", snap.K)
	fmt.Fprintf(out, "dataset:  %s\n", app.Catalog.Fingerprint)
	fmt.Fprintf(out, "key:      %s\n", snap.Fingerprint)
	for _, stage := range []string{"load", "combine", "vectorize", "similarity", "snapshot"} {
		if s, ok := app.Stats.Stages[stage]; ok {
			fmt.Fprintf(out, "%-10s%s\n", stage+":", s.Duration)
		}
	}
	return nil
}
