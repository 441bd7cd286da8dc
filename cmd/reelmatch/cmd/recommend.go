package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/reelmatch"
	"github.com/hubenschmidt/reelmatch/core"
)

var recommendJSON bool

var recommendCmd = &cobra.Command{
	Use:   "recommend <title...>",
	Short: "Print movies similar to a title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	app, err := reelmatch.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	query := strings.Join(args, " ")
	res, err := app.Engine.Recommend(cmd.Context(), query)
	out := cmd.OutOrStdout()
	if errors.Is(err, core.ErrNoMatch) {
		fmt.Fprintf(out, "No recommendations found for %q.\n", query)
		return nil
	}
	if err != nil {
		return err
	}

	if recommendJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "Recommendations for %q (matched %q):\n\n", app.Engine.TitleCase(res.Query), app.Engine.TitleCase(res.Match))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tSCORE")
	for i, r := range res.Recommendations {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i+1, r.Title, r.Score)
	}
	return tw.Flush()
}

func init() {
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "print the result as JSON")
}
