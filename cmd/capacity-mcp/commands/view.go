package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/visuals"

	"github.com/spf13/cobra"
)

var (
	viewSelection selectionFlags
	viewDate      string
	viewChart     bool
	viewJSON      bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the ranked capacity cards for the selection",
	Example: `  capacity-mcp view --products BOWL,PLATE --sizes "PLATE=10 INCH;12 INCH"
  capacity-mcp view --products BOWL --date 01-06-2025 --chart`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if err := viewSelection.apply(ctx, loader); err != nil {
			return err
		}
		engine := loader.Engine()

		var bundles []capacity.RenderBundle
		if viewDate != "" {
			bundle, err := engine.BundleForDate(viewDate)
			if err != nil {
				return err
			}
			bundles = []capacity.RenderBundle{bundle}
		} else {
			bundles = engine.Bundles()
		}

		out := cmd.OutOrStdout()
		if viewJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(bundles)
		}
		if err := writeBundles(out, bundles); err != nil {
			return err
		}

		if viewChart && cfg.EnableMermaidCharts {
			chart := visuals.GenerateCapacityChart(engine.DateAxis().Labels(), engine.Series())
			if viewDate != "" && len(bundles) == 1 {
				chart = visuals.GenerateBundleChart(bundles[0])
			}
			if chart != "" {
				fmt.Fprintln(out, chart)
			}
		}
		return nil
	},
}

func init() {
	viewSelection.register(viewCmd)
	viewCmd.Flags().StringVar(&viewDate, "date", "", "only this date (DD-MM-YYYY)")
	viewCmd.Flags().BoolVar(&viewChart, "chart", false, "append a Mermaid chart")
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "print the bundles as JSON")
	rootCmd.AddCommand(viewCmd)
}

// writeBundles prints each date with its product and size cards, lowest capacity first.
func writeBundles(w io.Writer, bundles []capacity.RenderBundle) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range bundles {
		fmt.Fprintf(tw, "%s\t\t\n", b.Date)
		for _, group := range []struct {
			title   string
			entries []capacity.BundleEntry
		}{
			{"Products", b.ProductOnly},
			{"Sizes", b.ProductSize},
		} {
			if len(group.entries) == 0 {
				continue
			}
			fmt.Fprintf(tw, "  %s\t\t\n", group.title)
			for _, e := range group.entries {
				fmt.Fprintf(tw, "    %s\t%s\t\n", e.Label, strconv.FormatFloat(e.Capacity, 'f', -1, 64))
			}
		}
	}
	return tw.Flush()
}
