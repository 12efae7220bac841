package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/export"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exportSelection selectionFlags
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the adjusted capacity of the selection to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if err := exportSelection.apply(ctx, loader); err != nil {
			return err
		}
		engine := loader.Engine()

		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.ExportDir, "capacity.xlsx")
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		if err := writeWorkbook(f, engine); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		log.Info().Str("path", out).Msg("Capacity workbook exported")
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// writeWorkbook writes the workbook to wc and closes it, returning the first error.
func writeWorkbook(wc io.WriteCloser, engine *capacity.Engine) error {
	err := export.WriteWorkbook(wc, engine.DateAxis().Labels(), engine.Series(), engine.Bundles())
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	exportSelection.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <DATA_PATH>/exports/capacity.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
