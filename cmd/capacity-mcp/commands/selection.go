package commands

import (
	"context"
	"fmt"
	"strings"

	"capacity-mcp/internal/backend"

	"github.com/spf13/cobra"
)

// selectionFlags are shared by the commands that render a selection.
type selectionFlags struct {
	products []string
	sizes    []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.products, "products", nil, "product codes to select, comma separated")
	cmd.Flags().StringArrayVar(&f.sizes, "sizes", nil, `sizes of one selected product as "CODE=SIZE;SIZE" (repeatable)`)
}

// apply loads the datasets and applies the selection: products first, then
// each size spec in flag order.
func (f *selectionFlags) apply(ctx context.Context, l *backend.Loader) error {
	if err := l.EnsureLoaded(ctx); err != nil {
		return err
	}
	engine := l.Engine()
	if len(f.products) > 0 {
		if _, err := engine.SelectProducts(f.products); err != nil {
			return err
		}
	}
	for _, spec := range f.sizes {
		code, sizes, err := parseSizeSpec(spec)
		if err != nil {
			return err
		}
		if _, err := engine.SelectSizes(code, sizes); err != nil {
			return err
		}
	}
	return nil
}

// parseSizeSpec splits "PLATE=10 INCH;12 INCH" into the code and its sizes.
func parseSizeSpec(spec string) (string, []string, error) {
	code, list, ok := strings.Cut(spec, "=")
	code = strings.TrimSpace(code)
	if !ok || code == "" {
		return "", nil, fmt.Errorf("invalid --sizes value %q: want CODE=SIZE;SIZE", spec)
	}
	var sizes []string
	for _, s := range strings.Split(list, ";") {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	return code, sizes, nil
}
