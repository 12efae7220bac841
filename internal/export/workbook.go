package export

import (
	"errors"
	"fmt"
	"io"

	"capacity-mcp/internal/capacity"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	CapacitySheet = "Capacity"
	BundlesSheet  = "Bundles"
)

// Workbook writes the adjusted capacity of the effective series into an xlsx file.
type Workbook struct {
	wb *excelize.File
}

// NewWorkbook creates an empty workbook with the capacity and bundle sheets.
func NewWorkbook() (*Workbook, error) {
	wb := excelize.NewFile()
	if err := wb.SetSheetName(wb.GetSheetName(0), CapacitySheet); err != nil {
		return nil, err
	}
	if _, err := wb.NewSheet(BundlesSheet); err != nil {
		return nil, err
	}
	return &Workbook{wb: wb}, nil
}

// WriteWorkbook renders dates, series and bundles as xlsx into w.
func WriteWorkbook(w io.Writer, dates []string, series []capacity.SeriesView, bundles []capacity.RenderBundle) error {
	book, err := NewWorkbook()
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	defer book.Close()

	if err := book.FillCapacity(dates, series); err != nil {
		return err
	}
	if err := book.FillBundles(bundles); err != nil {
		return err
	}
	if err := book.wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	log.Debug().Int("series", len(series)).Int("bundles", len(bundles)).Msg("Capacity workbook written")
	return nil
}

// FillCapacity writes the header "Series, Kind, <dates...>" and one row of
// adjusted values per series.
func (b *Workbook) FillCapacity(dates []string, series []capacity.SeriesView) error {
	if b == nil || b.wb == nil {
		return errors.New("workbook is nil")
	}

	header := make([]any, 0, len(dates)+2)
	header = append(header, "Series", "Kind")
	for _, d := range dates {
		header = append(header, d)
	}
	if err := b.setRow(CapacitySheet, 1, header); err != nil {
		return err
	}

	for i, s := range series {
		row := make([]any, 0, len(dates)+2)
		row = append(row, s.Label, string(s.Kind))
		for j := range dates {
			v := 0.0
			if j < len(s.Adjusted) {
				v = s.Adjusted[j]
			}
			row = append(row, v)
		}
		if err := b.setRow(CapacitySheet, i+2, row); err != nil {
			return err
		}
	}
	return b.styleHeader(CapacitySheet, 24)
}

// FillBundles writes every bundle card with its rank inside its family.
func (b *Workbook) FillBundles(bundles []capacity.RenderBundle) error {
	if b == nil || b.wb == nil {
		return errors.New("workbook is nil")
	}

	if err := b.setRow(BundlesSheet, 1, []any{"Date", "Family", "Rank", "Series", "Capacity"}); err != nil {
		return err
	}

	row := 2
	for _, bundle := range bundles {
		families := []struct {
			kind    capacity.SeriesKind
			entries []capacity.BundleEntry
		}{
			{capacity.KindProduct, bundle.ProductOnly},
			{capacity.KindProductSize, bundle.ProductSize},
		}
		for _, fam := range families {
			for rank, e := range fam.entries {
				if err := b.setRow(BundlesSheet, row, []any{bundle.Date, string(fam.kind), rank + 1, e.Label, e.Capacity}); err != nil {
					return err
				}
				row++
			}
		}
	}
	return b.styleHeader(BundlesSheet, 20)
}

// Close releases the workbook's temporary files.
func (b *Workbook) Close() error {
	return b.wb.Close()
}

func (b *Workbook) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := b.wb.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func (b *Workbook) styleHeader(sheet string, firstColWidth float64) error {
	style, err := b.wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := b.wb.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}
	col := "A"
	if sheet == BundlesSheet {
		col = "D"
	}
	return b.wb.SetColWidth(sheet, col, col, firstColWidth)
}
