package backend

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"capacity-mcp/internal/capacity"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// FileSource reads both datasets from local exports of the backend tables.
// Supported formats: .json (bare array or backend envelope), .csv and .xlsx
// (first sheet); tabular files carry a header row.
type FileSource struct {
	ProductOnlyPath string
	ProductSizePath string
}

// NewFileSource creates a source over two local files.
func NewFileSource(productOnlyPath, productSizePath string) *FileSource {
	return &FileSource{ProductOnlyPath: productOnlyPath, ProductSizePath: productSizePath}
}

func (s *FileSource) FetchDatasets(ctx context.Context) (*Datasets, error) {
	productOnly, err := ReadRecords(s.ProductOnlyPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	productSize, err := ReadRecords(s.ProductSizePath)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("productFile", s.ProductOnlyPath).
		Str("sizeFile", s.ProductSizePath).
		Int("productRows", len(productOnly)).
		Int("sizeRows", len(productSize)).
		Msg("Loaded capacity datasets from files")
	return &Datasets{ProductOnly: productOnly, ProductSize: productSize, FetchedAt: time.Now()}, nil
}

// ReadRecords reads one dataset file, choosing the decoder by extension.
func ReadRecords(path string) ([]capacity.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSON(path)
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported dataset file %q: want .json, .csv or .xlsx", path)
	}
}

func readJSON(path string) ([]capacity.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if rows, ok := doc.([]any); ok {
		return toRecords(rows), nil
	}
	rows, err := decodeEnvelope(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readCSV(path string) ([]capacity.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tableToRecords(rows), nil
}

func readXLSX(path string) ([]capacity.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	return tableToRecords(rows), nil
}

// tableToRecords maps each data row onto the header row. Cells stay strings;
// the capacity normalizer parses numeric text.
func tableToRecords(rows [][]string) []capacity.Record {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := make([]capacity.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(capacity.Record, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			rec[key] = cell
		}
		out = append(out, rec)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
