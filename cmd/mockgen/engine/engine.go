package engine

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"capacity-mcp/internal/capacity"
)

// Output file names, matching the backend endpoints they stand in for.
const (
	ProductCapacityFile = "product-capacity"
	SizeCapacityFile    = "capacity"
)

type GeneratorConfig struct {
	Scenario     string // "steady", "shortfall" or "sparse"
	Distribution string // "uniform" or "weibull"
	Days         int
	Start        time.Time
	Seed         int64
}

// SizedProduct is a product code sold in several sizes.
type SizedProduct struct {
	Code  string
	Sizes []string
}

var (
	productOnlyCatalog = []string{"BOWL", "CUP", "TRAY", "GLASS"}
	sizedCatalog       = []SizedProduct{
		{Code: "PLATE", Sizes: []string{"8 INCH", "10 INCH", "12 INCH", "14 INCH"}},
		{Code: "DISH", Sizes: []string{"6 INCH", "8 INCH"}},
	}
)

// Generate builds the product-only and product+size datasets for cfg.Days
// consecutive dates starting at cfg.Start.
func Generate(cfg GeneratorConfig) (productOnly, productSize []capacity.Record) {
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().AddDate(0, 0, -cfg.Days)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	dates := Dates(cfg)

	row := func(code, size string, scale float64) capacity.Record {
		rec := capacity.Record{capacity.ProductCodeKey: code}
		if size != "" {
			rec[capacity.SizeKey] = size
		}
		for i, date := range dates {
			if cfg.Scenario == "sparse" && rng.Float64() < 0.3 {
				continue
			}
			v := scale * sample(rng, cfg.Distribution)
			if cfg.Scenario == "shortfall" {
				// Dispatch days deduct capacity; the second half of the range dispatches more often.
				p := 0.2
				if i > cfg.Days/2 {
					p = 0.45
				}
				if rng.Float64() < p {
					v = -1.5 * v
				}
			}
			rec[date] = math.Round(v)
		}
		return rec
	}

	for _, code := range productOnlyCatalog {
		productOnly = append(productOnly, row(code, "", 1000))
	}
	for _, p := range sizedCatalog {
		for _, size := range p.Sizes {
			productSize = append(productSize, row(p.Code, size, 100))
		}
	}
	return productOnly, productSize
}

// sample draws a daily production amount around 1.
func sample(rng *rand.Rand, distribution string) float64 {
	if distribution == "weibull" {
		return weibullSample(rng, 2.0, 1.1)
	}
	return 0.5 + rng.Float64()
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes both datasets into outDir as backend envelopes (format "json")
// or header-row tables (format "csv") and returns the two paths.
func Save(outDir, format string, productOnly, productSize []capacity.Record, dates []string) (string, string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", "", err
	}

	productPath := filepath.Join(outDir, ProductCapacityFile+"."+format)
	sizePath := filepath.Join(outDir, SizeCapacityFile+"."+format)

	switch format {
	case "json":
		if err := saveJSON(productPath, productOnly); err != nil {
			return "", "", err
		}
		if err := saveJSON(sizePath, productSize); err != nil {
			return "", "", err
		}
	case "csv":
		if err := saveCSV(productPath, []string{capacity.ProductCodeKey}, dates, productOnly); err != nil {
			return "", "", err
		}
		if err := saveCSV(sizePath, []string{capacity.ProductCodeKey, capacity.SizeKey}, dates, productSize); err != nil {
			return "", "", err
		}
	default:
		return "", "", fmt.Errorf("unsupported format %q: want json or csv", format)
	}
	return productPath, sizePath, nil
}

// Dates lists the generated date labels in order.
func Dates(cfg GeneratorConfig) []string {
	dates := make([]string, cfg.Days)
	for i := range dates {
		dates[i] = cfg.Start.AddDate(0, 0, i).Format("02-01-2006")
	}
	return dates
}

func saveJSON(path string, records []capacity.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"success": true, "data": records})
}

func saveCSV(path string, identity, dates []string, records []capacity.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, identity...), dates...)); err != nil {
		return err
	}
	for _, rec := range records {
		line := make([]string, 0, len(identity)+len(dates))
		for _, key := range identity {
			line = append(line, fmt.Sprint(rec[key]))
		}
		for _, date := range dates {
			if v, ok := rec[date]; ok {
				line = append(line, fmt.Sprint(v))
			} else {
				line = append(line, "")
			}
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
