package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"capacity-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, shortfall, sparse")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	outDir := flag.String("out", "./.cache", "Output directory for mock files")
	format := flag.String("format", "json", "Output format: json, csv")
	days := flag.Int("days", 30, "Number of consecutive dates to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Days:         *days,
		Start:        time.Now().AddDate(0, 0, -*days).Truncate(24 * time.Hour),
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Days: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Days, *outDir)

	productOnly, productSize := engine.Generate(cfg)

	productPath, sizePath, err := engine.Save(*outDir, *format, productOnly, productSize, engine.Dates(cfg))
	if err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. Use PRODUCT_CAPACITY_FILE=%s SIZE_CAPACITY_FILE=%s\n", productPath, sizePath)
}
