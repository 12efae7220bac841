package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/visuals"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

type EmptyInput struct{}

type LoadOutput struct {
	Dates     []string `json:"dates"`
	Products  []string `json:"products"`
	FetchedAt string   `json:"fetched_at,omitempty"`
}

type ProductsOutput struct {
	Products []string `json:"products"`
}

type SizesInput struct {
	ProductCode string `json:"product_code" jsonschema:"the product code, e.g. PLATE"`
}

type SizesOutput struct {
	ProductCode string   `json:"product_code"`
	Sizes       []string `json:"sizes"`
}

type SelectProductsInput struct {
	ProductCodes []string `json:"product_codes" jsonschema:"the complete new set of selected product codes; an empty list clears the selection"`
}

type SelectSizesInput struct {
	ProductCode string   `json:"product_code" jsonschema:"a product code that is already selected"`
	Sizes       []string `json:"sizes" jsonschema:"the complete new set of sizes for this product; an empty list clears them"`
}

// SelectionOutput is the selection in force after a tool call. Warning is set
// when the requested change was rejected.
type SelectionOutput struct {
	Selection capacity.SelectionSnapshot `json:"selection"`
	Warning   string                     `json:"warning,omitempty"`
}

type BundleInput struct {
	Date         string `json:"date" jsonschema:"a date of the axis in DD-MM-YYYY format"`
	IncludeChart bool   `json:"include_chart,omitempty" jsonschema:"add a Mermaid bar chart of the ranked cards"`
}

type BundleOutput struct {
	Bundle capacity.RenderBundle `json:"bundle"`
	Chart  string                `json:"chart,omitempty"`
}

type TimelineInput struct {
	IncludeChart bool `json:"include_chart,omitempty" jsonschema:"add a Mermaid line chart of the adjusted capacity"`
}

type TimelineOutput struct {
	Dates   []string                `json:"dates"`
	Series  []capacity.SeriesView   `json:"series"`
	Bundles []capacity.RenderBundle `json:"bundles"`
	Chart   string                  `json:"chart,omitempty"`
}

func (s *Server) handleLoad(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, LoadOutput, error) {
	summary, err := s.loader.Reload(ctx)
	if err != nil {
		return nil, LoadOutput{}, err
	}
	out := LoadOutput{Dates: summary.Dates, Products: summary.Products}
	if !summary.FetchedAt.IsZero() {
		out.FetchedAt = summary.FetchedAt.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleListProducts(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ProductsOutput, error) {
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, ProductsOutput{}, err
	}
	return nil, ProductsOutput{Products: nonNil(engine.ProductOptions())}, nil
}

func (s *Server) handleListSizes(ctx context.Context, _ *mcp.CallToolRequest, in SizesInput) (*mcp.CallToolResult, SizesOutput, error) {
	code := strings.TrimSpace(in.ProductCode)
	if code == "" {
		return nil, SizesOutput{}, fmt.Errorf("product_code is required")
	}
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, SizesOutput{}, err
	}
	return nil, SizesOutput{ProductCode: code, Sizes: nonNil(engine.SizeOptions(code))}, nil
}

func (s *Server) handleSelectProducts(ctx context.Context, _ *mcp.CallToolRequest, in SelectProductsInput) (*mcp.CallToolResult, SelectionOutput, error) {
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, SelectionOutput{}, err
	}
	out, err := selectionResult(engine.SelectProducts(in.ProductCodes))
	return nil, out, err
}

func (s *Server) handleSelectSizes(ctx context.Context, _ *mcp.CallToolRequest, in SelectSizesInput) (*mcp.CallToolResult, SelectionOutput, error) {
	code := strings.TrimSpace(in.ProductCode)
	if code == "" {
		return nil, SelectionOutput{}, fmt.Errorf("product_code is required")
	}
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, SelectionOutput{}, err
	}
	out, err := selectionResult(engine.SelectSizes(code, in.Sizes))
	return nil, out, err
}

func (s *Server) handleGetSelection(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, SelectionOutput, error) {
	engine := s.loader.Engine()
	out := SelectionOutput{Selection: engine.Selection()}
	if w := engine.Warning(); w != nil {
		out.Warning = w.Error()
	}
	return nil, out, nil
}

func (s *Server) handleGetBundle(ctx context.Context, _ *mcp.CallToolRequest, in BundleInput) (*mcp.CallToolResult, BundleOutput, error) {
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, BundleOutput{}, err
	}
	date := strings.TrimSpace(in.Date)
	bundle, err := engine.BundleForDate(date)
	if err != nil {
		return nil, BundleOutput{}, err
	}

	out := BundleOutput{Bundle: bundle}
	if in.IncludeChart && s.chartsEnabled() {
		out.Chart = visuals.GenerateBundleChart(bundle)
	}
	return nil, out, nil
}

func (s *Server) handleGetTimeline(ctx context.Context, _ *mcp.CallToolRequest, in TimelineInput) (*mcp.CallToolResult, TimelineOutput, error) {
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, TimelineOutput{}, err
	}

	out := TimelineOutput{
		Dates:   nonNil(engine.DateAxis().Labels()),
		Series:  engine.Series(),
		Bundles: engine.Bundles(),
	}
	if out.Series == nil {
		out.Series = []capacity.SeriesView{}
	}
	if in.IncludeChart && s.chartsEnabled() {
		out.Chart = visuals.GenerateCapacityChart(out.Dates, out.Series)
	}

	log.Debug().Int("series", len(out.Series)).Int("dates", len(out.Dates)).Msg("Timeline composed")
	return nil, out, nil
}
