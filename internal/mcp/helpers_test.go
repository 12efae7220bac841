package mcp

import (
	"errors"
	"fmt"
	"testing"

	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/config"
)

func TestSelectionResult(t *testing.T) {
	snap := capacity.SelectionSnapshot{Products: []string{"BOWL"}, Limit: capacity.MaxCombinations, Combinations: 1}

	out, err := selectionResult(snap, nil)
	if err != nil || out.Warning != "" || out.Selection.Combinations != 1 {
		t.Errorf("Unexpected accepted result: %+v, %v", out, err)
	}

	limit := fmt.Errorf("wrapped: %w", &capacity.SelectionLimitError{Attempted: 6, Limit: 5})
	out, err = selectionResult(snap, limit)
	if err != nil {
		t.Fatalf("Expected limit to become a warning, got error %v", err)
	}
	if out.Warning != "sorry, you can't add more than 5 combinations (attempted 6)" {
		t.Errorf("Unexpected warning %q", out.Warning)
	}
	if len(out.Selection.Products) != 1 {
		t.Errorf("Expected the prior selection in the result, got %+v", out.Selection)
	}

	_, err = selectionResult(snap, capacity.ErrProductNotSelected)
	if !errors.Is(err, capacity.ErrProductNotSelected) {
		t.Errorf("Expected other errors to pass through, got %v", err)
	}
}

func TestChartsEnabled(t *testing.T) {
	if !(&Server{}).chartsEnabled() {
		t.Error("Expected charts without configuration")
	}
	if (&Server{cfg: &config.AppConfig{EnableMermaidCharts: false}}).chartsEnabled() {
		t.Error("Expected ENABLE_MERMAID_CHARTS=false to disable charts")
	}
}
