package mcp

import (
	"context"
	"errors"

	"capacity-mcp/internal/capacity"
)

// engine returns the session engine, loading the datasets on first use.
func (s *Server) engine(ctx context.Context) (*capacity.Engine, error) {
	if err := s.loader.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.loader.Engine(), nil
}

func (s *Server) chartsEnabled() bool {
	return s.cfg == nil || s.cfg.EnableMermaidCharts
}

// selectionResult turns a rejected change into a warning the model can read;
// any other failure stays a tool error.
func selectionResult(snap capacity.SelectionSnapshot, err error) (SelectionOutput, error) {
	var limitErr *capacity.SelectionLimitError
	if errors.As(err, &limitErr) {
		return SelectionOutput{Selection: snap, Warning: limitErr.Error()}, nil
	}
	if err != nil {
		return SelectionOutput{}, err
	}
	return SelectionOutput{Selection: snap}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
