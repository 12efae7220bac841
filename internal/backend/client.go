package backend

import (
	"context"
	"errors"
	"time"

	"capacity-mcp/internal/capacity"
)

// Endpoint paths of the two capacity datasets on the backend.
const (
	ProductCapacityPath = "/api/csv/product-capacity"
	SizeCapacityPath    = "/api/csv/capacity"
)

// ErrBackend wraps every failure reported by, or while talking to, the backend.
var ErrBackend = errors.New("capacity backend error")

// Datasets are the two raw capacity documents, ready for capacity.Engine.LoadDatasets.
type Datasets struct {
	ProductOnly []capacity.Record
	ProductSize []capacity.Record
	FetchedAt   time.Time
}

// Source delivers both datasets.
type Source interface {
	FetchDatasets(ctx context.Context) (*Datasets, error)
}

// Config holds the connection settings for the capacity backend.
type Config struct {
	BaseURL string
	// Token is an opaque bearer credential obtained by the admin login.
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}
