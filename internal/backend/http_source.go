package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"capacity-mcp/internal/capacity"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// HTTPSource fetches both datasets from the backend and keeps them in a
// short-lived cache so repeated loads within a session stay cheap.
type HTTPSource struct {
	cfg        Config
	httpClient *http.Client

	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex
}

type cacheEntry struct {
	Value       []capacity.Record
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

// NewHTTPSource creates a backend source.
func NewHTTPSource(cfg Config) *HTTPSource {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPSource{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: make(map[string]*cacheEntry),
	}
}

// FetchDatasets requests both endpoints concurrently; either failure fails the load.
func (s *HTTPSource) FetchDatasets(ctx context.Context) (*Datasets, error) {
	ds := &Datasets{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.fetch(gctx, ProductCapacityPath)
		ds.ProductOnly = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.fetch(gctx, SizeCapacityPath)
		ds.ProductSize = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ds.FetchedAt = time.Now()

	log.Info().
		Int("productRows", len(ds.ProductOnly)).
		Int("sizeRows", len(ds.ProductSize)).
		Msg("Fetched capacity datasets")
	return ds, nil
}

// Invalidate drops every cached document so the next fetch hits the backend.
func (s *HTTPSource) Invalidate() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cache = make(map[string]*cacheEntry)
}

func (s *HTTPSource) fetch(ctx context.Context, path string) ([]capacity.Record, error) {
	if rows, ok := s.getFromCache(path); ok {
		return rows, nil
	}

	url := s.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	s.authenticateRequest(req)

	log.Debug().Str("url", url).Msg("Requesting capacity dataset")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackend, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: authentication failed (%d) for %s, check BACKEND_TOKEN", ErrBackend, resp.StatusCode, path)
		default:
			return nil, fmt.Errorf("%w: %s returned status %d", ErrBackend, path, resp.StatusCode)
		}
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrBackend, path, err)
	}
	rows, err := decodeEnvelope(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if s.cfg.CacheTTL > 0 {
		s.addToCache(path, rows, s.cfg.CacheTTL)
	}
	return rows, nil
}

func (s *HTTPSource) authenticateRequest(req *http.Request) {
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
}

func (s *HTTPSource) getFromCache(key string) ([]capacity.Record, bool) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}

	if time.Now().After(entry.Expiration) {
		delete(s.cache, key)
		log.Debug().Str("key", key).Msg("Cache entry expired")
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	// Sliding window: a handful of hits may extend the entry, then it must refresh.
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
		log.Trace().Str("key", key).Int("count", entry.AccessCount).Msg("Extended cache TTL")
	}
	return entry.Value, true
}

func (s *HTTPSource) addToCache(key string, value []capacity.Record, ttl time.Duration) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.cache[key] = &cacheEntry{
		Value:       value,
		Expiration:  time.Now().Add(ttl),
		OriginalTTL: ttl,
		AccessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}
