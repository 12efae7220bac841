package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog/log"
)

// NewProxy returns a handler forwarding requests to the backend unchanged:
// same method, path, query and body. The caller's Authorization header is
// passed through; without one the configured token is attached.
func NewProxy(cfg Config) (http.Handler, error) {
	target, err := url.Parse(cfg.BaseURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", cfg.BaseURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	direct := proxy.Director
	proxy.Director = func(req *http.Request) {
		original := req.URL.Path
		direct(req)
		req.Host = target.Host
		if req.Header.Get("Authorization") == "" && cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.Token)
		}
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
		log.Debug().
			Str("method", req.Method).
			Str("path", original).
			Str("target", req.URL.String()).
			Msg("Proxy request")
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		log.Error().Err(err).Str("path", req.URL.Path).Msg("Proxy error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to proxy request"})
	}
	return proxy, nil
}
