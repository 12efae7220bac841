package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"capacity-mcp/internal/backend"
	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeSource struct {
	err error
}

func (f *fakeSource) FetchDatasets(ctx context.Context) (*backend.Datasets, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &backend.Datasets{
		ProductOnly: []capacity.Record{
			{"Product Code": "BOWL", "1-6-2025": 10, "02-06-2025": 5},
			{"Product Code": "CUP", "1-6-2025": 3},
			{"Product Code": "TRAY", "1-6-2025": 4},
		},
		ProductSize: []capacity.Record{
			{"Product Code": "PLATE", "Size": "10 INCH", "1-6-2025": 7},
			{"Product Code": "PLATE", "Size": "12 INCH", "02-06-2025": 2},
			{"Product Code": "PLATE", "Size": "14 INCH", "02-06-2025": 9},
		},
	}, nil
}

func setupRouter(t *testing.T, src backend.Source, proxy http.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(backend.NewLoader(src, capacity.NewEngine()), proxy, true)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(closeNotifyRecorder{w}, req)
	return w
}

// closeNotifyRecorder adds http.CloseNotifier to the recorder; gin's writer
// asserts it when httputil.ReverseProxy calls CloseNotify.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
}

func (closeNotifyRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	return out
}

func TestHandler_Options(t *testing.T) {
	r := setupRouter(t, &fakeSource{}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/capacity/dates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"1-6-2025", "02-06-2025"}, decode(t, w)["dates"])

	w = doJSON(t, r, http.MethodGet, "/api/capacity/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"PLATE", "BOWL", "CUP", "TRAY"}, decode(t, w)["products"])

	w = doJSON(t, r, http.MethodGet, "/api/capacity/products/PLATE/sizes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"10 INCH", "12 INCH", "14 INCH"}, decode(t, w)["sizes"])

	w = doJSON(t, r, http.MethodGet, "/api/capacity/products/BOWL/sizes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["sizes"])
}

func TestHandler_SelectionLimitConflict(t *testing.T) {
	r := setupRouter(t, &fakeSource{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/capacity/selection/products", gin.H{"product_codes": []string{"BOWL", "PLATE"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/capacity/selection/sizes", gin.H{"product_code": "PLATE", "sizes": []string{"10 INCH", "12 INCH", "14 INCH"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/capacity/selection/products", gin.H{"product_codes": []string{"BOWL", "PLATE", "CUP"}})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 6, body["attempted"])
	assert.EqualValues(t, 5, body["limit"])
	assert.Contains(t, body["error"], "more than 5 combinations")

	w = doJSON(t, r, http.MethodGet, "/api/capacity/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	selection := body["selection"].(map[string]any)
	assert.Equal(t, []any{"BOWL", "PLATE"}, selection["products"])
	assert.EqualValues(t, 5, selection["combinations"])
	assert.NotEmpty(t, body["warning"])
}

func TestHandler_BadRequests(t *testing.T) {
	r := setupRouter(t, &fakeSource{}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing product_codes", http.MethodPost, "/api/capacity/selection/products", gin.H{}, http.StatusBadRequest},
		{"unknown product", http.MethodPost, "/api/capacity/selection/products", gin.H{"product_codes": []string{"SPOON"}}, http.StatusBadRequest},
		{"sizes for unselected product", http.MethodPost, "/api/capacity/selection/sizes", gin.H{"product_code": "PLATE", "sizes": []string{"10 INCH"}}, http.StatusBadRequest},
		{"missing sizes", http.MethodPost, "/api/capacity/selection/sizes", gin.H{"product_code": "PLATE"}, http.StatusBadRequest},
		{"malformed date off the axis", http.MethodGet, "/api/capacity/bundles/2025-06-01", nil, http.StatusNotFound},
		{"date off the axis", http.MethodGet, "/api/capacity/bundles/03-06-2025", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestHandler_Bundles(t *testing.T) {
	r := setupRouter(t, &fakeSource{}, nil)

	doJSON(t, r, http.MethodPost, "/api/capacity/selection/products", gin.H{"product_codes": []string{"BOWL", "CUP", "PLATE"}})
	doJSON(t, r, http.MethodPost, "/api/capacity/selection/sizes", gin.H{"product_code": "PLATE", "sizes": []string{"14 INCH", "10 INCH"}})

	w := doJSON(t, r, http.MethodGet, "/api/capacity/bundles/02-06-2025", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Bundle capacity.RenderBundle `json:"bundle"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var labels []string
	var values []float64
	for _, e := range resp.Bundle.ProductOnly {
		labels = append(labels, e.Label)
		values = append(values, e.Capacity)
	}
	assert.Equal(t, []string{"CUP", "BOWL"}, labels)
	assert.Equal(t, []float64{3, 15}, values)

	labels = labels[:0]
	for _, e := range resp.Bundle.ProductSize {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"PLATE - 10 INCH", "PLATE - 14 INCH"}, labels)

	w = doJSON(t, r, http.MethodGet, "/api/capacity/bundles?chart=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["bundles"], 2)
	assert.Len(t, body["series"], 4)
	assert.Contains(t, body["chart"], "xychart-beta")
}

func TestHandler_BackendFailure(t *testing.T) {
	r := setupRouter(t, &fakeSource{err: errors.New("connection reset")}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/capacity/products", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/capacity/reload", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandler_Reload(t *testing.T) {
	r := setupRouter(t, &fakeSource{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/capacity/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"1-6-2025", "02-06-2025"}, decode(t, w)["dates"])
}

func TestHandler_Export(t *testing.T) {
	r := setupRouter(t, &fakeSource{}, nil)
	doJSON(t, r, http.MethodPost, "/api/capacity/selection/products", gin.H{"product_codes": []string{"BOWL"}})

	w := doJSON(t, r, http.MethodGet, "/api/capacity/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Capacity")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"BOWL", "product", "10", "15"}, rows[1])
}

func TestHandler_Proxy(t *testing.T) {
	var gotPath, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer upstream.Close()

	proxy, err := backend.NewProxy(backend.Config{BaseURL: upstream.URL, Token: "tkn"})
	require.NoError(t, err)
	r := setupRouter(t, &fakeSource{}, proxy)

	w := doJSON(t, r, http.MethodGet, "/api/backend/api/csv/capacity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/csv/capacity", gotPath)
	assert.Equal(t, "Bearer tkn", gotAuth)
	assert.Equal(t, true, decode(t, w)["success"])
}

func TestNewServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{Backend: backend.Config{BaseURL: "http://127.0.0.1:1"}}

	s, err := NewServer(cfg, backend.NewLoader(&fakeSource{}, capacity.NewEngine()))
	require.NoError(t, err)

	w := doJSON(t, s.Router(), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)

	w = doJSON(t, s.Router(), http.MethodOptions, "/api/capacity/dates", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	_, err = NewServer(&config.AppConfig{Backend: backend.Config{BaseURL: "::"}}, nil)
	assert.Error(t, err)
}
