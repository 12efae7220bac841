package web

import (
	"bytes"
	"net/http"
	"strings"

	"capacity-mcp/internal/backend"
	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/export"
	"capacity-mcp/internal/visuals"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the capacity dashboard API over one shared session.
type Handler struct {
	loader *backend.Loader
	proxy  http.Handler
	charts bool
}

// NewHandler creates the API handler. proxy may be nil, which disables /backend.
func NewHandler(loader *backend.Loader, proxy http.Handler, charts bool) *Handler {
	return &Handler{loader: loader, proxy: proxy, charts: charts}
}

// RegisterRoutes registers the capacity routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	capacityGroup := router.Group("/capacity")
	capacityGroup.GET("/dates", h.ListDates)
	capacityGroup.GET("/products", h.ListProducts)
	capacityGroup.GET("/products/:code/sizes", h.ListSizes)

	capacityGroup.GET("/selection", h.GetSelection)
	capacityGroup.POST("/selection/products", h.SelectProducts)
	capacityGroup.POST("/selection/sizes", h.SelectSizes)

	capacityGroup.GET("/bundles", h.ListBundles)
	capacityGroup.GET("/bundles/:date", h.GetBundle)

	capacityGroup.POST("/reload", h.Reload)
	capacityGroup.GET("/export", h.Export)

	if h.proxy != nil {
		router.Any("/backend/*path", h.Proxy)
	}
}

// ListDates returns the ordered date axis.
func (h *Handler) ListDates(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": orEmpty(engine.DateAxis().Labels())})
}

// ListProducts returns the selectable product codes.
func (h *Handler) ListProducts(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": orEmpty(engine.ProductOptions())})
}

// ListSizes returns the sizes carried for one product.
func (h *Handler) ListSizes(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	c.JSON(http.StatusOK, gin.H{"product_code": code, "sizes": orEmpty(engine.SizeOptions(code))})
}

// GetSelection returns the selection and the warning of the last rejected change.
func (h *Handler) GetSelection(c *gin.Context) {
	engine := h.loader.Engine()
	resp := gin.H{"selection": engine.Selection()}
	if w := engine.Warning(); w != nil {
		resp["warning"] = w.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// SelectProducts replaces the selected products.
func (h *Handler) SelectProducts(c *gin.Context) {
	var req struct {
		ProductCodes []string `json:"product_codes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ProductCodes == nil {
		errorResponse(c, http.StatusBadRequest, "product_codes is required")
		return
	}

	engine, ok := h.engine(c)
	if !ok {
		return
	}
	snap, err := engine.SelectProducts(req.ProductCodes)
	if err != nil {
		selectionError(c, snap, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": snap})
}

// SelectSizes replaces the selected sizes of one product.
func (h *Handler) SelectSizes(c *gin.Context) {
	var req struct {
		ProductCode string   `json:"product_code"`
		Sizes       []string `json:"sizes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ProductCode) == "" || req.Sizes == nil {
		errorResponse(c, http.StatusBadRequest, "product_code and sizes are required")
		return
	}

	engine, ok := h.engine(c)
	if !ok {
		return
	}
	snap, err := engine.SelectSizes(strings.TrimSpace(req.ProductCode), req.Sizes)
	if err != nil {
		selectionError(c, snap, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": snap})
}

// ListBundles returns the adjusted series over the whole axis and the bundle
// of every date. ?chart=true adds a Mermaid line chart.
func (h *Handler) ListBundles(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	dates := orEmpty(engine.DateAxis().Labels())
	series := engine.Series()
	if series == nil {
		series = []capacity.SeriesView{}
	}
	resp := gin.H{
		"dates":   dates,
		"series":  series,
		"bundles": engine.Bundles(),
	}
	if h.charts && c.Query("chart") == "true" {
		resp["chart"] = visuals.GenerateCapacityChart(dates, series)
	}
	c.JSON(http.StatusOK, resp)
}

// GetBundle returns the ranked cards of one date.
func (h *Handler) GetBundle(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	date := strings.TrimSpace(c.Param("date"))
	bundle, err := engine.BundleForDate(date)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.charts && c.Query("chart") == "true" {
		c.JSON(http.StatusOK, gin.H{"bundle": bundle, "chart": visuals.GenerateBundleChart(bundle)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bundle": bundle})
}

// Reload fetches both datasets again.
func (h *Handler) Reload(c *gin.Context) {
	summary, err := h.loader.Reload(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export streams the current view as an xlsx workbook.
func (h *Handler) Export(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, engine.DateAxis().Labels(), engine.Series(), engine.Bundles()); err != nil {
		log.Error().Err(err).Msg("Workbook export failed")
		errorResponse(c, http.StatusInternalServerError, "export failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=capacity.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Proxy forwards /backend/<path> to <backend>/<path>.
func (h *Handler) Proxy(c *gin.Context) {
	c.Request.URL.Path = c.Param("path")
	c.Request.URL.RawPath = ""
	h.proxy.ServeHTTP(c.Writer, c.Request)
}

// engine returns the session engine, loading the datasets on first use. On
// failure the error response is already written.
func (h *Handler) engine(c *gin.Context) (*capacity.Engine, bool) {
	if err := h.loader.EnsureLoaded(c.Request.Context()); err != nil {
		writeError(c, err)
		return nil, false
	}
	return h.loader.Engine(), true
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
