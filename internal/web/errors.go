package web

import (
	"errors"
	"net/http"

	"capacity-mcp/internal/backend"
	"capacity-mcp/internal/capacity"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func errorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// statusFor maps domain and backend errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, capacity.ErrSelectionLimitExceeded):
		return http.StatusConflict
	case errors.Is(err, capacity.ErrUnknownDate):
		return http.StatusNotFound
	case errors.Is(err, capacity.ErrMalformedDateKey),
		errors.Is(err, capacity.ErrUnknownProduct),
		errors.Is(err, capacity.ErrUnknownSize),
		errors.Is(err, capacity.ErrProductNotSelected):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrBackend):
		return http.StatusBadGateway
	case errors.Is(err, capacity.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	errorResponse(c, status, err.Error())
}

// selectionError reports a rejected selection change. The limit case carries
// the attempted count and the unchanged selection.
func selectionError(c *gin.Context, snap capacity.SelectionSnapshot, err error) {
	var limitErr *capacity.SelectionLimitError
	if errors.As(err, &limitErr) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     limitErr.Error(),
			"attempted": limitErr.Attempted,
			"limit":     limitErr.Limit,
			"selection": snap,
		})
		return
	}
	writeError(c, err)
}
