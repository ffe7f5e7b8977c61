package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// StatusFor maps domain errors onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := StatusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// internal details stay in the log
		msg = "internal error"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err, "method", c.Request.Method, "path", c.FullPath(), "status", status)
	} else {
		h.logger.Debug("request rejected", "err", err, "path", c.FullPath(), "status", status)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
