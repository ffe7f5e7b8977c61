// Package httpapi exposes search, detail and saved jobs over REST.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// UserHeader carries the caller's user id; authentication happens upstream
const UserHeader = "X-User-ID"

// MatchQualityHeader is set to "approximate" when a detail lookup could not
// re-resolve the requested id and returned a best-effort listing
const MatchQualityHeader = "X-Match-Quality"

// ReadinessCheck is pinged by /readyz
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	jobs   job.Service
	saved  saved.Service
	checks []ReadinessCheck
	logger *logging.Logger
}

// NewHandler builds the REST handler; saved may be nil to disable /jobs/saved
func NewHandler(jobs job.Service, savedSvc saved.Service, checks []ReadinessCheck, logger *logging.Logger) (*Handler, error) {
	if jobs == nil {
		return nil, fmt.Errorf("httpapi: job service is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		jobs:   jobs,
		saved:  savedSvc,
		checks: checks,
		logger: logger.Named("http"),
	}, nil
}

// Router returns a gin engine with every route registered
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog())

	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)

	jobs := r.Group("/jobs")
	jobs.GET("/search", h.search)
	jobs.GET("/detail/:id", h.detail)

	if h.saved != nil {
		s := jobs.Group("/saved")
		s.GET("", h.listSaved)
		s.POST("", h.saveJob)
		s.GET("/:id", h.getSaved)
		s.DELETE("/:id", h.deleteSaved)
	}

	return r
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(started),
		)
	}
}

func (h *Handler) search(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: page must be an integer", domain.ErrInvalidInput))
			return
		}
		page = n
	}

	resp, err := h.jobs.Search(c.Request.Context(), domain.SearchFilters{
		Query:          c.Query("q"),
		Location:       c.Query("location"),
		Page:           page,
		EmploymentType: c.Query("employment_type"),
		Roles:          c.QueryArray("roles"),
		Seniority:      c.QueryArray("seniority"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) detail(c *gin.Context) {
	result, err := h.jobs.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if !result.Exact {
		c.Header(MatchQualityHeader, "approximate")
	}
	c.JSON(http.StatusOK, result)
}

type saveRequest struct {
	Job domain.JobListing `json:"job"`
}

func (h *Handler) listSaved(c *gin.Context) {
	jobs, err := h.saved.List(c.Request.Context(), c.GetHeader(UserHeader))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) saveJob(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: invalid request body: %w", domain.ErrInvalidInput, err))
		return
	}

	job, err := h.saved.Save(c.Request.Context(), c.GetHeader(UserHeader), req.Job)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) getSaved(c *gin.Context) {
	job, err := h.saved.Get(c.Request.Context(), c.GetHeader(UserHeader), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) deleteSaved(c *gin.Context) {
	if err := h.saved.Delete(c.Request.Context(), c.GetHeader(UserHeader), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name] = err.Error()
			h.logger.Warn("readiness check failed", "check", check.Name, "err", err)
			continue
		}
		results[check.Name] = "ok"
	}

	c.JSON(status, gin.H{"checks": results})
}
