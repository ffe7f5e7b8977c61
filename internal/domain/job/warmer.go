package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// Warmer periodically re-runs popular searches so their cache entries are
// refreshed before they go stale
type Warmer struct {
	cron    *cron.Cron
	svc     Service
	queries []domain.SearchFilters
	maxAge  time.Duration
	timeout time.Duration
	logger  *logging.Logger
	spec    string
}

// NewWarmer schedules queries on spec (robfig/cron syntax, e.g. "@every 30m").
// Each run accepts cached entries no older than maxAge.
func NewWarmer(svc Service, spec string, queries []domain.SearchFilters, maxAge time.Duration, logger *logging.Logger) (*Warmer, error) {
	if svc == nil {
		return nil, fmt.Errorf("job.Warmer: service is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	w := &Warmer{
		svc:     svc,
		queries: queries,
		maxAge:  maxAge,
		timeout: 2 * time.Minute,
		logger:  logger.Named("warmer"),
		spec:    spec,
	}

	w.cron = cron.New(cron.WithLogger(cron.PrintfLogger(w.logger)))
	if _, err := w.cron.AddFunc(spec, w.tick); err != nil {
		return nil, fmt.Errorf("job.Warmer: cron.AddFunc(%q): %w", spec, err)
	}

	return w, nil
}

// Start begins the schedule in the background
func (w *Warmer) Start() {
	w.cron.Start()
	w.logger.Info("cache warmer started", "spec", w.spec, "queries", len(w.queries))
}

// Shutdown stops the schedule and waits for a running pass to finish
func (w *Warmer) Shutdown(ctx context.Context) error {
	stopped := w.cron.Stop()
	select {
	case <-stopped.Done():
		w.logger.Info("cache warmer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job.Warmer: stop: %w", ctx.Err())
	}
}

// RunOnce warms every configured query and returns how many succeeded
func (w *Warmer) RunOnce(ctx context.Context) int {
	warmed := 0
	for _, q := range w.queries {
		q.MaxAge = w.maxAge

		resp, err := w.svc.Search(ctx, q)
		if err != nil {
			w.logger.Warn("warm query failed", "err", err, "query", q.Query, "location", q.Location)
			continue
		}

		warmed++
		w.logger.Debug("warm query done", "query", q.Query, "cached", resp.Cached, "jobs", len(resp.Jobs))
	}
	return warmed
}

func (w *Warmer) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	warmed := w.RunOnce(ctx)
	w.logger.Info("cache warm pass complete", "warmed", warmed, "total", len(w.queries))
}
