package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

type endpointStats struct {
	count       int
	totalTime   time.Duration
	lastPrinted time.Time
}

// statsLogger periodically logs request counts and average latency per
// route pattern.
type statsLogger struct {
	stats         map[string]*endpointStats
	mu            sync.Mutex
	flushInterval time.Duration
	log           *slog.Logger
}

func newStatsLogger(log *slog.Logger, flushInterval time.Duration) *statsLogger {
	return &statsLogger{
		stats:         make(map[string]*endpointStats),
		flushInterval: flushInterval,
		log:           log,
	}
}

// run flushes until ctx is done.
func (sl *statsLogger) run(ctx context.Context) {
	ticker := time.NewTicker(sl.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sl.flushStats(now)
		}
	}
}

func (sl *statsLogger) flushStats(now time.Time) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for endpoint, stats := range sl.stats {
		if stats.count > 0 && now.Sub(stats.lastPrinted) >= sl.flushInterval {
			avgTimeMs := float64(stats.totalTime.Microseconds()) / float64(stats.count) / 1000.0

			sl.log.Info("endpoint stats",
				"endpoint", endpoint,
				"count", stats.count,
				"avg_time_ms", fmt.Sprintf("%.2f", avgTimeMs),
				"period", sl.flushInterval,
			)
			stats.count = 0
			stats.totalTime = 0
			stats.lastPrinted = now
		}
	}
}

func (sl *statsLogger) record(endpoint string, d time.Duration) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if _, exists := sl.stats[endpoint]; !exists {
		sl.stats[endpoint] = &endpointStats{}
	}
	sl.stats[endpoint].count++
	sl.stats[endpoint].totalTime += d
}

func (sl *statsLogger) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		// the pattern keeps ids out of the key
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		sl.record(r.Method+" "+pattern, time.Since(start))
	})
}
