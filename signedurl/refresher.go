// Package signedurl keeps short-lived signed download URLs fresh for the
// storage paths that are currently on screen.
package signedurl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// RefreshPeriod is how often every active path is re-signed.
	RefreshPeriod = 45 * time.Minute
	// SignatureTTL is the lifetime requested for each signature. It must
	// outlive RefreshPeriod so that a URL never lapses between refreshes.
	SignatureTTL = time.Hour
	// LeaseTTL is how long a registration stays active without being
	// renewed by another Register call from the same holder.
	LeaseTTL = 2 * RefreshPeriod

	maxConcurrentSigns = 8
)

// Signer produces a signed URL for a storage path.
type Signer interface {
	SignURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// TickerFunc starts a ticker with period d and returns its channel and a
// stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Refresher hands out signed URLs and re-signs all registered paths on a
// single shared loop. The loop runs only while at least one registration is
// active. Registrations are counted per holder and path, and each one is a
// lease that lapses LeaseTTL after its last Register.
type Refresher struct {
	signer Signer
	log    *slog.Logger

	cache   *cache.Cache
	sfGroup singleflight.Group

	mu      sync.Mutex
	regs    map[regKey]*registration
	stop    context.CancelFunc
	stopped chan struct{}

	NewTicker TickerFunc
	Now       func() time.Time
}

type regKey struct {
	holder string
	path   string
}

type registration struct {
	refs    int
	expires time.Time
}

func NewRefresher(signer Signer, log *slog.Logger) *Refresher {
	// entries expire a little before the signature does
	return &Refresher{
		signer:    signer,
		log:       log,
		cache:     cache.New(SignatureTTL-5*time.Minute, 10*time.Minute),
		regs:      make(map[regKey]*registration),
		NewTicker: realTicker,
		Now:       time.Now,
	}
}

// Register signs path (or reuses a cached signature) and adds one
// reference held by holder, renewing that holder's lease on the path. The
// first active registration starts the refresh loop.
func (r *Refresher) Register(ctx context.Context, holder string, path string) (string, error) {
	url, err := r.URL(ctx, path)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.Now()
	r.pruneLocked(now)
	key := regKey{holder: holder, path: path}
	reg, ok := r.regs[key]
	if !ok {
		reg = &registration{}
		r.regs[key] = reg
	}
	reg.refs++
	reg.expires = now.Add(LeaseTTL)
	if r.stop == nil {
		r.startLocked()
	}
	return url, nil
}

// Release drops one of holder's references to path. Other holders are not
// affected. Releasing the last active registration stops the refresh loop.
// Releasing something holder never registered is a no-op.
func (r *Refresher) Release(holder string, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := regKey{holder: holder, path: path}
	if reg, ok := r.regs[key]; ok {
		reg.refs--
		if reg.refs <= 0 {
			delete(r.regs, key)
		}
	}
	r.pruneLocked(r.Now())
}

// pruneLocked drops lapsed leases and stops the loop once nothing is left.
func (r *Refresher) pruneLocked(now time.Time) {
	for key, reg := range r.regs {
		if !now.Before(reg.expires) {
			delete(r.regs, key)
			r.log.Debug("signed url lease lapsed", "path", key.path)
		}
	}
	if len(r.regs) == 0 {
		r.stopLocked()
	}
}

// URL returns the current signed URL for path, signing it if nothing is
// cached. Concurrent calls for the same path share one signing request.
func (r *Refresher) URL(ctx context.Context, path string) (string, error) {
	if url, found := r.cache.Get(path); found {
		return url.(string), nil
	}

	res, err, _ := r.sfGroup.Do(path, func() (interface{}, error) {
		if url, found := r.cache.Get(path); found {
			return url.(string), nil
		}
		return r.sign(ctx, path)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (r *Refresher) sign(ctx context.Context, path string) (string, error) {
	url, err := r.signer.SignURL(ctx, path, SignatureTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	r.cache.SetDefault(path, url)
	return url, nil
}

// Running reports whether the refresh loop is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// ActivePaths returns the number of distinct registered paths.
func (r *Refresher) ActivePaths() int {
	return len(r.activePaths())
}

// Close drops every registration and waits for the loop to exit.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.regs = make(map[regKey]*registration)
	stopped := r.stopped
	r.stopLocked()
	r.mu.Unlock()

	if stopped != nil {
		<-stopped
	}
}

func (r *Refresher) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	r.stop = cancel
	r.stopped = make(chan struct{})

	ticks, stopTicker := r.NewTicker(RefreshPeriod)
	go func(stopped chan struct{}) {
		defer close(stopped)
		defer stopTicker()
		r.log.Debug("signed url refresh loop started")
		for {
			select {
			case <-ctx.Done():
				r.log.Debug("signed url refresh loop stopped")
				return
			case <-ticks:
				r.mu.Lock()
				r.pruneLocked(r.Now())
				r.mu.Unlock()
				if ctx.Err() != nil {
					continue
				}
				r.refreshAll(ctx)
			}
		}
	}(r.stopped)
}

func (r *Refresher) stopLocked() {
	if r.stop == nil {
		return
	}
	r.stop()
	r.stop = nil
	r.stopped = nil
}

func (r *Refresher) activePaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(r.regs))
	paths := make([]string, 0, len(r.regs))
	for key := range r.regs {
		if !seen[key.path] {
			seen[key.path] = true
			paths = append(paths, key.path)
		}
	}
	return paths
}

// refreshAll re-signs every active path. A failed path keeps its previous
// URL until it expires and is retried on the next tick.
func (r *Refresher) refreshAll(ctx context.Context) {
	paths := r.activePaths()
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(maxConcurrentSigns)
	for _, p := range paths {
		g.Go(func() error {
			_, err, _ := r.sfGroup.Do(p, func() (interface{}, error) {
				return r.sign(ctx, p)
			})
			if err != nil {
				r.log.Warn("failed to refresh signed url", "path", p, "error", err)
			}
			return err
		})
	}
	err := g.Wait()
	r.log.Info("refreshed signed urls",
		"paths", len(paths), "duration", time.Since(start), "failed", err != nil)
}
