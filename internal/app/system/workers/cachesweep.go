// internal/app/system/workers/cachesweep.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired entries and reports how many it removed.
// *querycache.Memory satisfies it.
type Sweeper interface {
	Sweep() int
}

// CacheSweep is a background worker that periodically evicts expired
// query-cache entries.
type CacheSweep struct {
	cache    Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCacheSweep creates a new cache sweep worker.
//
// Parameters:
//   - cache: the cache to sweep
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
func NewCacheSweep(cache Sweeper, logger *zap.Logger, interval time.Duration) *CacheSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheSweep{
		cache:    cache,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *CacheSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("cache sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *CacheSweep) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("cache sweep worker stopped")
	})
}

func (w *CacheSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CacheSweep) sweep() {
	if n := w.cache.Sweep(); n > 0 {
		w.log.Debug("swept expired cache entries", zap.Int("count", n))
	}
}
