/*
scheduler.go - Background statement cache warmer

PURPOSE:
  Periodically precomputes the current month's statement for every known
  association and stores it in the statement cache, so the avizier and
  statement endpoints can serve the heavy end-of-month traffic from a
  warmed copy.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Assembles each association's statement for the current period
  - Saves the result through the statement cache upsert, so repeated
    runs of the same period overwrite in place
  - Computation is deterministic over the snapshot, so a stale cache
    entry is never wrong for the snapshot it was built from, only older

CONFIGURATION:
  - CheckInterval: How often to warm (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewStatementScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetStatement endpoint (cached=true reads the warmed copy)
  - engine/statement.go: Assembler
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/blocadmin/billing-engine/engine"
	"github.com/blocadmin/billing-engine/store/sqlite"
)

// StatementScheduler warms the statement cache in the background.
type StatementScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatementScheduler creates a new scheduler.
func NewStatementScheduler(store *sqlite.Store, handler *Handler) *StatementScheduler {
	return &StatementScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *StatementScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler.
func (ss *StatementScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *StatementScheduler) run() {
	defer ss.wg.Done()

	// Warm immediately on start
	ss.warmAll()

	for {
		select {
		case <-ss.ticker.C:
			ss.warmAll()
		case <-ss.stop:
			return
		}
	}
}

func (ss *StatementScheduler) warmAll() {
	ctx := context.Background()
	now := time.Now()
	period := engine.PeriodOf(now)

	log.Printf("[Scheduler] Warming statement cache for %s at %v", period, now)

	associations, err := ss.Store.ListAssociations(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing associations: %v", err)
		return
	}

	warmedCount := 0
	failedCount := 0

	for _, assocID := range associations {
		if err := ss.warmOne(ctx, assocID, period, now); err != nil {
			log.Printf("[Scheduler] Error warming %s: %v", assocID, err)
			failedCount++
			continue
		}
		warmedCount++
	}

	if warmedCount > 0 || failedCount > 0 {
		log.Printf("[Scheduler] Completed: %d warmed, %d failed", warmedCount, failedCount)
	}
}

func (ss *StatementScheduler) warmOne(ctx context.Context, assocID engine.AssociationID, period engine.BillingPeriod, asOf time.Time) error {
	snap, err := ss.Store.Snapshot(ctx, assocID)
	if err != nil {
		return err
	}

	st := ss.Handler.Assembler.Assemble(snap, period, asOf)

	if err := ss.Store.SaveStatement(ctx, st); err != nil {
		return err
	}

	log.Printf("[Scheduler] Warmed %s %s: %d lines, grand total %s",
		assocID, period, len(st.Lines), st.Totals.Grand.Round2())
	return nil
}

// RunNow triggers an immediate warm-up (for testing/admin).
func (ss *StatementScheduler) RunNow() {
	ss.warmAll()
}

// GetNextRunTime returns when the next scheduled warm-up will occur.
func (ss *StatementScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ss.CheckInterval)
}
