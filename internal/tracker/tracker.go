// =============================================================================
// Delivery Reconciler - Tracker
// =============================================================================
//
// The Tracker owns the current record set. Every mutation runs under one
// mutex and replaces the set as a whole; after each successful mutation the
// new set is saved to the store.
//
// Persistence is best-effort: a failed save is logged and the in-memory
// mutation is kept.
//
// =============================================================================

package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/delivery-reconciler/internal/converter"
	"github.com/ginjaninja78/delivery-reconciler/internal/projection"
	"github.com/ginjaninja78/delivery-reconciler/internal/reconcile"
	"github.com/ginjaninja78/delivery-reconciler/internal/store"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// Options configures the engine operations the tracker runs.
type Options struct {
	Import    converter.ImportOptions
	Reconcile reconcile.Options
}

// Tracker is the single owner of the record set.
type Tracker struct {
	mu      sync.Mutex
	records types.RecordSet
	store   store.Store
	opts    Options
	logger  zerolog.Logger

	// lastSaveErr is the error of the most recent save, nil on success.
	lastSaveErr error
}

// New creates a tracker and loads the stored record set.
//
// A store that holds nothing usable starts the tracker empty. An error is
// returned only when the store itself cannot be reached.
func New(ctx context.Context, s store.Store, opts Options, logger zerolog.Logger) (*Tracker, error) {
	t := &Tracker{
		records: types.RecordSet{},
		store:   s,
		opts:    opts,
		logger:  logger,
	}

	records, ok, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load record set: %w", err)
	}
	if ok {
		t.records = records
	}

	logger.Debug().Int("records", len(t.records)).Bool("restored", ok).Msg("tracker ready")
	return t, nil
}

// ImportRows merges a decoded primary sheet into the set.
func (t *Tracker) ImportRows(ctx context.Context, rows []types.ImportedRow) types.ImportStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, stats := converter.ImportBatch(rows, t.records, t.opts.Import)

	logEvent := t.logger.Info().
		Int("rows", stats.RowsRead).
		Int("imported", stats.Imported).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped)
	if len(stats.UnknownRegions) > 0 {
		logEvent = logEvent.Strs("unknown_regions", stats.UnknownRegions)
	}
	logEvent.Msg("import batch applied")

	if stats.Imported == 0 && stats.Updated == 0 {
		return stats
	}
	t.commit(ctx, next)
	return stats
}

// ApplyStatus reconciles a decoded status sheet against the set.
func (t *Tracker) ApplyStatus(ctx context.Context, rows []types.StatusRow) *reconcile.Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, report := reconcile.Reconcile(rows, t.records, t.opts.Reconcile)

	t.logger.Info().
		Int("rows", report.RowsRead).
		Int("matched", report.Matched).
		Int("changed", report.Changed).
		Int("unmatched", len(report.Unmatched)).
		Msg("status sheet applied")
	for _, driver := range report.Unmatched {
		t.logger.Warn().Str("driver", driver).Msg("status row matches no record")
	}
	for _, cell := range report.InvalidCounts {
		t.logger.Warn().Str("cell", cell).Msg("count is not a number, kept stored value")
	}

	if report.Changed == 0 {
		return report
	}
	t.commit(ctx, next)
	return report
}

// Clear empties the set and removes it from the store.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = types.RecordSet{}
	if err := t.store.Clear(ctx); err != nil {
		t.lastSaveErr = err
		t.logger.Error().Err(err).Msg("failed to clear stored record set")
		return fmt.Errorf("failed to clear store: %w", err)
	}
	t.lastSaveErr = nil
	t.logger.Info().Msg("record set cleared")
	return nil
}

// Snapshot returns a copy of the current set.
func (t *Tracker) Snapshot() types.RecordSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records.Clone()
}

// Len returns the number of records held.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// View projects the current set. Sorting runs on a snapshot, outside the
// lock.
func (t *Tracker) View(q projection.Query) []types.DeliveryRecord {
	return projection.Project(t.Snapshot(), q)
}

// LastSaveError returns the error of the most recent persistence attempt.
func (t *Tracker) LastSaveError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSaveErr
}

// commit installs next and saves it. Caller holds mu.
func (t *Tracker) commit(ctx context.Context, next types.RecordSet) {
	t.records = next
	if err := t.store.Save(ctx, next); err != nil {
		t.lastSaveErr = err
		t.logger.Error().Err(err).Int("records", len(next)).Msg("failed to persist record set")
		return
	}
	t.lastSaveErr = nil
}
