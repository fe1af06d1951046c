// =============================================================================
// Delivery Reconciler - Persistence Adapter
// =============================================================================
//
// The record set is persisted as a single JSON blob under a single key. The
// contract mirrors a browser key-value store: load, save, clear.
//
// BACKENDS:
//   - FileStore:   a JSON file written atomically
//   - RedisStore:  one Redis string key
//   - MemoryStore: in-process, for tests and dry runs
//
// A stored blob that cannot be parsed is reported as absent, with a warning,
// so a damaged store never blocks startup.
//
// =============================================================================

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/delivery-reconciler/internal/config"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// Store persists the record set.
type Store interface {
	// Load returns the stored set. ok is false when nothing usable is stored.
	Load(ctx context.Context) (records types.RecordSet, ok bool, err error)

	// Save replaces the stored set.
	Save(ctx context.Context, records types.RecordSet) error

	// Clear removes the stored set. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// New builds the backend selected in cfg.
func New(cfg config.StoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.Path, logger), nil
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.Key,
		}, logger), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// encode serializes the set. A nil set is stored as an empty array.
func encode(records types.RecordSet) ([]byte, error) {
	if records == nil {
		records = types.RecordSet{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

// decode parses a stored blob. Any parse failure yields ok=false and is
// logged; percentages are recomputed from the stored counts.
func decode(data []byte, source string, logger zerolog.Logger) (types.RecordSet, bool) {
	var records types.RecordSet
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("stored record set is unreadable, starting empty")
		return nil, false
	}
	for i := range records {
		records[i].SetCounts(records[i].TotalDeliveries, records[i].CompletedDeliveries)
	}
	return records, true
}
