package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
	"github.com/ginjaninja78/delivery-reconciler/pkg/utils"
)

// FileStore keeps the record set in a JSON file.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on first save.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context) (types.RecordSet, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read store file: %w", err)
	}
	records, ok := decode(data, s.path, s.logger)
	return records, ok, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, records types.RecordSet) error {
	data, err := encode(records)
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear store file: %w", err)
	}
	return nil
}
