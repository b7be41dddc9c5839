// Package storage provides the history store adapters. The file store keeps
// one JSON document per category under a configurable root; the sqlite store
// offers the same port on a single database file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// historyDocument is the persisted shape of one category partition.
type historyDocument struct {
	Records []domain.HistoryRecord `json:"records"`
}

// FileStore persists per-category history as JSON documents under root.
// Reads fail open: corrupt or missing files load as empty history. Writes
// are atomic (temp file + rename) so a failed write never clobbers the
// previous state.
type FileStore struct {
	root string
	log  ports.Logger
	mu   sync.Mutex
}

// NewFileStore creates a store rooted at dir (e.g. ~/.adpost/history).
func NewFileStore(dir string, log ports.Logger) *FileStore {
	return &FileStore{root: dir, log: log}
}

// Root returns the backing directory.
func (s *FileStore) Root() string {
	return s.root
}

// Load implements ports.HistoryStore. Missing or unreadable state degrades
// to an empty history; the recovery is logged, never surfaced.
func (s *FileStore) Load(category domain.Category) ([]domain.HistoryRecord, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}
	return s.read(category), nil
}

// Add implements ports.HistoryStore.
func (s *FileStore) Add(category domain.Category, text string, metadata map[string]any) (domain.HistoryRecord, error) {
	if !category.Valid() {
		return domain.HistoryRecord{}, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.read(category)
	record := domain.HistoryRecord{
		ID:        uuid.NewString(),
		Category:  category,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}
	records = append(records, record)

	if err := s.write(category, records); err != nil {
		return domain.HistoryRecord{}, err
	}
	return record, nil
}

// Recent implements ports.HistoryStore, returning up to limit records
// newest first.
func (s *FileStore) Recent(category domain.Category, limit int) ([]domain.HistoryRecord, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", domain.ErrInvalidArgument, limit)
	}
	records, err := s.Load(category)
	if err != nil {
		return nil, err
	}
	return newestFirst(records, limit), nil
}

// All implements ports.HistoryStore.
func (s *FileStore) All(category domain.Category) ([]domain.HistoryRecord, error) {
	return s.Load(category)
}

// Prune implements ports.HistoryStore. Records older than maxAgeDays are
// dropped and the survivors persisted; the removed count is returned.
func (s *FileStore) Prune(category domain.Category, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		return 0, fmt.Errorf("%w: max age days must be positive, got %d", domain.ErrInvalidArgument, maxAgeDays)
	}
	if !category.Valid() {
		return 0, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.read(category)
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)
	kept := records[:0:0]
	for _, rec := range records {
		if !rec.CreatedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(category, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Reset implements ports.HistoryStore, dropping the whole category file.
func (s *FileStore) Reset(category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.pathFor(category)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

func (s *FileStore) pathFor(category domain.Category) string {
	return filepath.Join(s.root, string(category)+"s_history.json")
}

// read loads a category document best-effort. Corruption is recovered as
// empty history so duplicate prevention never blocks future posts.
func (s *FileStore) read(category domain.Category) []domain.HistoryRecord {
	path := s.pathFor(category)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logRecovery(category, err)
		}
		return nil
	}
	var doc historyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logRecovery(category, fmt.Errorf("%w: %v", domain.ErrStorageRead, err))
		return nil
	}
	return doc.Records
}

// write persists a category document atomically: marshal to a temp file in
// the same directory, then rename over the target.
func (s *FileStore) write(category domain.Category, records []domain.HistoryRecord) error {
	if err := os.MkdirAll(s.root, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	data, err := json.MarshalIndent(historyDocument{Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	tmp, err := os.CreateTemp(s.root, string(category)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := os.Chmod(tmpPath, domain.HistoryFilePermissions); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := os.Rename(tmpPath, s.pathFor(category)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

func (s *FileStore) logRecovery(category domain.Category, err error) {
	if s.log == nil {
		return
	}
	s.log.Warn("history unreadable, recovering with empty history", map[string]interface{}{
		"category": string(category),
		"error":    err.Error(),
	})
}

// newestFirst reverses insertion order and applies the limit.
func newestFirst(records []domain.HistoryRecord, limit int) []domain.HistoryRecord {
	out := make([]domain.HistoryRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

var _ ports.HistoryStore = (*FileStore)(nil)
