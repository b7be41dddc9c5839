package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// SQLiteStore persists history in a SQLite database. It implements the same
// port as FileStore and falls back to a file store when the database cannot
// be opened, so history keeps working on hosts without usable sqlite state.
type SQLiteStore struct {
	db       *sql.DB
	fallback *FileStore
	log      ports.Logger
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) <root>/history.db.
func NewSQLiteStore(root string, log ports.Logger) *SQLiteStore {
	store := &SQLiteStore{fallback: NewFileStore(root, log), log: log}
	path := filepath.Join(root, "history.db")
	if err := os.MkdirAll(root, domain.DirectoryPermissions); err != nil {
		return store
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return store
	}
	store.db = db
	if err := store.init(); err != nil {
		store.db = nil
	}
	return store
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TEXT NOT NULL,
		metadata TEXT
	);`)
	return err
}

// Load implements ports.HistoryStore.
func (s *SQLiteStore) Load(category domain.Category) ([]domain.HistoryRecord, error) {
	if s.db == nil {
		return s.fallback.Load(category)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}
	return s.query(category, "ASC", 0), nil
}

// Add implements ports.HistoryStore.
func (s *SQLiteStore) Add(category domain.Category, text string, metadata map[string]any) (domain.HistoryRecord, error) {
	if s.db == nil {
		return s.fallback.Add(category, text, metadata)
	}
	if !category.Valid() {
		return domain.HistoryRecord{}, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := domain.HistoryRecord{
		ID:        uuid.NewString(),
		Category:  category,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}
	var meta []byte
	if metadata != nil {
		var err error
		if meta, err = json.Marshal(metadata); err != nil {
			return domain.HistoryRecord{}, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO records (id, category, text, created_at, metadata) VALUES (?, ?, ?, ?, ?)`,
		record.ID, string(category), record.Text, record.CreatedAt.Format(domain.TimestampFormat), string(meta),
	)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return record, nil
}

// Recent implements ports.HistoryStore.
func (s *SQLiteStore) Recent(category domain.Category, limit int) ([]domain.HistoryRecord, error) {
	if s.db == nil {
		return s.fallback.Recent(category, limit)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", domain.ErrInvalidArgument, limit)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}
	return s.query(category, "DESC", limit), nil
}

// All implements ports.HistoryStore.
func (s *SQLiteStore) All(category domain.Category) ([]domain.HistoryRecord, error) {
	return s.Load(category)
}

// Prune implements ports.HistoryStore.
func (s *SQLiteStore) Prune(category domain.Category, maxAgeDays int) (int, error) {
	if s.db == nil {
		return s.fallback.Prune(category, maxAgeDays)
	}
	if maxAgeDays <= 0 {
		return 0, fmt.Errorf("%w: max age days must be positive, got %d", domain.ErrInvalidArgument, maxAgeDays)
	}
	if !category.Valid() {
		return 0, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays).Format(domain.TimestampFormat)
	res, err := s.db.Exec(
		`DELETE FROM records WHERE category = ? AND datetime(created_at) < datetime(?)`,
		string(category), cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return int(removed), nil
}

// Reset implements ports.HistoryStore.
func (s *SQLiteStore) Reset(category domain.Category) error {
	if s.db == nil {
		return s.fallback.Reset(category)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM records WHERE category = ?`, string(category)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

// query reads category rows best-effort: scan or query errors degrade to an
// empty history, mirroring the file store's fail-open read path.
func (s *SQLiteStore) query(category domain.Category, order string, limit int) []domain.HistoryRecord {
	stmt := `SELECT id, text, created_at, metadata FROM records WHERE category = ? ORDER BY rowid ` + order
	args := []any{string(category)}
	if limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		s.logRecovery(category, err)
		return nil
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts string
		var meta sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Text, &ts, &meta); err != nil {
			s.logRecovery(category, err)
			return nil
		}
		rec.Category = category
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			rec.CreatedAt = t
		}
		if meta.Valid && meta.String != "" {
			_ = json.Unmarshal([]byte(meta.String), &rec.Metadata)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		s.logRecovery(category, err)
		return nil
	}
	return records
}

func (s *SQLiteStore) logRecovery(category domain.Category, err error) {
	if s.log == nil {
		return
	}
	s.log.Warn("history query failed, recovering with empty history", map[string]interface{}{
		"category": string(category),
		"error":    err.Error(),
	})
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)
