package storage

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/adpost-go/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir(), nil)
}

func TestAddThenAllRoundTrip(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Add(domain.CategoryCaption, "Check out our summer sale", nil)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	meta := map[string]any{"product": "shoes", "hashtags": "sale"}
	second, err := store.Add(domain.CategoryCaption, "Buy our new shoes today!", meta)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Fatalf("second record created_at %v before first %v", second.CreatedAt, first.CreatedAt)
	}

	all, err := store.All(domain.CategoryCaption)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All() returned %d records, want 2", len(all))
	}
	if all[1].Text != "Buy our new shoes today!" {
		t.Errorf("last record text = %q", all[1].Text)
	}
	if diff := cmp.Diff(meta, all[1].Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	if all[0].ID == all[1].ID {
		t.Error("record ids are not unique")
	}
}

func TestCategoriesAreIndependent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Add(domain.CategoryPrompt, "prompt text", nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	records, err := store.All(domain.CategoryCaption)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("caption history has %d records, want 0", len(records))
	}
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	texts := []string{"one", "two", "three"}
	for _, txt := range texts {
		if _, err := store.Add(domain.CategoryPrompt, txt, nil); err != nil {
			t.Fatalf("Add(%q) error = %v", txt, err)
		}
	}

	recent, err := store.Recent(domain.CategoryPrompt, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d records, want 2", len(recent))
	}
	if recent[0].Text != "three" || recent[1].Text != "two" {
		t.Errorf("Recent() order = [%q, %q], want newest first", recent[0].Text, recent[1].Text)
	}
}

func TestPruneRejectsNonPositiveAge(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Add(domain.CategoryPost, "posted", nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	for _, days := range []int{0, -5} {
		if _, err := store.Prune(domain.CategoryPost, days); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Prune(days=%d) error = %v, want ErrInvalidArgument", days, err)
		}
	}

	all, err := store.All(domain.CategoryPost)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("history changed after invalid prune: %d records", len(all))
	}
}

func TestPruneRemovesOnlyExpiredRecords(t *testing.T) {
	store := newTestStore(t)

	old := domain.HistoryRecord{
		ID:        "old",
		Category:  domain.CategoryCaption,
		Text:      "stale caption",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -45),
	}
	fresh := domain.HistoryRecord{
		ID:        "fresh",
		Category:  domain.CategoryCaption,
		Text:      "fresh caption",
		CreatedAt: time.Now().UTC(),
	}
	writeDocument(t, store, domain.CategoryCaption, []domain.HistoryRecord{old, fresh})

	removed, err := store.Prune(domain.CategoryCaption, 30)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("Prune() removed %d, want 1", removed)
	}

	remaining, err := store.All(domain.CategoryCaption)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	for _, rec := range remaining {
		if rec.CreatedAt.Before(cutoff) {
			t.Errorf("record %q survived prune with created_at %v", rec.ID, rec.CreatedAt)
		}
	}
	if len(remaining) != 1 || remaining[0].ID != "fresh" {
		t.Errorf("remaining records = %+v, want only the fresh one", remaining)
	}
}

func TestLoadCorruptFileRecoversEmpty(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(store.Root(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.pathFor(domain.CategoryImage), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := store.Load(domain.CategoryImage)
	if err != nil {
		t.Fatalf("Load() on corrupt file error = %v, want nil", err)
	}
	if len(records) != 0 {
		t.Fatalf("Load() on corrupt file returned %d records, want 0", len(records))
	}
}

func TestResetDropsCategory(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Add(domain.CategoryImage, "a beach at dusk", nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Reset(domain.CategoryImage); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	records, err := store.All(domain.CategoryImage)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("history not empty after reset: %d records", len(records))
	}
	// resetting an already-empty category is a no-op
	if err := store.Reset(domain.CategoryImage); err != nil {
		t.Fatalf("Reset() on empty category error = %v", err)
	}
}

func TestUnknownCategoryRejected(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Add(domain.Category("story"), "text", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Add(unknown category) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := store.Load(domain.Category("story")); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Load(unknown category) error = %v, want ErrInvalidArgument", err)
	}
}

func writeDocument(t *testing.T, store *FileStore, category domain.Category, records []domain.HistoryRecord) {
	t.Helper()
	if err := os.MkdirAll(store.Root(), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(historyDocument{Records: records})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.pathFor(category), data, 0o644); err != nil {
		t.Fatal(err)
	}
}
