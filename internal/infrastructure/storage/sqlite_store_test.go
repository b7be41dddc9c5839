package storage

import (
	"errors"
	"testing"

	"github.com/doeshing/adpost-go/internal/domain"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := NewSQLiteStore(t.TempDir(), nil)

	created, err := store.Add(domain.CategoryCaption, "Fresh roast, fresh morning", map[string]any{"model": "gemini-pro"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Add() returned record without id")
	}

	records, err := store.Load(domain.CategoryCaption)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Load() returned %d records, want 1", len(records))
	}
	if records[0].Text != "Fresh roast, fresh morning" {
		t.Errorf("text = %q", records[0].Text)
	}
	if records[0].Metadata["model"] != "gemini-pro" {
		t.Errorf("metadata = %v", records[0].Metadata)
	}
}

func TestSQLiteStoreRecentNewestFirst(t *testing.T) {
	store := NewSQLiteStore(t.TempDir(), nil)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := store.Add(domain.CategoryPost, text, nil); err != nil {
			t.Fatalf("Add(%q) error = %v", text, err)
		}
	}

	recent, err := store.Recent(domain.CategoryPost, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d records, want 2", len(recent))
	}
	if recent[0].Text != "third" || recent[1].Text != "second" {
		t.Errorf("order = [%s, %s], want [third, second]", recent[0].Text, recent[1].Text)
	}
}

func TestSQLiteStoreCategoriesIndependent(t *testing.T) {
	store := NewSQLiteStore(t.TempDir(), nil)

	if _, err := store.Add(domain.CategoryCaption, "a caption", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add(domain.CategoryImage, "an image prompt", nil); err != nil {
		t.Fatal(err)
	}

	captions, err := store.Load(domain.CategoryCaption)
	if err != nil {
		t.Fatal(err)
	}
	images, err := store.Load(domain.CategoryImage)
	if err != nil {
		t.Fatal(err)
	}
	if len(captions) != 1 || len(images) != 1 {
		t.Errorf("captions = %d, images = %d, want 1 and 1", len(captions), len(images))
	}
}

func TestSQLiteStorePruneValidation(t *testing.T) {
	store := NewSQLiteStore(t.TempDir(), nil)

	if _, err := store.Prune(domain.CategoryPost, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Prune(0) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := store.Prune(domain.CategoryPost, -5); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Prune(-5) error = %v, want ErrInvalidArgument", err)
	}

	// nothing stored, nothing pruned
	removed, err := store.Prune(domain.CategoryPost, 30)
	if err != nil {
		t.Fatalf("Prune(30) error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune(30) removed %d, want 0", removed)
	}
}

func TestSQLiteStoreReset(t *testing.T) {
	store := NewSQLiteStore(t.TempDir(), nil)

	if _, err := store.Add(domain.CategoryPrompt, "a prompt", nil); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(domain.CategoryPrompt); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	records, err := store.Load(domain.CategoryPrompt)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("Load() after reset returned %d records", len(records))
	}
}

func TestSQLiteStoreInvalidCategory(t *testing.T) {
	store := NewSQLiteStore(t.TempDir(), nil)

	if _, err := store.Add("bogus", "text", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Add(bogus) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := store.Load("bogus"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Load(bogus) error = %v, want ErrInvalidArgument", err)
	}
}
