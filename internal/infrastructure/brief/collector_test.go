package brief

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/adpost-go/internal/domain"
)

func TestCollectPrefersInlineBrief(t *testing.T) {
	collector := NewFileCollector()
	inline := &domain.Brief{Product: "shoes", Description: "Lightweight running shoes"}

	got, err := collector.Collect(context.Background(), domain.Config{}, domain.PostRequest{Brief: inline})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got.Product != "shoes" {
		t.Errorf("product = %q, want shoes", got.Product)
	}
}

func TestCollectReadsBriefFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.yaml")
	data := []byte("product: coffee\ndescription: Single-origin beans\ntone: casual\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	collector := NewFileCollector()
	got, err := collector.Collect(context.Background(), domain.Config{}, domain.PostRequest{BriefPath: path})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got.Description != "Single-origin beans" {
		t.Errorf("description = %q", got.Description)
	}
	if got.Tone != "casual" {
		t.Errorf("tone = %q, want casual", got.Tone)
	}
}

func TestCollectRejectsEmptyDescription(t *testing.T) {
	collector := NewFileCollector()
	inline := &domain.Brief{Product: "shoes", Description: "   "}

	_, err := collector.Collect(context.Background(), domain.Config{}, domain.PostRequest{Brief: inline})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Collect() error = %v, want ErrInvalidArgument", err)
	}
}

func TestCollectMissingFile(t *testing.T) {
	collector := NewFileCollector()
	_, err := collector.Collect(context.Background(), domain.Config{}, domain.PostRequest{
		BriefPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err == nil {
		t.Fatal("Collect() succeeded for a missing brief file")
	}
}
