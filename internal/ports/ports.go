// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces allow the application to remain
// independent of specific implementations like storage engines, HTTP clients,
// or CLI frameworks.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., HistoryStore, Scorer, Publisher)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/adpost-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.adpost/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Scorer computes a normalized similarity score between two texts.
//
// Score must be symmetric and deterministic, return a value in [0,1],
// score identical non-empty inputs exactly 1.0, identical empty inputs 1.0,
// and one-empty-one-not 0.0. Implementations must be pure: no side effects,
// no I/O. Alternative algorithms (edit distance, embedding cosine) can be
// swapped in without touching the guard or the store.
type Scorer interface {
	Score(a, b string) float64
}

// HistoryStore persists per-category, append-only content history.
//
// Implementations own the on-disk representation exclusively and must treat
// every read-modify-write-persist sequence as a critical section. Load
// degrades to an empty history on corrupt or missing state (fail-open);
// write failures wrap domain.ErrStorageWrite and leave prior persisted
// state unchanged.
type HistoryStore interface {
	// Load returns the full persisted history for a category in insertion
	// order. Corrupt or missing state yields an empty slice, not an error.
	Load(category domain.Category) ([]domain.HistoryRecord, error)
	// Add appends a record with a fresh id and current UTC timestamp,
	// persists synchronously and returns the created record.
	Add(category domain.Category, text string, metadata map[string]any) (domain.HistoryRecord, error)
	// Recent returns up to limit most-recently-created records, newest first.
	Recent(category domain.Category, limit int) ([]domain.HistoryRecord, error)
	// All returns the full category history in insertion order.
	All(category domain.Category) ([]domain.HistoryRecord, error)
	// Prune removes records older than maxAgeDays and reports how many were
	// removed. maxAgeDays <= 0 is domain.ErrInvalidArgument.
	Prune(category domain.Category, maxAgeDays int) (int, error)
	// Reset drops the whole category history.
	Reset(category domain.Category) error
}

// GenerationKind names one content generation task.
type GenerationKind string

const (
	GenerateCaption     GenerationKind = "caption"
	GenerateHashtags    GenerationKind = "hashtags"
	GenerateImagePrompt GenerationKind = "image_prompt"
)

// ProviderRequest contains all data needed to generate one piece of content.
type ProviderRequest struct {
	Kind    GenerationKind
	Brief   domain.Brief
	Caption string // prior caption, set for hashtag generation
	Model   domain.ModelDefinition
	Debug   bool
}

// ProviderResponse carries the raw generated text; parsing (hashtag lines,
// truncation) happens in the application layer.
type ProviderResponse struct {
	Text string
}

// Provider defines the content generation capability backing the agent.
// Each provider implementation wraps a specific generative service API.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderFactory builds provider instances based on model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Publisher posts accepted content to the external social platform.
// It never touches history; the caller records accepted posts.
type Publisher interface {
	PublishFeed(ctx context.Context, imagePath, caption string, hashtags []string) (domain.PostResult, error)
	PublishStory(ctx context.Context, imagePath, caption string) (domain.PostResult, error)
	// Verify checks credentials/connectivity; used by the doctor.
	Verify(ctx context.Context) error
}

// BriefCollector gathers the product brief that seeds content generation.
type BriefCollector interface {
	Collect(ctx context.Context, cfg domain.Config, req domain.PostRequest) (domain.Brief, error)
}

// PolicyService evaluates a draft against content rules (caption length,
// hashtag caps, banned phrasing) before publishing.
type PolicyService interface {
	Evaluate(draft domain.Draft) (domain.PolicyVerdict, error)
}

// ConfirmationPrompter handles interactive confirmation before publishing
// warned content.
type ConfirmationPrompter interface {
	Confirm(verdict domain.PolicyVerdict, caption string) (bool, error)
	Enabled() bool
}

// CacheStore memoizes provider responses keyed by request hash.
type CacheStore interface {
	Get(key string) (domain.CacheEntry, bool, error)
	Set(entry domain.CacheEntry) error
	Entries() ([]domain.CacheEntry, error)
	Clear() error
	Dir() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
