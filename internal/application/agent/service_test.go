package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/adpost-go/internal/application/dedup"
	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/infrastructure/similarity"
	"github.com/doeshing/adpost-go/internal/pkg/logger"
	"github.com/doeshing/adpost-go/internal/ports"
)

func testConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "stub"},
		Dedup:       domain.DedupSettings{Threshold: 0.75, Lookback: 50, RetentionDays: 30},
		Posting:     domain.PostingSettings{PostToFeed: true, PostToStories: false},
		Models:      []domain.ModelDefinition{{Name: "stub"}},
	}
}

func testBrief() domain.Brief {
	return domain.Brief{
		Product:        "coffee",
		Description:    "Premium single-origin coffee beans from Colombia",
		TargetAudience: "coffee enthusiasts aged 25-45",
		Tone:           "professional",
	}
}

func newTestService(store *memStore, pub *stubPublisher, cfg domain.Config) *Service {
	guard := &dedup.Service{Store: store, Scorer: similarity.NewTokenSetScorer()}
	return &Service{
		ConfigProvider:  stubConfigProvider{cfg: cfg},
		BriefCollector:  stubCollector{brief: testBrief()},
		ProviderFactory: stubFactory{},
		Guard:           guard,
		Store:           store,
		Policy:          stubPolicy{},
		Publisher:       pub,
		Logger:          logger.NewStd(false),
	}
}

func TestRunPublishesAndRecordsHistory(t *testing.T) {
	store := newMemStore()
	pub := &stubPublisher{}
	svc := newTestService(store, pub, testConfig())

	resp, err := svc.Run(domain.PostRequest{Context: context.Background()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Rejected {
		t.Fatalf("Run() rejected: %s", resp.Reason)
	}
	if !pub.feedCalled {
		t.Fatal("feed publish was not attempted")
	}
	if resp.FeedResult == nil || !resp.FeedResult.Success {
		t.Fatalf("feed result = %+v", resp.FeedResult)
	}

	for _, cat := range []domain.Category{domain.CategoryPrompt, domain.CategoryCaption, domain.CategoryImage, domain.CategoryPost} {
		if len(store.records[cat]) != 1 {
			t.Errorf("category %s has %d records after publish, want 1", cat, len(store.records[cat]))
		}
	}
}

func TestRunRejectsDuplicateCaption(t *testing.T) {
	store := newMemStore()
	// seed history with the exact caption the stub provider will generate
	store.records[domain.CategoryCaption] = []domain.HistoryRecord{{
		ID:        "seed",
		Category:  domain.CategoryCaption,
		Text:      stubCaption,
		CreatedAt: time.Now().UTC(),
	}}
	pub := &stubPublisher{}
	svc := newTestService(store, pub, testConfig())

	resp, err := svc.Run(domain.PostRequest{Context: context.Background()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !resp.Rejected {
		t.Fatal("Run() accepted a duplicate caption")
	}
	if !strings.Contains(resp.Reason, "caption") {
		t.Errorf("reason = %q, want mention of caption", resp.Reason)
	}
	if pub.feedCalled {
		t.Error("publish attempted despite duplicate caption")
	}
	if len(store.records[domain.CategoryPost]) != 0 {
		t.Error("post recorded despite rejection")
	}
}

func TestRunDryRunSkipsPublishAndPersistence(t *testing.T) {
	store := newMemStore()
	pub := &stubPublisher{}
	svc := newTestService(store, pub, testConfig())

	resp, err := svc.Run(domain.PostRequest{Context: context.Background(), DryRun: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Rejected {
		t.Fatalf("dry run rejected: %s", resp.Reason)
	}
	if pub.feedCalled || pub.storyCalled {
		t.Error("dry run reached the publisher")
	}
	for cat, recs := range store.records {
		if len(recs) != 0 {
			t.Errorf("dry run persisted %d records in %s", len(recs), cat)
		}
	}
	if _, ok := resp.Decisions[domain.CategoryCaption]; !ok {
		t.Error("dry run carries no caption decision")
	}
}

func TestRunBlockedByPolicy(t *testing.T) {
	store := newMemStore()
	pub := &stubPublisher{}
	svc := newTestService(store, pub, testConfig())
	svc.Policy = stubPolicy{verdict: domain.PolicyVerdict{
		Action:  domain.PolicyBlock,
		Reasons: []string{"medical claims"},
	}}
	cfg := testConfig()
	cfg.Policy.Enabled = true
	svc.ConfigProvider = stubConfigProvider{cfg: cfg}

	resp, err := svc.Run(domain.PostRequest{Context: context.Background()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !resp.Rejected || !strings.Contains(resp.Reason, "policy") {
		t.Fatalf("response = %+v, want policy rejection", resp)
	}
	if pub.feedCalled {
		t.Error("publish attempted despite policy block")
	}
}

func TestRunSurfacesPublishFailure(t *testing.T) {
	store := newMemStore()
	pub := &stubPublisher{feedErr: errors.New("network down")}
	svc := newTestService(store, pub, testConfig())

	_, err := svc.Run(domain.PostRequest{Context: context.Background()})
	if err == nil {
		t.Fatal("Run() succeeded despite failed publish")
	}
	if len(store.records[domain.CategoryPost]) != 0 {
		t.Error("failed post was recorded into history")
	}
}

func TestPruneAppliesRetentionToEveryCategory(t *testing.T) {
	store := newMemStore()
	old := time.Now().UTC().AddDate(0, 0, -60)
	for _, cat := range domain.Categories() {
		store.records[cat] = []domain.HistoryRecord{
			{ID: "old-" + string(cat), Category: cat, Text: "stale", CreatedAt: old},
			{ID: "new-" + string(cat), Category: cat, Text: "fresh", CreatedAt: time.Now().UTC()},
		}
	}
	svc := newTestService(store, &stubPublisher{}, testConfig())

	removed, err := svc.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != len(domain.Categories()) {
		t.Errorf("Prune() removed %d, want %d", removed, len(domain.Categories()))
	}
}

// ---- stubs ----

const stubCaption = "Wake up to Colombia's finest beans, roasted for you"

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubCollector struct {
	brief domain.Brief
	err   error
}

func (s stubCollector) Collect(context.Context, domain.Config, domain.PostRequest) (domain.Brief, error) {
	return s.brief, s.err
}

type stubFactory struct{}

func (stubFactory) ForModel(m domain.ModelDefinition) (ports.Provider, error) {
	return stubProvider{model: m}, nil
}

type stubProvider struct {
	model domain.ModelDefinition
}

func (p stubProvider) Name() string                  { return "stub" }
func (p stubProvider) Model() domain.ModelDefinition { return p.model }
func (p stubProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	switch req.Kind {
	case ports.GenerateCaption:
		return ports.ProviderResponse{Text: stubCaption}, nil
	case ports.GenerateHashtags:
		return ports.ProviderResponse{Text: "coffee\ncolombia\nmorningbrew"}, nil
	case ports.GenerateImagePrompt:
		return ports.ProviderResponse{Text: "Steaming coffee cup on a wooden table, warm morning light"}, nil
	}
	return ports.ProviderResponse{}, fmt.Errorf("unexpected kind %q", req.Kind)
}

type stubPolicy struct {
	verdict domain.PolicyVerdict
	err     error
}

func (s stubPolicy) Evaluate(domain.Draft) (domain.PolicyVerdict, error) {
	if s.verdict.Action == "" {
		return domain.PolicyVerdict{Action: domain.PolicyAllow}, s.err
	}
	return s.verdict, s.err
}

type stubPublisher struct {
	feedCalled  bool
	storyCalled bool
	feedErr     error
	storyErr    error
}

func (p *stubPublisher) PublishFeed(context.Context, string, string, []string) (domain.PostResult, error) {
	p.feedCalled = true
	if p.feedErr != nil {
		return domain.PostResult{Surface: domain.SurfaceFeed, Error: p.feedErr.Error()}, p.feedErr
	}
	return domain.PostResult{Surface: domain.SurfaceFeed, Success: true, MediaID: "media-1", PostedAt: time.Now().UTC()}, nil
}

func (p *stubPublisher) PublishStory(context.Context, string, string) (domain.PostResult, error) {
	p.storyCalled = true
	if p.storyErr != nil {
		return domain.PostResult{Surface: domain.SurfaceStory, Error: p.storyErr.Error()}, p.storyErr
	}
	return domain.PostResult{Surface: domain.SurfaceStory, Success: true, MediaID: "media-2", PostedAt: time.Now().UTC()}, nil
}

func (p *stubPublisher) Verify(context.Context) error { return nil }

// memStore is an in-memory HistoryStore.
type memStore struct {
	records map[domain.Category][]domain.HistoryRecord
}

func newMemStore() *memStore {
	return &memStore{records: map[domain.Category][]domain.HistoryRecord{}}
}

func (s *memStore) Load(cat domain.Category) ([]domain.HistoryRecord, error) {
	return s.records[cat], nil
}

func (s *memStore) Add(cat domain.Category, text string, metadata map[string]any) (domain.HistoryRecord, error) {
	rec := domain.HistoryRecord{
		ID:        fmt.Sprintf("%s-%d", cat, len(s.records[cat])),
		Category:  cat,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}
	s.records[cat] = append(s.records[cat], rec)
	return rec, nil
}

func (s *memStore) Recent(cat domain.Category, limit int) ([]domain.HistoryRecord, error) {
	all := s.records[cat]
	var out []domain.HistoryRecord
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) All(cat domain.Category) ([]domain.HistoryRecord, error) {
	return s.records[cat], nil
}

func (s *memStore) Prune(cat domain.Category, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)
	kept := s.records[cat][:0:0]
	removed := 0
	for _, rec := range s.records[cat] {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records[cat] = kept
	return removed, nil
}

func (s *memStore) Reset(cat domain.Category) error {
	delete(s.records, cat)
	return nil
}
