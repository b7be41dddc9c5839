package dedup

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/infrastructure/similarity"
)

// memStore is an in-memory HistoryStore for guard tests.
type memStore struct {
	records map[domain.Category][]domain.HistoryRecord
	loadErr error
	addErr  error
}

func newMemStore(texts ...string) *memStore {
	s := &memStore{records: map[domain.Category][]domain.HistoryRecord{}}
	for i, txt := range texts {
		s.records[domain.CategoryCaption] = append(s.records[domain.CategoryCaption], domain.HistoryRecord{
			ID:        fmt.Sprintf("rec-%d", i),
			Category:  domain.CategoryCaption,
			Text:      txt,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
	}
	return s
}

func (s *memStore) Load(cat domain.Category) ([]domain.HistoryRecord, error) {
	return s.records[cat], s.loadErr
}

func (s *memStore) Add(cat domain.Category, text string, metadata map[string]any) (domain.HistoryRecord, error) {
	if s.addErr != nil {
		return domain.HistoryRecord{}, s.addErr
	}
	rec := domain.HistoryRecord{
		ID:        fmt.Sprintf("rec-%d", len(s.records[cat])),
		Category:  cat,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}
	s.records[cat] = append(s.records[cat], rec)
	return rec, nil
}

func (s *memStore) Recent(cat domain.Category, limit int) ([]domain.HistoryRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
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

func (s *memStore) Prune(domain.Category, int) (int, error) { return 0, nil }
func (s *memStore) Reset(cat domain.Category) error {
	delete(s.records, cat)
	return nil
}

func newGuard(store *memStore) *Service {
	return &Service{Store: store, Scorer: similarity.NewTokenSetScorer()}
}

func TestCheckFlagsNearDuplicate(t *testing.T) {
	store := newMemStore("Buy our new shoes today!", "Check out our summer sale")
	guard := newGuard(store)

	decision, err := guard.Check(domain.CategoryCaption, "Check out our summer sale now", 0.7, 10)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !decision.IsDuplicate {
		t.Fatalf("Check() accepted a near-duplicate, max score %v", decision.MaxScore)
	}
	if decision.Matched == nil || decision.Matched.Text != "Check out our summer sale" {
		t.Errorf("matched record = %+v, want the summer sale caption", decision.Matched)
	}
}

func TestCheckAcceptsFreshText(t *testing.T) {
	store := newMemStore("Buy our new shoes today!", "Check out our summer sale")
	guard := newGuard(store)

	decision, err := guard.Check(domain.CategoryCaption, "Discover handcrafted ceramic mugs", 0.7, 10)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if decision.IsDuplicate {
		t.Fatalf("Check() rejected unrelated text, max score %v", decision.MaxScore)
	}
	if decision.Matched != nil {
		t.Errorf("accepted candidate carries matched record %+v", decision.Matched)
	}
}

func TestCheckEmptyCandidateNeverDuplicate(t *testing.T) {
	store := newMemStore("Buy our new shoes today!", "")
	guard := newGuard(store)

	for _, candidate := range []string{"", "   ", "\n\t"} {
		decision, err := guard.Check(domain.CategoryCaption, candidate, 0.7, 10)
		if err != nil {
			t.Fatalf("Check(%q) error = %v", candidate, err)
		}
		if decision.IsDuplicate || decision.MaxScore != 0 {
			t.Errorf("Check(%q) = %+v, want non-duplicate with score 0", candidate, decision)
		}
	}
}

func TestCheckTieBreaksOnMostRecent(t *testing.T) {
	store := newMemStore("same caption text", "same caption text")
	guard := newGuard(store)

	decision, err := guard.Check(domain.CategoryCaption, "same caption text", 0.7, 10)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !decision.IsDuplicate {
		t.Fatal("identical candidate not flagged")
	}
	// rec-1 was inserted last, so it is the most recent of the tie
	if decision.Matched == nil || decision.Matched.ID != "rec-1" {
		t.Errorf("matched record = %+v, want the most recent (rec-1)", decision.Matched)
	}
}

func TestCheckHonorsLookbackWindow(t *testing.T) {
	store := newMemStore("oldest caption about shoes", "middle caption about hats", "newest caption about mugs")
	guard := newGuard(store)

	// window of 1 only sees the newest record, so the oldest is invisible
	decision, err := guard.Check(domain.CategoryCaption, "oldest caption about shoes", 0.7, 1)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if decision.IsDuplicate {
		t.Errorf("record outside lookback window still matched: %+v", decision)
	}
}

func TestCheckValidatesArguments(t *testing.T) {
	guard := newGuard(newMemStore())

	cases := []struct {
		name      string
		category  domain.Category
		threshold float64
		lookback  int
	}{
		{"threshold above one", domain.CategoryCaption, 1.5, 10},
		{"negative threshold", domain.CategoryCaption, -0.1, 10},
		{"negative lookback", domain.CategoryCaption, 0.7, -1},
		{"unknown category", domain.Category("story"), 0.7, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := guard.Check(tc.category, "text", tc.threshold, tc.lookback)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("Check() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestCheckFailsOpenOnReadError(t *testing.T) {
	store := newMemStore("Buy our new shoes today!")
	store.loadErr = errors.New("disk unreadable")
	guard := newGuard(store)

	decision, err := guard.Check(domain.CategoryCaption, "Buy our new shoes today!", 0.7, 10)
	if err != nil {
		t.Fatalf("Check() error = %v, want fail-open nil", err)
	}
	if decision.IsDuplicate {
		t.Errorf("Check() blocked despite unreadable history: %+v", decision)
	}
}

func TestTryAddPersistsOnlyAcceptedCandidates(t *testing.T) {
	store := newMemStore("Check out our summer sale")
	guard := newGuard(store)

	decision, record, err := guard.TryAdd(domain.CategoryCaption, "Check out our summer sale now", nil, 0.7, 10)
	if err != nil {
		t.Fatalf("TryAdd() error = %v", err)
	}
	if !decision.IsDuplicate || record != nil {
		t.Fatalf("TryAdd() stored a duplicate: decision=%+v record=%+v", decision, record)
	}
	if len(store.records[domain.CategoryCaption]) != 1 {
		t.Fatal("duplicate candidate was persisted")
	}

	decision, record, err = guard.TryAdd(domain.CategoryCaption, "Fresh roasted coffee, delivered weekly", map[string]any{"product": "coffee"}, 0.7, 10)
	if err != nil {
		t.Fatalf("TryAdd() error = %v", err)
	}
	if decision.IsDuplicate || record == nil {
		t.Fatalf("TryAdd() rejected fresh text: decision=%+v", decision)
	}
	if len(store.records[domain.CategoryCaption]) != 2 {
		t.Fatal("accepted candidate was not persisted")
	}
}

func TestTryAddSurfacesWriteFailure(t *testing.T) {
	store := newMemStore()
	store.addErr = fmt.Errorf("%w: disk full", domain.ErrStorageWrite)
	guard := newGuard(store)

	_, record, err := guard.TryAdd(domain.CategoryCaption, "anything at all", nil, 0.7, 10)
	if !errors.Is(err, domain.ErrStorageWrite) {
		t.Fatalf("TryAdd() error = %v, want ErrStorageWrite", err)
	}
	if record != nil {
		t.Errorf("TryAdd() returned record %+v despite write failure", record)
	}
}
