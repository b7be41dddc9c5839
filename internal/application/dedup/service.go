// Package dedup implements the duplicate guard: it decides whether a
// candidate text is too similar to recently accepted history in the same
// category. The guard only reads through the store's query interface;
// persisting an accepted candidate is the caller's move (or TryAdd's).
package dedup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Service orchestrates the scorer and the history store.
type Service struct {
	Store  ports.HistoryStore
	Scorer ports.Scorer
	Logger ports.Logger
}

// Check scans up to lookback most-recent records of the category and reports
// the maximum similarity against candidate. IsDuplicate is true iff the max
// score reaches threshold. When several records tie at the maximum, the most
// recently created one is reported (the scan is newest-first and keeps the
// first maximum).
//
// An empty or whitespace-only candidate is never a duplicate: its score is
// forced to zero regardless of the scorer's empty-string rule, so legitimate
// empty captions are not rejected as duplicates of each other.
//
// Check never writes to the store. A lookback of zero selects the default
// window; a negative lookback or a threshold outside [0,1] is rejected.
func (s *Service) Check(category domain.Category, candidate string, threshold float64, lookback int) (domain.Decision, error) {
	if s.Store == nil || s.Scorer == nil {
		return domain.Decision{}, errors.New("dedup.Service dependencies not satisfied")
	}
	if !category.Valid() {
		return domain.Decision{}, fmt.Errorf("%w: category %q", domain.ErrInvalidArgument, category)
	}
	if threshold < 0 || threshold > 1 {
		return domain.Decision{}, fmt.Errorf("%w: threshold %v outside [0,1]", domain.ErrInvalidArgument, threshold)
	}
	if lookback < 0 {
		return domain.Decision{}, fmt.Errorf("%w: negative lookback %d", domain.ErrInvalidArgument, lookback)
	}
	if lookback == 0 {
		lookback = domain.DefaultLookback
	}

	if strings.TrimSpace(candidate) == "" {
		return domain.Decision{}, nil
	}

	recent, err := s.Store.Recent(category, lookback)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return domain.Decision{}, err
		}
		// Fail open: an unreadable history must not block posting.
		s.warn("recent history unavailable, treating as empty", category, err)
		recent = nil
	}

	var (
		maxScore float64
		matched  *domain.HistoryRecord
	)
	for i := range recent {
		score := s.Scorer.Score(candidate, recent[i].Text)
		// strictly greater keeps the first (most recent) record on ties
		if matched == nil || score > maxScore {
			maxScore = score
			matched = &recent[i]
		}
	}

	decision := domain.Decision{MaxScore: maxScore}
	if matched != nil && maxScore >= threshold {
		decision.IsDuplicate = true
		decision.Matched = matched
	}
	return decision, nil
}

// TryAdd combines Check and Add atomically from the caller's perspective:
// the candidate is persisted only when accepted. The created record is nil
// for rejected candidates.
func (s *Service) TryAdd(category domain.Category, candidate string, metadata map[string]any, threshold float64, lookback int) (domain.Decision, *domain.HistoryRecord, error) {
	decision, err := s.Check(category, candidate, threshold, lookback)
	if err != nil || decision.IsDuplicate {
		return decision, nil, err
	}
	record, err := s.Store.Add(category, candidate, metadata)
	if err != nil {
		return decision, nil, err
	}
	return decision, &record, nil
}

func (s *Service) warn(msg string, category domain.Category, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, map[string]interface{}{
		"category": string(category),
		"error":    err.Error(),
	})
}
