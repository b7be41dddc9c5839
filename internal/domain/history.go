package domain

import "time"

// HistoryRecord captures one accepted piece of content within a category.
// Text and CreatedAt are immutable after creation; Metadata is carried
// through verbatim and never inspected by the duplicate guard.
type HistoryRecord struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Decision is the outcome of a duplicate check. Matched is nil when the
// candidate is accepted or the history is empty.
type Decision struct {
	IsDuplicate bool
	MaxScore    float64
	Matched     *HistoryRecord
}
