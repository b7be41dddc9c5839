package domain

import "time"

// CacheEntry stores cached provider responses.
type CacheEntry struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
