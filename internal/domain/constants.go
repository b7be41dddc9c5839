package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// HistoryFilePermissions is the permission for history files (rw-r--r--)
	HistoryFilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultGenerationTimeout bounds one content generation round-trip
	DefaultGenerationTimeout = 90 * time.Second
)

// Duplicate guard constants
const (
	// DefaultThreshold is the similarity score at or above which a
	// candidate counts as a duplicate
	DefaultThreshold = 0.75
	// DefaultLookback is how many most-recent records are scanned per check
	DefaultLookback = 50
	// DefaultRetentionDays is the default history retention window
	DefaultRetentionDays = 30
)

// Content constants (Instagram limits)
const (
	// MaxCaptionLength is the hard cap on caption characters
	MaxCaptionLength = 2200
	// MaxHashtags is the hard cap on hashtags per post
	MaxHashtags = 30
)

// History display constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
