// Package domain defines core business entities and value objects for adpost.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures: history records, duplicate
// decisions, briefs, drafts and posting results.
package domain

import (
	"context"
	"time"
)

// Brief describes the advertised product and how content should be generated
// for it. It is collected from the operator (YAML file or flags) before a run.
type Brief struct {
	Product        string            `yaml:"product"`
	Description    string            `yaml:"description"`
	TargetAudience string            `yaml:"target_audience"`
	Tone           string            `yaml:"tone"`
	Style          string            `yaml:"style"`
	ImagePath      string            `yaml:"image_path,omitempty"`
	Extras         map[string]string `yaml:"extras,omitempty"`
}

// Draft is one round of generated content awaiting policy and duplicate
// checks. ImagePrompt is the textual descriptor compared for image dedup.
type Draft struct {
	Caption     string
	Hashtags    []string
	ImagePrompt string
	ImagePath   string
	ModelUsed   string
	FromCache   bool
}

// PostSurface names a publish destination.
type PostSurface string

const (
	SurfaceFeed  PostSurface = "feed"
	SurfaceStory PostSurface = "story"
)

// PostResult reports one publish attempt back to the caller, which decides
// whether to record the post in history.
type PostResult struct {
	Surface  PostSurface `json:"surface"`
	Success  bool        `json:"success"`
	MediaID  string      `json:"media_id,omitempty"`
	Error    string      `json:"error,omitempty"`
	PostedAt time.Time   `json:"posted_at"`
}

// PostRequest captures operator intent for a single agent run.
type PostRequest struct {
	Context       context.Context
	BriefPath     string
	Brief         *Brief
	ModelOverride string
	DryRun        bool
	SkipStory     bool
	Debug         bool
}

// PostResponse is the canonical outcome propagated back to the CLI.
type PostResponse struct {
	Draft       Draft
	Decisions   map[Category]Decision
	Verdict     PolicyVerdict
	FeedResult  *PostResult
	StoryResult *PostResult
	Rejected    bool
	Reason      string
}
