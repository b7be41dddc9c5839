// Package agent orchestrates one posting run end-to-end: collect the brief,
// generate content, run policy and duplicate checks, publish, and record
// accepted content into history. History writes happen only after a
// successful publish, so rejected or failed candidates never pollute the
// duplicate guard's lookback window.
package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/adpost-go/internal/application/dedup"
	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Service wires the collaborators of a posting run.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	BriefCollector  ports.BriefCollector
	ProviderFactory ports.ProviderFactory
	Guard           *dedup.Service
	Store           ports.HistoryStore
	Policy          ports.PolicyService
	Publisher       ports.Publisher
	Prompter        ports.ConfirmationPrompter
	Cache           ports.CacheStore
	Logger          ports.Logger
}

// Run executes a single posting flow.
func (s *Service) Run(req domain.PostRequest) (domain.PostResponse, error) {
	if s.ConfigProvider == nil || s.BriefCollector == nil || s.ProviderFactory == nil ||
		s.Guard == nil || s.Store == nil || s.Logger == nil {
		return domain.PostResponse{}, errors.New("agent.Service dependencies not satisfied")
	}
	if !req.DryRun && s.Publisher == nil {
		return domain.PostResponse{}, errors.New("agent.Service publisher not configured")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.PostResponse{}, fmt.Errorf("load config: %w", err)
	}
	if req.SkipStory {
		cfg.Posting.PostToStories = false
	}

	brief, err := s.BriefCollector.Collect(ctx, cfg, req)
	if err != nil {
		return domain.PostResponse{}, fmt.Errorf("collect brief: %w", err)
	}

	modelDef, err := pickModel(cfg, req.ModelOverride)
	if err != nil {
		return domain.PostResponse{}, err
	}
	provider, err := s.ProviderFactory.ForModel(modelDef)
	if err != nil {
		return domain.PostResponse{}, fmt.Errorf("provider init: %w", err)
	}

	genCtx := ctx
	if cfg.Preferences.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Preferences.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	draft, err := s.buildDraft(genCtx, provider, brief, req.Debug)
	if err != nil {
		return domain.PostResponse{}, err
	}

	resp := domain.PostResponse{Draft: draft, Decisions: map[domain.Category]domain.Decision{}}

	if cfg.Policy.Enabled && s.Policy != nil {
		verdict, err := s.Policy.Evaluate(draft)
		if err != nil {
			return resp, fmt.Errorf("policy evaluate: %w", err)
		}
		resp.Verdict = verdict
		if verdict.Blocked() {
			resp.Rejected = true
			resp.Reason = "blocked by content policy: " + strings.Join(verdict.Reasons, "; ")
			return resp, nil
		}
	}

	promptText := promptTextFor(brief)
	if rejected, reason, err := s.runGuards(&resp, cfg, promptText, draft); err != nil {
		return resp, err
	} else if rejected {
		resp.Rejected = true
		resp.Reason = reason
		return resp, nil
	}

	if req.DryRun {
		return resp, nil
	}

	if resp.Verdict.Action == domain.PolicyWarn && cfg.Posting.ConfirmBeforePost {
		if s.Prompter == nil || !s.Prompter.Enabled() {
			resp.Rejected = true
			resp.Reason = "policy warning needs confirmation but no prompter is available"
			return resp, nil
		}
		approved, err := s.Prompter.Confirm(resp.Verdict, draft.Caption)
		if err != nil {
			return resp, err
		}
		if !approved {
			resp.Rejected = true
			resp.Reason = "operator declined to publish"
			return resp, nil
		}
	}

	published, err := s.publish(ctx, cfg, &resp, draft)
	if err != nil {
		return resp, err
	}
	if !published {
		resp.Rejected = true
		resp.Reason = "no surface accepted the post"
		return resp, nil
	}

	s.record(&resp, cfg, promptText, draft)
	return resp, nil
}

// Prune applies the configured retention window to every category and
// returns the total number of removed records.
func (s *Service) Prune(ctx context.Context) (int, error) {
	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}
	days := cfg.Dedup.RetentionDays
	if days <= 0 {
		days = domain.DefaultRetentionDays
	}
	total := 0
	for _, cat := range domain.Categories() {
		removed, err := s.Store.Prune(cat, days)
		if err != nil {
			return total, err
		}
		total += removed
	}
	s.Logger.Info("history pruned", map[string]interface{}{
		"max_age_days": days,
		"removed":      total,
	})
	return total, nil
}

func (s *Service) buildDraft(ctx context.Context, provider ports.Provider, brief domain.Brief, debug bool) (domain.Draft, error) {
	caption, fromCache, err := s.generate(ctx, provider, ports.GenerateCaption, brief, "", debug)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("generate caption: %w", err)
	}
	caption = truncateCaption(caption)

	rawTags, tagsCached, err := s.generate(ctx, provider, ports.GenerateHashtags, brief, caption, debug)
	if err != nil {
		// hashtags are decoration, not a reason to abort the run
		s.Logger.Warn("hashtag generation failed", map[string]interface{}{"error": err.Error()})
		rawTags = ""
	}

	imagePrompt, imageCached, err := s.generate(ctx, provider, ports.GenerateImagePrompt, brief, "", debug)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("generate image prompt: %w", err)
	}

	return domain.Draft{
		Caption:     caption,
		Hashtags:    formatHashtags(rawTags),
		ImagePrompt: imagePrompt,
		ImagePath:   brief.ImagePath,
		ModelUsed:   provider.Model().Name,
		FromCache:   fromCache && tagsCached && imageCached,
	}, nil
}

// runGuards checks prompt, caption and image prompt against their history
// partitions. A duplicate prompt only logs: the same product brief may
// legitimately recur, but the generated caption or image must not.
func (s *Service) runGuards(resp *domain.PostResponse, cfg domain.Config, promptText string, draft domain.Draft) (bool, string, error) {
	threshold := cfg.Dedup.Threshold
	lookback := cfg.Dedup.Lookback

	promptDecision, err := s.Guard.Check(domain.CategoryPrompt, promptText, threshold, lookback)
	if err != nil {
		return false, "", err
	}
	resp.Decisions[domain.CategoryPrompt] = promptDecision
	if promptDecision.IsDuplicate {
		s.Logger.Warn("brief resembles a recent one", map[string]interface{}{
			"score": promptDecision.MaxScore,
		})
	}

	captionDecision, err := s.Guard.Check(domain.CategoryCaption, draft.Caption, threshold, lookback)
	if err != nil {
		return false, "", err
	}
	resp.Decisions[domain.CategoryCaption] = captionDecision
	if captionDecision.IsDuplicate {
		return true, duplicateReason("caption", captionDecision), nil
	}

	imageDecision, err := s.Guard.Check(domain.CategoryImage, draft.ImagePrompt, threshold, lookback)
	if err != nil {
		return false, "", err
	}
	resp.Decisions[domain.CategoryImage] = imageDecision
	if imageDecision.IsDuplicate {
		return true, duplicateReason("image prompt", imageDecision), nil
	}
	return false, "", nil
}

func (s *Service) publish(ctx context.Context, cfg domain.Config, resp *domain.PostResponse, draft domain.Draft) (bool, error) {
	published := false
	var firstErr error

	if cfg.Posting.PostToFeed {
		result, err := s.Publisher.PublishFeed(ctx, draft.ImagePath, draft.Caption, draft.Hashtags)
		resp.FeedResult = &result
		if err != nil {
			firstErr = err
			s.Logger.Error("feed publish failed", err, nil)
		} else {
			published = true
		}
	}
	if cfg.Posting.PostToStories {
		result, err := s.Publisher.PublishStory(ctx, draft.ImagePath, draft.Caption)
		resp.StoryResult = &result
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.Logger.Error("story publish failed", err, nil)
		} else {
			published = true
		}
	}

	if !published && firstErr != nil {
		return false, fmt.Errorf("publish: %w", firstErr)
	}
	return published, nil
}

// record persists the accepted content after a successful publish. Write
// failures are logged, not returned: the post is already live, and the
// next run's guard fails open anyway.
func (s *Service) record(resp *domain.PostResponse, cfg domain.Config, promptText string, draft domain.Draft) {
	briefMeta := map[string]any{"model": draft.ModelUsed}

	if !resp.Decisions[domain.CategoryPrompt].IsDuplicate {
		s.add(domain.CategoryPrompt, promptText, briefMeta)
	}
	s.add(domain.CategoryCaption, draft.Caption, map[string]any{
		"model":    draft.ModelUsed,
		"hashtags": strings.Join(draft.Hashtags, " "),
	})
	s.add(domain.CategoryImage, draft.ImagePrompt, map[string]any{
		"image_path": draft.ImagePath,
	})

	postMeta := map[string]any{}
	if resp.FeedResult != nil && resp.FeedResult.Success {
		postMeta["feed_media_id"] = resp.FeedResult.MediaID
	}
	if resp.StoryResult != nil && resp.StoryResult.Success {
		postMeta["story_media_id"] = resp.StoryResult.MediaID
	}
	s.add(domain.CategoryPost, draft.Caption, postMeta)
}

func (s *Service) add(category domain.Category, text string, metadata map[string]any) {
	if _, err := s.Store.Add(category, text, metadata); err != nil {
		s.Logger.Error("history write failed", err, map[string]interface{}{
			"category": string(category),
		})
	}
}

func (s *Service) generate(ctx context.Context, provider ports.Provider, kind ports.GenerationKind, brief domain.Brief, caption string, debug bool) (string, bool, error) {
	key := cacheKey(kind, provider.Model().Name, brief, caption)
	if s.Cache != nil {
		if entry, ok, err := s.Cache.Get(key); err == nil && ok {
			s.Logger.Debug("cache hit", map[string]interface{}{"kind": string(kind)})
			return entry.Text, true, nil
		}
	}

	resp, err := provider.Generate(ctx, ports.ProviderRequest{
		Kind:    kind,
		Brief:   brief,
		Caption: caption,
		Model:   provider.Model(),
		Debug:   debug,
	})
	if err != nil {
		return "", false, err
	}

	if s.Cache != nil {
		_ = s.Cache.Set(domain.CacheEntry{
			Key:       key,
			Kind:      string(kind),
			Text:      resp.Text,
			Model:     provider.Model().Name,
			CreatedAt: time.Now().UTC(),
		})
	}
	return resp.Text, false, nil
}

func pickModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	name := override
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	if name == "" && len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	for _, model := range cfg.Models {
		if model.Name == name {
			return model, nil
		}
	}
	return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}

func promptTextFor(brief domain.Brief) string {
	return "Product: " + brief.Description
}

func duplicateReason(what string, decision domain.Decision) string {
	matched := ""
	if decision.Matched != nil {
		matched = decision.Matched.Text
	}
	return fmt.Sprintf("%s too similar to recent history (score %.2f, matched %q)", what, decision.MaxScore, matched)
}

func truncateCaption(caption string) string {
	if len(caption) <= domain.MaxCaptionLength {
		return caption
	}
	return caption[:domain.MaxCaptionLength-3] + "..."
}

// formatHashtags turns provider output (one tag per line, no # symbol)
// into at most MaxHashtags prefixed tags.
func formatHashtags(raw string) []string {
	var tags []string
	for _, line := range strings.Split(raw, "\n") {
		tag := strings.TrimSpace(line)
		tag = strings.TrimPrefix(tag, "#")
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+tag)
		if len(tags) >= domain.MaxHashtags {
			break
		}
	}
	return tags
}

func cacheKey(kind ports.GenerationKind, model string, brief domain.Brief, caption string) string {
	h := sha256.New()
	for _, part := range []string{string(kind), model, brief.Product, brief.Description, brief.TargetAudience, brief.Tone, brief.Style, caption} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
