// Package policy evaluates generated drafts against content rules before
// publishing: regex-based banned phrasing plus hard platform limits on
// caption length and hashtag count.
package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/adpost-go/assets"
	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/pkg/filesystem"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Policy implements the PolicyService port.
type Policy struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule BannedPattern
}

// BannedPattern describes a regex-based policy rule.
type BannedPattern struct {
	Pattern string `yaml:"pattern"`
	Action  string `yaml:"action"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		BannedPatterns []BannedPattern `yaml:"banned_patterns"`
	} `yaml:"rules"`
}

// NewPolicy loads policy rules from disk (or embedded defaults when missing).
func NewPolicy(path string) (*Policy, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	var compiled []compiledPattern
	for _, pattern := range rules.Rules.BannedPatterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, fmt.Errorf("policy rule %q: %w", pattern.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}

	return &Policy{patterns: compiled}, nil
}

// Evaluate implements ports.PolicyService.
func (p *Policy) Evaluate(draft domain.Draft) (domain.PolicyVerdict, error) {
	if p == nil {
		return domain.PolicyVerdict{}, errors.New("policy nil")
	}
	verdict := domain.PolicyVerdict{Action: domain.PolicyAllow}

	if len(draft.Caption) > domain.MaxCaptionLength {
		escalate(&verdict, domain.PolicyBlock)
		verdict.Reasons = append(verdict.Reasons,
			fmt.Sprintf("caption is %d characters, platform limit is %d", len(draft.Caption), domain.MaxCaptionLength))
	}
	if len(draft.Hashtags) > domain.MaxHashtags {
		escalate(&verdict, domain.PolicyWarn)
		verdict.Reasons = append(verdict.Reasons,
			fmt.Sprintf("%d hashtags exceed the platform limit of %d", len(draft.Hashtags), domain.MaxHashtags))
	}

	for _, pattern := range p.patterns {
		if pattern.re.MatchString(draft.Caption) {
			escalate(&verdict, parseAction(pattern.rule.Action))
			verdict.Reasons = append(verdict.Reasons, pattern.rule.Message)
			verdict.MatchedRules = append(verdict.MatchedRules, pattern.rule.Pattern)
		}
	}
	return verdict, nil
}

func escalate(verdict *domain.PolicyVerdict, action domain.PolicyAction) {
	if severity(action) > severity(verdict.Action) {
		verdict.Action = action
	}
}

func severity(action domain.PolicyAction) int {
	switch action {
	case domain.PolicyBlock:
		return 2
	case domain.PolicyWarn:
		return 1
	default:
		return 0
	}
}

func parseAction(value string) domain.PolicyAction {
	switch strings.ToLower(value) {
	case "block":
		return domain.PolicyBlock
	case "warn":
		return domain.PolicyWarn
	default:
		return domain.PolicyWarn
	}
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	path = expandRulesPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		// fall back to embedded defaults
		data = assets.DefaultPolicyYAML
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	return rules, nil
}

func expandRulesPath(path string) string {
	if path == "" {
		return filepath.Join(filesystem.UserHomeDir(), ".adpost", "policy.yaml")
	}
	return filesystem.ExpandPath(path)
}

var _ ports.PolicyService = (*Policy)(nil)
