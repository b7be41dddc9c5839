package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// heuristicProvider is the offline fallback used when no credentials are
// configured. Its output is templated from the brief, so it stays varied
// enough for the duplicate guard to exercise.
type heuristicProvider struct {
	model domain.ModelDefinition
}

func newHeuristicProvider(model domain.ModelDefinition) ports.Provider {
	return &heuristicProvider{model: model}
}

func (p *heuristicProvider) Name() string {
	return "heuristic"
}

func (p *heuristicProvider) Model() domain.ModelDefinition {
	return p.model
}

// Generate implements ports.Provider.
func (p *heuristicProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	brief := req.Brief
	switch req.Kind {
	case ports.GenerateCaption:
		return ports.ProviderResponse{Text: fmt.Sprintf(
			"Discover %s. Made for %s. Tap the link to learn more!",
			nonEmpty(brief.Description, "our latest product"),
			nonEmpty(brief.TargetAudience, "you"),
		)}, nil
	case ports.GenerateHashtags:
		var lines []string
		for _, word := range keywords(brief.Product + " " + brief.Description) {
			lines = append(lines, word)
			if len(lines) >= 8 {
				break
			}
		}
		lines = append(lines, "ad", "newarrival")
		return ports.ProviderResponse{Text: strings.Join(lines, "\n")}, nil
	case ports.GenerateImagePrompt:
		return ports.ProviderResponse{Text: fmt.Sprintf(
			"Square product photo of %s, %s style, studio lighting, social media ready",
			nonEmpty(brief.Description, "the product"),
			nonEmpty(brief.Style, "modern"),
		)}, nil
	}
	return ports.ProviderResponse{}, fmt.Errorf("heuristic: unsupported kind %q", req.Kind)
}

// keywords extracts alphabetic words of four letters or more.
func keywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	var out []string
	seen := map[string]bool{}
	for _, w := range strings.Fields(cleaned) {
		if len(w) >= 4 && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
