// Package ai provides the content-generation provider factory and its
// HTTP-based implementations.
//
// Two wire formats are supported: Google's generateContent API ("gemini")
// and the widespread chat-completion format ("openai"). A third, offline
// heuristic provider keeps the agent usable without credentials. Which
// adapter serves a model is controlled by the model's api_format field in
// the config file.
package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Factory creates provider instances based on model definitions.
// It maintains a single HTTP client shared across all providers.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a new provider factory with a configured HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// ForModel selects the adapter for a model definition. Models without an
// endpoint fall back to the offline heuristic provider.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	format := model.APIFormat
	if format == "" {
		format = detectFormat(model.Endpoint)
	}
	switch format {
	case domain.APIFormatGemini:
		return newGeminiProvider(model, f.httpClient), nil
	case domain.APIFormatOpenAI:
		return newChatCompletionProvider(model, f.httpClient), nil
	case domain.APIFormatHeuristic:
		return newHeuristicProvider(model), nil
	default:
		return nil, fmt.Errorf("unknown api format %q for model %s", format, model.Name)
	}
}

func detectFormat(endpoint string) string {
	switch {
	case endpoint == "":
		return domain.APIFormatHeuristic
	case strings.Contains(endpoint, "generativelanguage"):
		return domain.APIFormatGemini
	default:
		return domain.APIFormatOpenAI
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
