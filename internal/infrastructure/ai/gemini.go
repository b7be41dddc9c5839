package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// geminiProvider speaks Google's generateContent API.
type geminiProvider struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func newGeminiProvider(model domain.ModelDefinition, client *http.Client) ports.Provider {
	return &geminiProvider{model: model, httpClient: client}
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Model() domain.ModelDefinition {
	return p.model
}

// Generate implements ports.Provider.
func (p *geminiProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	apiKey := getEnv(p.model.AuthEnvVar, "GEMINI_API_KEY")
	if apiKey == "" {
		return ports.ProviderResponse{}, fmt.Errorf("missing API key: set %s or GEMINI_API_KEY", p.model.AuthEnvVar)
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": buildPrompt(req)}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": defaultInt(p.model.MaxTokens, domain.DefaultMaxTokens),
		},
	})
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimSuffix(p.model.Endpoint, "/"), p.model.ModelID, apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ports.ProviderResponse{}, fmt.Errorf("gemini: %s", resp.Status)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return ports.ProviderResponse{}, err
	}

	text, err := parseGeminiResponse(responseBody.Bytes())
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	if text == "" {
		return ports.ProviderResponse{}, fmt.Errorf("gemini: empty %s response", req.Kind)
	}
	return ports.ProviderResponse{Text: text}, nil
}

func parseGeminiResponse(body []byte) (string, error) {
	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}

func getEnv(primary, fallback string) string {
	if primary != "" {
		if v := os.Getenv(primary); v != "" {
			return v
		}
	}
	return os.Getenv(fallback)
}

func defaultInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
