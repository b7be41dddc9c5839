package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// chatCompletionProvider speaks the OpenAI-compatible chat-completion
// format, which also covers self-hosted gateways.
type chatCompletionProvider struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func newChatCompletionProvider(model domain.ModelDefinition, client *http.Client) ports.Provider {
	return &chatCompletionProvider{model: model, httpClient: client}
}

func (p *chatCompletionProvider) Name() string {
	return "chat-completion"
}

func (p *chatCompletionProvider) Model() domain.ModelDefinition {
	return p.model
}

// Generate implements ports.Provider.
func (p *chatCompletionProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	apiKey := getEnv(p.model.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return ports.ProviderResponse{}, fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", p.model.AuthEnvVar)
	}

	request := map[string]any{
		"model": p.model.ModelID,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a social media copywriter for product advertisements."},
			{"role": "user", "content": buildPrompt(req)},
		},
	}
	if p.model.MaxTokens > 0 {
		request["max_tokens"] = p.model.MaxTokens
	}
	body, err := json.Marshal(request)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ports.ProviderResponse{}, fmt.Errorf("chat-completion: %s", resp.Status)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return ports.ProviderResponse{}, err
	}

	text, err := parseChatCompletionResponse(responseBody.Bytes())
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	if text == "" {
		return ports.ProviderResponse{}, fmt.Errorf("chat-completion: empty %s response", req.Kind)
	}
	return ports.ProviderResponse{Text: text}, nil
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
