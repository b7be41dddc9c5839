package domain

// ModelDefinition describes an AI provider configuration declared in the
// config file. Each model represents a specific generative service endpoint
// with its authentication and generation parameters.
type ModelDefinition struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	AuthEnvVar string `yaml:"auth_env_var"`
	ModelID    string `yaml:"model_id"`
	MaxTokens  int    `yaml:"max_tokens"`
	// APIFormat selects the request/response adapter: "gemini",
	// "openai" (chat-completion compatible) or "heuristic" (offline).
	APIFormat string `yaml:"api_format,omitempty"`
}

// API format identifiers understood by the provider factory.
const (
	APIFormatGemini    = "gemini"
	APIFormatOpenAI    = "openai"
	APIFormatHeuristic = "heuristic"
)

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}
