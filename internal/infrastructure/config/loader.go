package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/pkg/filesystem"
	"github.com/doeshing/adpost-go/internal/ports"
)

// FileLoader loads YAML configuration from ~/.adpost/config.yaml
// (overridable via ADPOST_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is seeded with
// defaults so a fresh install works out of the box.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Path reports the config file location without loading it.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save persists the configuration back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset overwrites the config file with defaults and returns them.
func (l *FileLoader) Reset() (domain.Config, error) {
	cfg := defaultConfig()
	if err := l.Save(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("ADPOST_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".adpost", "config.yaml")
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	home := filesystem.UserHomeDir()
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			DefaultModel:   "gemini-pro",
			TimeoutSeconds: 90,
		},
		Storage: domain.StorageSettings{
			Backend: "file",
			Root:    filepath.Join(home, ".adpost", "history"),
		},
		Dedup: domain.DedupSettings{
			Threshold:     domain.DefaultThreshold,
			Lookback:      domain.DefaultLookback,
			RetentionDays: domain.DefaultRetentionDays,
		},
		Posting: domain.PostingSettings{
			BaseURL:           "https://graph.facebook.com/v18.0",
			AccessTokenEnvVar: "INSTAGRAM_ACCESS_TOKEN",
			PostToFeed:        true,
			PostToStories:     true,
			ConfirmBeforePost: true,
		},
		Policy: domain.PolicySettings{
			Enabled:   true,
			RulesFile: filepath.Join(home, ".adpost", "policy.yaml"),
		},
		Schedule: domain.ScheduleSettings{
			PostSpec:  "0 0 * * *",
			PruneSpec: "30 0 * * *",
		},
		Models: []domain.ModelDefinition{
			{
				Name:       "gemini-pro",
				Endpoint:   "https://generativelanguage.googleapis.com/v1beta/models",
				AuthEnvVar: "GEMINI_API_KEY",
				ModelID:    "gemini-pro",
				MaxTokens:  domain.DefaultMaxTokens,
				APIFormat:  domain.APIFormatGemini,
			},
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = 90
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = filepath.Join(filesystem.UserHomeDir(), ".adpost", "history")
	}
	if cfg.Dedup.Threshold == 0 {
		cfg.Dedup.Threshold = domain.DefaultThreshold
	}
	if cfg.Dedup.Lookback == 0 {
		cfg.Dedup.Lookback = domain.DefaultLookback
	}
	if cfg.Dedup.RetentionDays == 0 {
		cfg.Dedup.RetentionDays = domain.DefaultRetentionDays
	}
	if cfg.Posting.BaseURL == "" {
		cfg.Posting.BaseURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.Posting.AccessTokenEnvVar == "" {
		cfg.Posting.AccessTokenEnvVar = "INSTAGRAM_ACCESS_TOKEN"
	}
	if cfg.Schedule.PostSpec == "" {
		cfg.Schedule.PostSpec = "0 0 * * *"
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
