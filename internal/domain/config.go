package domain

// Config mirrors ~/.adpost/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Storage             StorageSettings   `yaml:"storage"`
	Dedup               DedupSettings     `yaml:"dedup"`
	Posting             PostingSettings   `yaml:"posting"`
	Policy              PolicySettings    `yaml:"policy"`
	Schedule            ScheduleSettings  `yaml:"schedule"`
	Models              []ModelDefinition `yaml:"models"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// StorageSettings selects and locates the history backend.
type StorageSettings struct {
	// Backend is "file" (per-category JSON, default) or "sqlite".
	Backend string `yaml:"backend"`
	// Root is the directory holding history files or the sqlite database.
	Root string `yaml:"root"`
}

// DedupSettings tunes the duplicate guard.
type DedupSettings struct {
	Threshold     float64 `yaml:"threshold"`
	Lookback      int     `yaml:"lookback"`
	RetentionDays int     `yaml:"retention_days"`
}

// PostingSettings configures the publishing collaborator.
type PostingSettings struct {
	BaseURL           string `yaml:"base_url"`
	AccountID         string `yaml:"account_id"`
	MediaURLPrefix    string `yaml:"media_url_prefix"`
	AccessTokenEnvVar string `yaml:"access_token_env_var"`
	PostToFeed        bool   `yaml:"post_to_feed"`
	PostToStories     bool   `yaml:"post_to_stories"`
	ConfirmBeforePost bool   `yaml:"confirm_before_post"`
}

// PolicySettings defines content policy behavior.
type PolicySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// ScheduleSettings drives the cron scheduler.
type ScheduleSettings struct {
	// PostSpec is a cron expression for the daily posting run.
	PostSpec string `yaml:"post_spec"`
	// PruneSpec is a cron expression for history retention cleanup.
	PruneSpec string `yaml:"prune_spec"`
}
