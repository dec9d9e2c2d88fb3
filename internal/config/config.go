package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Config is the root configuration for VisionCrafter.
type Config struct {
	AI           AIConfig
	PromptsFile  string // JSON file holding the system instruction
	JobsDir      string // where assembled documents are written
	StorePath    string // SQLite transcript history
	Notification NotificationConfig
}

// AIConfig controls the chat-completion backend.
type AIConfig struct {
	BaseURL     string        // defaults to https://api.openai.com/v1
	Model       string        // OpenAI model identifier, e.g. "gpt-4"
	APIKey      string        // expanded from env var by Load, falls back to OPENAI_API_KEY
	Temperature float64       // defaults to 0.7
	Timeout     time.Duration // per-request timeout, covers the whole stream
	MinDelay    time.Duration // minimum gap between model calls; 0 disables

	// Optional price overrides in USD per 1K tokens. Zero means use the
	// built-in table for Model.
	PromptCostPer1K     float64
	CompletionCostPer1K float64
}

// NotificationConfig controls which notifier announces finished documents.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultModel         = "gpt-4"
	defaultTemperature   = 0.7
	defaultPromptsFile   = "prompts.json"
	defaultJobsDir       = "./jobs"
	defaultStorePath     = "visioncrafter.db"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	AI           rawAIConfig        `yaml:"ai"`
	PromptsFile  string             `yaml:"prompts_file"`
	JobsDir      string             `yaml:"jobs_dir"`
	StorePath    string             `yaml:"store_path"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawAIConfig struct {
	BaseURL             string   `yaml:"base_url"`
	Model               string   `yaml:"model"`
	APIKey              string   `yaml:"api_key"`
	Temperature         *float64 `yaml:"temperature"`
	Timeout             string   `yaml:"timeout"`
	MinDelay            string   `yaml:"min_delay"`
	PromptCostPer1K     float64  `yaml:"prompt_cost_per_1k"`
	CompletionCostPer1K float64  `yaml:"completion_cost_per_1k"`
}

// Load reads and parses the YAML config file at path, fills defaults from
// the environment, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return build(raw)
}

// FromEnv builds a Config from environment variables alone
// (OPENAI_API_KEY, PROMPTS_FILE, JOBS_DIR).
func FromEnv() (*Config, error) {
	return build(rawConfig{})
}

func build(raw rawConfig) (*Config, error) {
	var err error

	timeout := 2 * time.Minute // default
	if raw.AI.Timeout != "" {
		timeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	var minDelay time.Duration
	if raw.AI.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.AI.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse ai.min_delay %q: %w", raw.AI.MinDelay, err)
		}
	}

	temperature := defaultTemperature
	if raw.AI.Temperature != nil {
		temperature = *raw.AI.Temperature
	}

	cfg := &Config{
		AI: AIConfig{
			BaseURL:             firstNonEmpty(raw.AI.BaseURL, defaultOpenAIBaseURL),
			Model:               firstNonEmpty(raw.AI.Model, defaultModel),
			APIKey:              firstNonEmpty(raw.AI.APIKey, os.Getenv("OPENAI_API_KEY")),
			Temperature:         temperature,
			Timeout:             timeout,
			MinDelay:            minDelay,
			PromptCostPer1K:     raw.AI.PromptCostPer1K,
			CompletionCostPer1K: raw.AI.CompletionCostPer1K,
		},
		PromptsFile:  firstNonEmpty(raw.PromptsFile, os.Getenv("PROMPTS_FILE"), defaultPromptsFile),
		JobsDir:      firstNonEmpty(raw.JobsDir, os.Getenv("JOBS_DIR"), defaultJobsDir),
		StorePath:    firstNonEmpty(raw.StorePath, defaultStorePath),
		Notification: raw.Notification,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func validate(cfg *Config) error {
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.MinDelay < 0 {
		return fmt.Errorf("ai.min_delay must not be negative, got %v", cfg.AI.MinDelay)
	}
	if cfg.AI.PromptCostPer1K < 0 || cfg.AI.CompletionCostPer1K < 0 {
		return fmt.Errorf("ai token prices must not be negative")
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}

// RequireCredential fails when no API key is configured. The workflow must
// not issue model calls until this passes.
func (c *Config) RequireCredential() error {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return &model.ConfigurationError{Field: "ai.api_key", Err: model.ErrMissingCredential}
	}
	return nil
}
