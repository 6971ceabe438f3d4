package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/titanous/json5"
)

// Built-in defaults used when neither the file nor the environment sets a value.
const (
	DefaultCompletionEndpoint = "https://text.pollinations.ai/"
	DefaultCompletionModel    = "openai"
	DefaultSystemPrompt       = "You are a friendly chatbot."
	DefaultHistoryLimit       = 15
	DefaultIgnorePrefix       = "!"
	DefaultStatusPort         = 5000
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			HistoryLimit: DefaultHistoryLimit,
			IgnorePrefix: DefaultIgnorePrefix,
		},
		Completion: CompletionConfig{
			Endpoint:     DefaultCompletionEndpoint,
			Model:        DefaultCompletionModel,
			SystemPrompt: DefaultSystemPrompt,
		},
		Status: StatusConfig{
			Host: "0.0.0.0",
			Port: DefaultStatusPort,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "http",
			ServiceName: "gptrelay",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus environment are enough to run.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values; unset vars leave fields untouched.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applyDefaults restores defaults for fields a config file zeroed out.
func (c *Config) applyDefaults() {
	if c.Discord.HistoryLimit <= 0 {
		c.Discord.HistoryLimit = DefaultHistoryLimit
	}
	// Discord caps a single history page at 100 messages.
	if c.Discord.HistoryLimit > 100 {
		c.Discord.HistoryLimit = 100
	}
	if c.Discord.IgnorePrefix == "" {
		c.Discord.IgnorePrefix = DefaultIgnorePrefix
	}
	if c.Completion.Endpoint == "" {
		c.Completion.Endpoint = DefaultCompletionEndpoint
	}
	if c.Completion.Model == "" {
		c.Completion.Model = DefaultCompletionModel
	}
	if c.Completion.SystemPrompt == "" {
		c.Completion.SystemPrompt = DefaultSystemPrompt
	}
	if c.Status.Port <= 0 {
		c.Status.Port = DefaultStatusPort
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "gptrelay"
	}
}

// Save writes the non-secret part of the config to a JSON file.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
