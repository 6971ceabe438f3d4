package config

import (
	"errors"
	"time"
)

// ErrMissingToken is returned by Validate when no Discord bot token is configured.
var ErrMissingToken = errors.New("discord token is required (set TOKEN)")

// Config is the root configuration for the relay bot.
type Config struct {
	Discord    DiscordConfig    `json:"discord"`
	Completion CompletionConfig `json:"completion"`
	Status     StatusConfig     `json:"status"`
	Telemetry  TelemetryConfig  `json:"telemetry,omitempty"`
}

// CompletionConfig points the relay at the remote text-completion service.
type CompletionConfig struct {
	Endpoint     string `json:"endpoint" env:"GPTRELAY_COMPLETION_ENDPOINT"`
	Model        string `json:"model" env:"GPTRELAY_COMPLETION_MODEL"`
	SystemPrompt string `json:"system_prompt" env:"GPTRELAY_SYSTEM_PROMPT"`
	TimeoutSec   int    `json:"timeout_sec,omitempty" env:"GPTRELAY_COMPLETION_TIMEOUT_SEC"` // 0 = transport default (no client timeout)
}

// Timeout returns the HTTP client timeout, zero when unset.
func (c CompletionConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// StatusConfig configures the HTTP status server.
type StatusConfig struct {
	Host string `json:"host" env:"GPTRELAY_STATUS_HOST"`
	Port int    `json:"port" env:"PORT"`

	// RateLimitRPM throttles status requests per client IP.
	// > 0 enables at that RPM, 0 or negative disables (default).
	RateLimitRPM int `json:"rate_limit_rpm,omitempty" env:"GPTRELAY_STATUS_RATE_LIMIT_RPM"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty" env:"GPTRELAY_TELEMETRY_ENABLED"`
	Endpoint    string            `json:"endpoint,omitempty" env:"GPTRELAY_TELEMETRY_ENDPOINT"`         // OTLP endpoint (e.g. "localhost:4317", "otel.example.com:4318")
	Protocol    string            `json:"protocol,omitempty" env:"GPTRELAY_TELEMETRY_PROTOCOL"`         // "grpc" or "http" (default)
	Insecure    bool              `json:"insecure,omitempty" env:"GPTRELAY_TELEMETRY_INSECURE"`         // skip TLS for local collectors
	ServiceName string            `json:"service_name,omitempty" env:"GPTRELAY_TELEMETRY_SERVICE_NAME"` // OTEL service name (default "gptrelay")
	Headers     map[string]string `json:"headers,omitempty"`                                            // extra exporter headers (auth tokens etc.)
}

// Validate reports configuration that makes the bot unable to start.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}
	return nil
}

const secretMask = "***"

// MaskedToken returns the Discord token masked for display, or "" when unset.
func (c *Config) MaskedToken() string {
	if c.Discord.Token == "" {
		return ""
	}
	return secretMask
}
