package config

// DiscordConfig configures the Discord gateway connection and relay behaviour.
type DiscordConfig struct {
	Token        string   `json:"-" env:"TOKEN"`                                         // from env only, never persisted
	GuildID      string   `json:"guild_id,omitempty" env:"GPTRELAY_DISCORD_GUILD_ID"`     // register slash commands to one guild instead of globally
	AllowFrom    []string `json:"allow_from,omitempty" env:"GPTRELAY_DISCORD_ALLOW_FROM"` // user IDs allowed to run admin commands (empty = everyone)
	HistoryLimit int      `json:"history_limit,omitempty" env:"GPTRELAY_HISTORY_LIMIT"`  // messages fetched per relay (default 15)
	IgnorePrefix string   `json:"ignore_prefix,omitempty" env:"GPTRELAY_IGNORE_PREFIX"`  // messages starting with this are never relayed (default "!")
}
