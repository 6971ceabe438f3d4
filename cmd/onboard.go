package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/gptrelay/internal/config"
)

func onboardCmd() *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup: write config.json and .env.local",
		Run: func(cmd *cobra.Command, args []string) {
			if nonInteractive {
				if !runAutoOnboard(resolveConfigPath()) {
					os.Exit(1)
				}
				return
			}
			runOnboard()
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "configure from environment variables only (Docker/CI)")
	return cmd
}

// onboardAnswers collects the wizard's fields as strings for the form widgets.
type onboardAnswers struct {
	token        string
	guildID      string
	port         string
	systemPrompt string
	allowFrom    string
	telemetry    bool
	otlpEndpoint string
}

func runOnboard() {
	cfgPath := resolveConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}

	a := onboardAnswers{
		token:        os.Getenv("TOKEN"),
		guildID:      cfg.Discord.GuildID,
		port:         strconv.Itoa(cfg.Status.Port),
		systemPrompt: cfg.Completion.SystemPrompt,
		allowFrom:    strings.Join(cfg.Discord.AllowFrom, ","),
		telemetry:    cfg.Telemetry.Enabled,
		otlpEndpoint: cfg.Telemetry.Endpoint,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("gptrelay setup").
				Description("Create a bot at https://discord.com/developers/applications,\nenable the Message Content intent and paste its token below."),
			huh.NewInput().
				Title("Discord bot token").
				EchoMode(huh.EchoModePassword).
				Value(&a.token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("token is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Guild ID for slash commands").
				Description("Leave empty to register commands globally.").
				Value(&a.guildID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Status server port").
				Value(&a.port).
				Validate(validatePort),
			huh.NewText().
				Title("System prompt").
				Value(&a.systemPrompt),
			huh.NewInput().
				Title("Admin user IDs").
				Description("Comma separated. Leave empty to let everyone run the slash commands.").
				Value(&a.allowFrom),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export traces over OTLP?").
				Value(&a.telemetry),
			huh.NewInput().
				Title("OTLP endpoint").
				Description("host:port of the collector, used when tracing is enabled.").
				Value(&a.otlpEndpoint),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Setup cancelled.")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	applyOnboardAnswers(cfg, a)

	if err := config.Save(cfgPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	envPath := filepath.Join(filepath.Dir(cfgPath), ".env.local")
	if err := writeEnvFile(envPath, strings.TrimSpace(a.token), cfg.Status.Port); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving secrets: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Config saved to %s\n", cfgPath)
	fmt.Printf("Secrets saved to %s\n", envPath)
	fmt.Println()
	fmt.Println("Start the bot with:")
	fmt.Printf("  source %s && ./gptrelay\n", envPath)
	fmt.Println()
	fmt.Println("Then run /set-chatgpt in your server to pick the relay channel.")
}

func validatePort(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 || p > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}

func applyOnboardAnswers(cfg *config.Config, a onboardAnswers) {
	cfg.Discord.Token = strings.TrimSpace(a.token)
	cfg.Discord.GuildID = strings.TrimSpace(a.guildID)
	cfg.Discord.AllowFrom = splitList(a.allowFrom)
	if p, err := strconv.Atoi(strings.TrimSpace(a.port)); err == nil {
		cfg.Status.Port = p
	}
	cfg.Completion.SystemPrompt = nonEmpty(strings.TrimSpace(a.systemPrompt), config.DefaultSystemPrompt)
	cfg.Telemetry.Enabled = a.telemetry && strings.TrimSpace(a.otlpEndpoint) != ""
	cfg.Telemetry.Endpoint = strings.TrimSpace(a.otlpEndpoint)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// writeEnvFile writes the secrets file sourced before starting the bot.
func writeEnvFile(path, token string, port int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	content := fmt.Sprintf("export TOKEN=%s\nexport PORT=%d\n", shellQuote(token), port)
	return os.WriteFile(path, []byte(content), 0600)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// nonEmpty returns val if non-empty, otherwise fallback.
func nonEmpty(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
