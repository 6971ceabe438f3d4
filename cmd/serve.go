package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/gptrelay/internal/agent"
	"github.com/nextlevelbuilder/gptrelay/internal/channels/discord"
	"github.com/nextlevelbuilder/gptrelay/internal/commands"
	"github.com/nextlevelbuilder/gptrelay/internal/config"
	"github.com/nextlevelbuilder/gptrelay/internal/gateway"
	"github.com/nextlevelbuilder/gptrelay/internal/providers"
	"github.com/nextlevelbuilder/gptrelay/internal/routing"
	"github.com/nextlevelbuilder/gptrelay/internal/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and start the status server (default)",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func setupLogging() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

// newProvider builds the completion provider from config.
func newProvider(cfg *config.Config) providers.Provider {
	return providers.NewPollinationsProvider(cfg.Completion.Endpoint, cfg.Completion.Model, cfg.Completion.Timeout())
}

func runServe() {
	setupLogging()

	cfgPath := resolveConfigPath()

	// Docker / CI: first run with TOKEN in the environment writes config.json non-interactively.
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) && canAutoOnboard() {
		if !runAutoOnboard(cfgPath) {
			os.Exit(1)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, config.ErrMissingToken) {
			slog.Error("invalid config", "error", err)
			os.Exit(1)
		}
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			// Config file exists: the user onboarded but did not load the secrets.
			envPath := filepath.Join(filepath.Dir(cfgPath), ".env.local")
			fmt.Println("No Discord bot token found. Did you forget to load your secrets?")
			fmt.Println()
			fmt.Printf("  source %s && ./gptrelay\n", envPath)
			fmt.Println()
			fmt.Println("Or re-run the setup wizard:  ./gptrelay onboard")
			os.Exit(1)
		}
		fmt.Println("No configuration found. Starting setup wizard...")
		fmt.Println()
		runOnboard()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Telemetry, Version)
	if err != nil {
		slog.Warn("telemetry disabled", "error", err)
	}

	state := routing.New()
	provider := newProvider(cfg)
	loop := agent.NewLoop(agent.LoopConfig{
		Provider:     provider,
		Routing:      state,
		SystemPrompt: cfg.Completion.SystemPrompt,
		HistoryLimit: cfg.Discord.HistoryLimit,
		IgnorePrefix: cfg.Discord.IgnorePrefix,
	})
	cmdHandler := commands.NewHandler(state, nil, cfg.Discord.AllowFrom)

	bot, err := discord.New(cfg.Discord, loop, cmdHandler)
	if err != nil {
		slog.Error("failed to create discord channel", "error", err)
		os.Exit(1)
	}
	cmdHandler.SetGatewaySource(bot)

	server := gateway.NewServer(cfg.Status, bot)

	slog.Info("gptrelay starting",
		"version", Version,
		"provider", provider.Name(),
		"model", provider.Model(),
		"history_limit", cfg.Discord.HistoryLimit,
		"guild_id", cfg.Discord.GuildID,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		if err := bot.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		slog.Info("graceful shutdown initiated")
		return bot.Stop(context.Background())
	})

	runErr := g.Wait()

	if err := shutdownTracing(context.Background()); err != nil {
		slog.Warn("telemetry shutdown", "error", err)
	}

	if runErr != nil {
		slog.Error("gptrelay stopped", "error", runErr)
		os.Exit(1)
	}
	slog.Info("gptrelay stopped")
}
