package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/gptrelay/internal/config"
	"github.com/nextlevelbuilder/gptrelay/internal/stats"
)

func doctorCmd() *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor(probe)
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "send a test prompt to the completion endpoint")
	return cmd
}

func runDoctor(probe bool) {
	fmt.Println("gptrelay doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())

	host := stats.ReadHost()
	if host.TotalMem > 0 {
		fmt.Printf("  Memory:   %s total, %s free\n", stats.FormatBytes(host.TotalMem), stats.FormatBytes(host.FreeMem))
	}
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using defaults)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Discord:")
	if token := cfg.MaskedToken(); token != "" {
		fmt.Printf("    %-14s %s\n", "Token:", token)
	} else {
		fmt.Printf("    %-14s (not configured, set TOKEN)\n", "Token:")
	}
	scope := "global"
	if cfg.Discord.GuildID != "" {
		scope = "guild " + cfg.Discord.GuildID
	}
	fmt.Printf("    %-14s %s\n", "Commands:", scope)
	fmt.Printf("    %-14s %d messages\n", "History:", cfg.Discord.HistoryLimit)
	fmt.Printf("    %-14s %q\n", "Ignore prefix:", cfg.Discord.IgnorePrefix)
	if len(cfg.Discord.AllowFrom) > 0 {
		fmt.Printf("    %-14s %s\n", "Admins:", strings.Join(cfg.Discord.AllowFrom, ", "))
	} else {
		fmt.Printf("    %-14s everyone\n", "Admins:")
	}

	fmt.Println()
	fmt.Println("  Completion:")
	fmt.Printf("    %-14s %s\n", "Endpoint:", cfg.Completion.Endpoint)
	fmt.Printf("    %-14s %s\n", "Model:", cfg.Completion.Model)
	if t := cfg.Completion.Timeout(); t > 0 {
		fmt.Printf("    %-14s %s\n", "Timeout:", t)
	} else {
		fmt.Printf("    %-14s none\n", "Timeout:")
	}
	if probe {
		if verr := verifyCompletion(cfg); verr != nil {
			fmt.Printf("    %-14s FAILED (%s)\n", "Probe:", verr.message)
		} else {
			fmt.Printf("    %-14s OK\n", "Probe:")
		}
	}

	fmt.Println()
	fmt.Println("  Status server:")
	fmt.Printf("    %-14s %s:%d\n", "Listen:", cfg.Status.Host, cfg.Status.Port)
	if cfg.Status.RateLimitRPM > 0 {
		fmt.Printf("    %-14s %d rpm per IP\n", "Rate limit:", cfg.Status.RateLimitRPM)
	}

	fmt.Println()
	fmt.Println("  Telemetry:")
	if cfg.Telemetry.Enabled {
		fmt.Printf("    %-14s %s (%s)\n", "Export:", cfg.Telemetry.Endpoint, cfg.Telemetry.Protocol)
	} else {
		fmt.Printf("    %-14s disabled\n", "Export:")
	}

	fmt.Println()
	fmt.Println("Doctor check complete.")
}
