package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nextlevelbuilder/gptrelay/internal/config"
)

// canAutoOnboard returns true if TOKEN is set in the environment,
// indicating the user wants non-interactive configuration (e.g. Docker).
func canAutoOnboard() bool {
	return os.Getenv("TOKEN") != ""
}

// runAutoOnboard performs non-interactive setup from environment variables.
// Returns true on success, false on fatal error.
func runAutoOnboard(cfgPath string) bool {
	if !canAutoOnboard() {
		fmt.Println("Auto-onboard: TOKEN is not set in the environment")
		return false
	}

	fmt.Println("Auto-onboard: environment variables detected, running non-interactive setup...")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("Auto-onboard: %v\n", err)
		return false
	}

	fmt.Printf("  Endpoint: %s (model: %s)\n", cfg.Completion.Endpoint, cfg.Completion.Model)
	fmt.Printf("  Status:   %s:%d\n", cfg.Status.Host, cfg.Status.Port)

	fmt.Print("  Testing completion endpoint...")
	if verr := verifyCompletion(cfg); verr != nil {
		// The service may be briefly unavailable; setup still succeeds.
		fmt.Printf(" WARNING: %s\n", verr.message)
		slog.Warn("auto-onboard: completion probe failed", "status", verr.status, "error", verr.message)
	} else {
		fmt.Println(" OK")
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		fmt.Printf("Auto-onboard: save config: %v\n", err)
		return false
	}
	fmt.Printf("  Config:   %s\n", cfgPath)
	return true
}
