package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nextlevelbuilder/gptrelay/internal/config"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"123", []string{"123"}},
		{" 1, 2 ,,3 ", []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidatePort(t *testing.T) {
	for _, ok := range []string{"1", "5000", " 8080 ", "65535"} {
		if err := validatePort(ok); err != nil {
			t.Errorf("validatePort(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "0", "65536", "abc", "-1"} {
		if err := validatePort(bad); err == nil {
			t.Errorf("validatePort(%q) should fail", bad)
		}
	}
}

func TestApplyOnboardAnswers(t *testing.T) {
	cfg := config.Default()
	applyOnboardAnswers(cfg, onboardAnswers{
		token:        " tok ",
		guildID:      "g1",
		port:         "8080",
		systemPrompt: "  ",
		allowFrom:    "a,b",
		telemetry:    true,
	})

	if cfg.Discord.Token != "tok" || cfg.Discord.GuildID != "g1" {
		t.Errorf("discord = %+v", cfg.Discord)
	}
	if cfg.Status.Port != 8080 {
		t.Errorf("port = %d", cfg.Status.Port)
	}
	if cfg.Completion.SystemPrompt != config.DefaultSystemPrompt {
		t.Errorf("blank system prompt should fall back, got %q", cfg.Completion.SystemPrompt)
	}
	if !reflect.DeepEqual(cfg.Discord.AllowFrom, []string{"a", "b"}) {
		t.Errorf("allow_from = %v", cfg.Discord.AllowFrom)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry without endpoint must stay disabled")
	}
}

func TestWriteEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ".env.local")
	if err := writeEnvFile(path, "it's-secret", 5000); err != nil {
		t.Fatalf("writeEnvFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "export TOKEN='it'\\''s-secret'\nexport PORT=5000\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
}
