package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wurdle/internal/sharecard"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "wurdle [concept]" {
		t.Errorf("Expected Use to be 'wurdle [concept]', got %s", cmd.Use)
	}
	if !strings.Contains(cmd.Short, "absurd concepts") {
		t.Errorf("Unexpected Short description: %s", cmd.Short)
	}

	for _, name := range []string{
		"config", "env-file", "output", "batch", "list-models", "no-card", "archive", "anki",
		"provider", "word-model", "image-model", "daily-limit",
		"store", "store-path", "redis-url", "share-command", "host-url",
		"log-level", "log-env",
	} {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" || name == "env-file" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	if err := cmd.Args(cmd, []string{"one", "two"}); err == nil {
		t.Error("Expected at most one positional argument")
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	home, _ := os.UserHomeDir()
	tests := map[string]string{
		"output":     filepath.Join(home, ".local", "state", "wurdle", "cards"),
		"store-path": filepath.Join(home, ".local", "state", "wurdle", "state.db"),
		"host-url":   sharecard.DefaultHostURL,
		"store":      "sqlite",
	}
	for name, want := range tests {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("%s default = %s, want %s", name, flag.DefValue, want)
		}
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `generation:
  provider: openai
quota:
  daily_limit: 7
output:
  directory: /test/output`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			cfgPath := tt.setupFunc(t)

			InitConfig(cfgPath)

			t.Setenv("WURDLE_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
			if cfgPath != "" && viper.GetInt("quota.daily_limit") != 7 {
				t.Errorf("quota.daily_limit = %d, want 7", viper.GetInt("quota.daily_limit"))
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	cmd.Flags().Set("output", "/test/output")
	cmd.Flags().Set("provider", "openai")
	cmd.Flags().Set("store", "redis")

	tests := map[string]string{
		"output.directory":    "/test/output",
		"generation.provider": "openai",
		"store.backend":       "redis",
	}
	for key, want := range tests {
		if got := viper.GetString(key); got != want {
			t.Errorf("%s = %s, want %s", key, got, want)
		}
	}
}

func TestApplyConfig(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := &cobra.Command{}
	setupFlags(cmd, flags)

	viper.Set("generation.provider", "openai")
	viper.Set("quota.daily_limit", 9)
	viper.Set("share.command", "xdg-open {url}")
	cmd.Flags().Set("store", "memory")
	viper.Set("store.backend", "redis")

	ApplyConfig(cmd, flags)

	if flags.Provider != "openai" {
		t.Errorf("Provider = %s, want openai", flags.Provider)
	}
	if flags.DailyLimit != 9 {
		t.Errorf("DailyLimit = %d, want 9", flags.DailyLimit)
	}
	if flags.ShareCommand != "xdg-open {url}" {
		t.Errorf("ShareCommand = %s", flags.ShareCommand)
	}
	if flags.StoreBackend != "memory" {
		t.Errorf("explicit flag should win, StoreBackend = %s", flags.StoreBackend)
	}
}

func TestLoadCredentials(t *testing.T) {
	resetViper(t)

	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("IMGBB_API_KEY", "")
	os.Unsetenv("IMGBB_API_KEY")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "GEMINI_API_KEY=from-file\nOPENAI_API_KEY=ignored\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	viper.Set("credentials.imgbb_api_key", "from-config")

	creds, err := LoadCredentials(envFile)
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if creds.GeminiAPIKey != "from-file" {
		t.Errorf("GeminiAPIKey = %q, want from-file", creds.GeminiAPIKey)
	}
	if creds.OpenAIAPIKey != "from-env" {
		t.Errorf("environment should win over .env, got %q", creds.OpenAIAPIKey)
	}
	if creds.ImgBBAPIKey != "from-config" {
		t.Errorf("ImgBBAPIKey = %q, want from-config", creds.ImgBBAPIKey)
	}
	if !creds.HasAI() {
		t.Error("HasAI() = false")
	}
}

func TestLoadCredentialsMissingEnvFile(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	creds, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
	if creds.HasAI() {
		t.Error("HasAI() = true without keys")
	}
}
