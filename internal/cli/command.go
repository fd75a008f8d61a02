package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wurdle/internal"
	"codeberg.org/snonux/wurdle/internal/sharecard"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wurdle [concept]",
		Short: "Forge words for absurd concepts",
		Long: `wurdle invents a word for a concept that has no name yet.

Describe a situation in at least three words and wurdle forges a word, its
pronunciation, a dictionary definition and a fake etymology, together with
a blueprint sketch of the concept. Results can be shared as a card image.

Examples:
  wurdle                                       # Launch interactive GUI (default)
  wurdle "a toaster that judges you"           # Forge one word via CLI
  wurdle --batch concepts.txt                  # Forge a word per line of a file
  wurdle --anki                                # Export forged words as an Anki deck
  wurdle --archive                             # Archive all forged cards`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// DefaultStateDir is where cards and the state database live
func DefaultStateDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "wurdle")
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	stateDir := DefaultStateDir()

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wurdle.yaml)")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", flags.EnvFile, "dotenv file with API keys (ignored if missing)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", filepath.Join(stateDir, "cards"), "Output directory")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Process concepts from file (one per line)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available Gemini and OpenAI models for the current API keys")
	cmd.Flags().BoolVar(&flags.NoCard, "no-card", false, "Skip composing the share card in CLI mode")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the output directory into a timestamped archive and exit")
	cmd.Flags().BoolVar(&flags.Anki, "anki", false, "Export all forged words as an Anki deck (.apkg)")

	// Generation flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Generation provider: gemini or openai (default: whichever key is set)")
	cmd.Flags().StringVar(&flags.WordModel, "word-model", flags.WordModel, "Model used to forge the word")
	cmd.Flags().StringVar(&flags.ImageModel, "image-model", flags.ImageModel, "Model used to draw the sketch")
	cmd.Flags().IntVar(&flags.DailyLimit, "daily-limit", flags.DailyLimit, "Generations allowed per day")

	// Persistence flags
	cmd.Flags().StringVar(&flags.StoreBackend, "store", flags.StoreBackend, "State store: sqlite, redis or memory")
	cmd.Flags().StringVar(&flags.StorePath, "store-path", filepath.Join(stateDir, "state.db"), "SQLite state database")
	cmd.Flags().StringVar(&flags.RedisURL, "redis-url", "", "Redis URL for the redis store")

	// Sharing flags
	cmd.Flags().StringVar(&flags.ShareCommand, "share-command", "", "Command used as the system share, e.g. 'xdg-open {url}'")
	cmd.Flags().StringVar(&flags.HostURL, "host-url", sharecard.DefaultHostURL, "Image host upload endpoint")

	// Logging flags
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flags.LogEnv, "log-env", flags.LogEnv, "Log format: development (console) or production (JSON)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("generation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("generation.word_model", cmd.Flags().Lookup("word-model"))
	viper.BindPFlag("generation.image_model", cmd.Flags().Lookup("image-model"))
	viper.BindPFlag("quota.daily_limit", cmd.Flags().Lookup("daily-limit"))
	viper.BindPFlag("store.backend", cmd.Flags().Lookup("store"))
	viper.BindPFlag("store.path", cmd.Flags().Lookup("store-path"))
	viper.BindPFlag("store.redis_url", cmd.Flags().Lookup("redis-url"))
	viper.BindPFlag("share.command", cmd.Flags().Lookup("share-command"))
	viper.BindPFlag("share.host_url", cmd.Flags().Lookup("host-url"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log.env", cmd.Flags().Lookup("log-env"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wurdle" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wurdle")
	}

	// Environment variables
	viper.SetEnvPrefix("WURDLE")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies config file and WURDLE_* values into flags the user did
// not set on the command line.
func ApplyConfig(cmd *cobra.Command, flags *Flags) {
	str := func(name, key string, dst *string) {
		if !cmd.Flags().Changed(name) && viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	str("provider", "generation.provider", &flags.Provider)
	str("word-model", "generation.word_model", &flags.WordModel)
	str("image-model", "generation.image_model", &flags.ImageModel)
	str("store", "store.backend", &flags.StoreBackend)
	str("store-path", "store.path", &flags.StorePath)
	str("redis-url", "store.redis_url", &flags.RedisURL)
	str("share-command", "share.command", &flags.ShareCommand)
	str("host-url", "share.host_url", &flags.HostURL)
	str("output", "output.directory", &flags.OutputDir)
	str("log-level", "log.level", &flags.LogLevel)
	str("log-env", "log.env", &flags.LogEnv)
	if !cmd.Flags().Changed("daily-limit") && viper.IsSet("quota.daily_limit") {
		flags.DailyLimit = viper.GetInt("quota.daily_limit")
	}
}

// Credentials are the API keys read from the environment
type Credentials struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	ImgBBAPIKey  string `envconfig:"IMGBB_API_KEY"`
}

// HasAI reports whether any generation provider can be used
func (c Credentials) HasAI() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != ""
}

// LoadCredentials loads envFile (if it exists) into the environment and
// reads the API keys from it. Keys missing from the environment fall back
// to the config file's credentials section.
func LoadCredentials(envFile string) (Credentials, error) {
	var c Credentials
	if envFile != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("failed to read credentials: %w", err)
	}

	fallback := func(dst *string, key string) {
		if *dst == "" {
			*dst = viper.GetString(key)
		}
	}
	fallback(&c.GeminiAPIKey, "credentials.gemini_api_key")
	fallback(&c.OpenAIAPIKey, "credentials.openai_api_key")
	fallback(&c.ImgBBAPIKey, "credentials.imgbb_api_key")
	return c, nil
}
