package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/hanzi/internal"
	"codeberg.org/snonux/hanzi/internal/store"
)

// Supported model providers
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// CreateRootCommand creates and configures the root cobra command with all
// subcommands
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hanzi",
		Short: "Chinese phrase translator and study notebook",
		Long: `hanzi translates Chinese phrases with a local LLM and keeps the
results in a searchable SQLite notebook.

Examples:
  hanzi query 你好 --save          # Translate and store a phrase
  hanzi search 好                  # Search saved phrases
  hanzi batch phrases.txt          # Import many phrases at once
  hanzi export -o deck.csv         # Export saved phrases for Anki`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newQueryCommand(flags),
		newSearchCommand(flags),
		newSaveCommand(flags),
		newBatchCommand(flags),
		newModelsCommand(flags),
		newUseModelCommand(flags),
		newExportCommand(flags),
		newBackupCommand(flags),
	)

	return rootCmd
}

// DefaultDataDir is where the database and log file live unless configured
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hanzi")
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	defaultDBPath := filepath.Join(DefaultDataDir(), "data.db")

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.hanzi.yaml)")
	pf.StringVar(&flags.DBPath, "db", defaultDBPath, "SQLite database file")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.Provider, "provider", flags.Provider, "Model provider: ollama or gemini")
	pf.StringVar(&flags.URL, "url", flags.URL, "Base URL of the OpenAI compatible Ollama API")
	pf.StringVarP(&flags.Model, "model", "m", "", "Model to query (default: stored preference, then first installed)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "How long a query may take")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("database.path", pf.Lookup("db"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("llm.provider", pf.Lookup("provider"))
	viper.BindPFlag("llm.url", pf.Lookup("url"))
	viper.BindPFlag("llm.model", pf.Lookup("model"))
	viper.BindPFlag("llm.timeout", pf.Lookup("timeout"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".hanzi" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hanzi")
	}

	viper.SetDefault("language.default_code", store.DefaultLanguage.Code)
	viper.SetDefault("language.default_name", store.DefaultLanguage.Name)

	// Environment variables, e.g. HANZI_LLM_MODEL for llm.model
	viper.SetEnvPrefix("HANZI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("llm.gemini_key")
}
