package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clinicore/intake/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Intake - conversational medical-intake memory engine",
	Long: `Intake turns free-text patient utterances into structured, durable
records across three memory stores (episodic, semantic, behavioral).

Each turn is scanned by a deterministic pattern extractor and, when
configured, a language-model extractor. Candidates are merged, scored
for priority and confidence, routed to the right store, and reconciled
against the patient's existing records. Contradictions are flagged for
human review, never silently resolved.

Intake is a structuring layer, not a medical-reasoning system.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Intake.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("intake v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.intake/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.intake")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match INTAKE_*
	viper.SetEnvPrefix("INTAKE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration: defaults, then the
// config file / environment, then command flags already bound to viper.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("stores.episodic_path"); v != "" {
		cfg.Stores.EpisodicPath = v
	}
	if v := viper.GetString("stores.semantic_path"); v != "" {
		cfg.Stores.SemanticPath = v
	}
	if v := viper.GetString("stores.behavioral_path"); v != "" {
		cfg.Stores.BehavioralPath = v
	}
	if v := viper.GetString("stores.default"); v != "" {
		cfg.Stores.Default = model.StoreName(v)
	}

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}
	if v := viper.GetFloat64("llm.rate_per_second"); v > 0 {
		cfg.LLM.RatePerSecond = v
	}
	if v := viper.GetInt("llm.burst"); v > 0 {
		cfg.LLM.Burst = v
	}

	if viper.IsSet("engine.min_confidence") {
		cfg.Engine.MinConfidence = viper.GetFloat64("engine.min_confidence")
	}
	if viper.IsSet("engine.consistency_bonus") {
		cfg.Engine.ConsistencyBonus = viper.GetFloat64("engine.consistency_bonus")
	}
	if v := viper.GetFloat64("engine.similarity_threshold"); v > 0 {
		cfg.Engine.SimilarityThreshold = v
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if v := viper.GetInt("concurrency.batch_workers"); v > 0 {
		cfg.Concurrency.BatchWorkers = v
	}

	cfg.Output.Verbose = viper.GetBool("output.verbose") || verbose
	if v := viper.GetString("output.format"); v != "" {
		cfg.Output.Format = v
	}

	// API keys fall back to the conventional environment variables
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	return cfg
}

// turnTimeout bounds a single turn end to end; the model extractor
// enforces its own, shorter timeout internally.
const turnTimeout = 2 * time.Minute
