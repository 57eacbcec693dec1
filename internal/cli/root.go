package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/contextcraft/internal/logging"
	"github.com/ppiankov/contextcraft/internal/model"
)

const version = "contextcraft v0.1.0"

var (
	cfgFile  string
	verbose  bool
	jsonLogs bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "contextcraft",
	Short: "ContextCraft - audience-aware rewriting that keeps the facts",
	Long: `ContextCraft rewrites Markdown and HTML documents for a target audience
(startup, enterprise, general) using an LLM.

Every rewritten chunk is checked against the factual anchors of the
original: percentages, years, money amounts, dates, numbers and proper
names. A rewrite that drops or invents an anchor is retried in strict
mode and, if it still fails, the original text is kept.

Tone changes. Facts do not.`,
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
	Long:  `Display the version number and build information for ContextCraft.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.contextcraft/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit structured logs as JSON")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, config file and ENV variables
func initConfig() {
	// A missing .env file is normal
	_ = godotenv.Load()

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
		viper.AddConfigPath(filepath.Join(home, ".contextcraft"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setupEnv(viper.GetViper())
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setupEnv maps CONTEXTCRAFT_SECTION_KEY variables onto section.key
func setupEnv(v *viper.Viper) {
	v.SetEnvPrefix("CONTEXTCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// registerDefaults declares every config key with its default value.
// viper only resolves environment variables for keys it knows about.
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := val.(map[string]any); ok {
				walk(key, child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)

	// Keys hidden from YAML output still need to resolve from the environment
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("http.http_proxy", cfg.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", cfg.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", cfg.HTTP.NoProxy)
	v.SetDefault("profiles.dir", cfg.Profiles.Dir)
	return nil
}

// loadConfig resolves the effective configuration from v over the defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command run
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	return logging.New(cfg.Output.Verbose || verbose, cfg.Output.JSONLogs || jsonLogs)
}
