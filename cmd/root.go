package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/logger"
)

const (
	app = "hr-matcher"
)

type Config struct {
	Thresholds *ThresholdsConfig `mapstructure:"thresholds"`
	Policy     *PolicyConfig     `mapstructure:"policy"`
	Sentiment  *SentimentConfig  `mapstructure:"sentiment"`
	Export     *ExportConfig     `mapstructure:"export"`
	History    *HistoryConfig    `mapstructure:"history"`
	Workers    int               `mapstructure:"workers"`
}

type ThresholdsConfig struct {
	Similarity float64 `mapstructure:"similarity"`
	SkillMatch float64 `mapstructure:"skill-match"`
}

type PolicyConfig struct {
	File            string   `mapstructure:"file"`
	Actions         []string `mapstructure:"actions"`
	PositiveActions []string `mapstructure:"positive-actions"`
	LearningRate    float64  `mapstructure:"learning-rate"`
	Epsilon         float64  `mapstructure:"epsilon"`
	Seed            uint64   `mapstructure:"seed"`
	SeedFile        string   `mapstructure:"seed-file"`
}

type SentimentConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ExportConfig struct {
	CSV  string `mapstructure:"csv"`
	JSON string `mapstructure:"json"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-matcher scores CVs against a job description and decides Hire, Reject or Reassign with a learning policy",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	envBindings := map[string]string{
		"policy.file":                   "HR_MATCHER_POLICY_FILE",
		"sentiment.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hr-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("thresholds.similarity", 0.5)
	viper.SetDefault("thresholds.skill-match", 0.2)
	viper.SetDefault("policy.file", "models/q_table.json")
	viper.SetDefault("policy.actions", []string{"Hire", "Reject", "Reassign"})
	viper.SetDefault("policy.positive-actions", []string{"Hire"})
	viper.SetDefault("policy.learning-rate", 0.1)
	viper.SetDefault("policy.epsilon", 0.15)
	viper.SetDefault("policy.seed", 0)
	viper.SetDefault("policy.seed-file", "")
	viper.SetDefault("sentiment.provider", "lexicon")
	viper.SetDefault("sentiment.gemini.model", "")
	viper.SetDefault("sentiment.gemini.max-retries", 3)
	viper.SetDefault("sentiment.gemini.max-log-length", 200)
	viper.SetDefault("export.csv", "")
	viper.SetDefault("export.json", "")
	viper.SetDefault("history.path", "")
	viper.SetDefault("workers", 4)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional; every key has a default.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// newLogger builds the logger from the global flags and exits on failure.
func newLogger() *zap.Logger {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

// mustConfig loads the configuration or terminates through the logger.
func mustConfig(logger *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil || config.Policy == nil || config.Thresholds == nil {
		logger.Fatal("config is required")
	}
	return config
}
