package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-evaluator/internal/evaluation"
	"github.com/spigell/resume-evaluator/internal/roles"
)

const (
	app = "resume-evaluator"
)

type Config struct {
	UploadsDir  string            `mapstructure:"uploads-dir" json:"uploads-dir" validate:"required"`
	CatalogFile string            `mapstructure:"catalog-file" json:"catalog-file"`
	Evaluation  *EvaluationConfig `mapstructure:"evaluation" json:"evaluation" validate:"required"`
	Role        *RoleConfig       `mapstructure:"role" json:"role" validate:"required"`
	AI          *AIConfig         `mapstructure:"ai" json:"ai"`
}

type EvaluationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" validate:"gte=0"`
	// Disable lists stage names that should not run.
	Disable []string `mapstructure:"disable" json:"disable"`
}

type RoleConfig struct {
	Provider          string  `mapstructure:"provider" json:"provider" validate:"oneof=keyword gemini"`
	MinimumConfidence float64 `mapstructure:"minimum-confidence" json:"minimum-confidence" validate:"gte=0,lte=1"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini" json:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file" json:"api-key-file"`
	Model        string `mapstructure:"model" json:"model"`
	MaxRetries   int    `mapstructure:"max-retries" json:"max-retries" validate:"gte=0"`
	MaxLogLength int    `mapstructure:"max-log-length" json:"max-log-length" validate:"gte=0"`
}

// Validate checks the struct tags of the whole configuration tree.
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-evaluator extracts personal details from a résumé, infers the role and scores skill fit",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	for key, env := range map[string]string{
		"uploads-dir":            "RESUME_EVALUATOR_UPLOADS_DIR",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"role.provider":          "RESUME_EVALUATOR_ROLE_PROVIDER",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-evaluator.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog-file", "", "a yaml file with roles and reference skills (default is the built-in catalog)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog-file", rootCmd.PersistentFlags().Lookup("catalog-file"))
}

func setDefaults() {
	viper.SetDefault("uploads-dir", "uploads")
	viper.SetDefault("evaluation.timeout", evaluation.DefaultTimeout)
	viper.SetDefault("evaluation.disable", []string{})
	viper.SetDefault("role.provider", "keyword")
	viper.SetDefault("role.minimum-confidence", roles.DefaultMinimumConfidence)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// variables from .env are only a convenience for local runs
	_ = godotenv.Load()

	// version needs no configuration
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config file is fine, built-in defaults apply.
	// An explicit or broken one is not.
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

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}
