package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-advisor/internal/intent"
)

const (
	app = "job-advisor"
)

type Config struct {
	Catalog   *CatalogConfig    `mapstructure:"catalog"`
	Embedding *EmbeddingConfig  `mapstructure:"embedding"`
	Matching  *MatchingConfig   `mapstructure:"matching"`
	Intents   intent.ExampleSet `mapstructure:"intents"`
	Synonyms  map[string]string `mapstructure:"synonyms"`
}

type CatalogConfig struct {
	File   string `mapstructure:"file"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Query  string `mapstructure:"query"`
}

type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"`
	Dimensions int           `mapstructure:"dimensions"`
	Cache      *CacheConfig  `mapstructure:"cache"`
	Gemini     *GeminiConfig `mapstructure:"gemini"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int           `mapstructure:"max-entries"`
	TTL        time.Duration `mapstructure:"ttl"`
	RedisURL   string        `mapstructure:"redis-url"`
}

type GeminiConfig struct {
	APIKeyFile        string  `mapstructure:"api-key-file"`
	Model             string  `mapstructure:"model"`
	MaxRetries        int     `mapstructure:"max-retries"`
	BatchSize         int     `mapstructure:"batch-size"`
	Concurrency       int     `mapstructure:"concurrency"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	MaxLogLength      int     `mapstructure:"max-log-length"`
}

type MatchingConfig struct {
	IntentThreshold float64 `mapstructure:"intent-threshold"`
	AxisThreshold   float64 `mapstructure:"axis-threshold"`
	Show            int     `mapstructure:"show"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-advisor is a conversational assistant that matches you with jobs from a catalog",
	}
)

// Execute executes the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	if err := viper.BindEnv("embedding.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults(viper.GetViper())
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-advisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.file", "")
	v.SetDefault("catalog.driver", "")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.query", "")

	v.SetDefault("embedding.provider", providerLocal)
	v.SetDefault("embedding.dimensions", 512)
	v.SetDefault("embedding.cache.enabled", true)
	v.SetDefault("embedding.cache.max-entries", 10000)
	v.SetDefault("embedding.cache.ttl", 24*time.Hour)
	v.SetDefault("embedding.cache.redis-url", "")
	v.SetDefault("embedding.gemini.model", "text-embedding-004")
	v.SetDefault("embedding.gemini.max-retries", 3)
	v.SetDefault("embedding.gemini.batch-size", 100)
	v.SetDefault("embedding.gemini.concurrency", 4)
	v.SetDefault("embedding.gemini.requests-per-second", 5)
	v.SetDefault("embedding.gemini.max-log-length", 200)

	v.SetDefault("matching.intent-threshold", intent.DefaultThreshold)
	v.SetDefault("matching.axis-threshold", 0.7)
	v.SetDefault("matching.show", 0)
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix("JOB_ADVISOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so only an explicitly passed file has to exist.
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
