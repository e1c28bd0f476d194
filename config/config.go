package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger   `mapstructure:"logger"`
	API      API      `mapstructure:"api"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Image    Image    `mapstructure:"image"`
	Analysis Analysis `mapstructure:"analysis"`
	Cache    Cache    `mapstructure:"cache"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	MaxOutputTokens     int           `mapstructure:"max_output_tokens"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
}

type Image struct {
	MaxFileSize          int64 `mapstructure:"max_file_size"`
	MinDimension         int   `mapstructure:"min_dimension"`
	MaxDimension         int   `mapstructure:"max_dimension"`
	OptimizeMaxDimension int   `mapstructure:"optimize_max_dimension"`
	JPEGQuality          int   `mapstructure:"jpeg_quality"`
	MaxImages            int   `mapstructure:"max_images"`
}

type Analysis struct {
	TotalTimeout      time.Duration `mapstructure:"total_timeout"`
	GroundingMinChars int           `mapstructure:"grounding_min_chars"`
	MarkdownMinChars  int           `mapstructure:"markdown_min_chars"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

func Load() (*Config, error) {
	// Optional .env for local development, real environment variables win.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional, defaults + env are enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.timeout", 120*time.Second)
	viper.SetDefault("gemini.max_retries", 3)
	viper.SetDefault("gemini.max_output_tokens", 8192)
	viper.SetDefault("gemini.max_request_per_minute", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)

	viper.SetDefault("image.max_file_size", 10*1024*1024)
	viper.SetDefault("image.min_dimension", 100)
	viper.SetDefault("image.max_dimension", 10000)
	viper.SetDefault("image.optimize_max_dimension", 2048)
	viper.SetDefault("image.jpeg_quality", 85)
	viper.SetDefault("image.max_images", 5)

	viper.SetDefault("analysis.total_timeout", 300*time.Second)
	viper.SetDefault("analysis.grounding_min_chars", 500)
	viper.SetDefault("analysis.markdown_min_chars", 100)

	viper.SetDefault("cache.default_expiration", 0)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
}
