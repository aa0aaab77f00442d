package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, when present,
// a config.yaml in the working directory. Environment variables take
// precedence over values from the config file, which takes precedence
// over defaults. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults also register the keys so AutomaticEnv can see them.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.poll_interval", "500ms")

	v.SetDefault("generation.gemini_api_key", "")
	v.SetDefault("generation.model_name", "gemini-2.0-flash-preview-image-generation")
	v.SetDefault("generation.image_size", "1024x1024")
	v.SetDefault("generation.image_quality", "medium")
	v.SetDefault("generation.max_retries", 2)
	v.SetDefault("generation.retry_delay", "2s")

	v.SetDefault("tasks.worker_count", 3)
	v.SetDefault("tasks.queue_size", 256)
	v.SetDefault("tasks.task_timeout", "90s")
	v.SetDefault("tasks.result_probe_timeout", "100ms")
	v.SetDefault("tasks.max_prompts_per_batch", 150)

	v.SetDefault("output.dir", "./accepted")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults suffice.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PROOFSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
