package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Tasks      TasksConfig      `mapstructure:"tasks" validate:"required"`
	Output     OutputConfig     `mapstructure:"output" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// PollInterval is the cadence of the background reconciliation pass
	// that folds completed tasks back into the review queue.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,min=10ms"`
}

// GenerationConfig contains all image generation backend settings.
type GenerationConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
	ImageSize    string `mapstructure:"image_size" validate:"required"`
	ImageQuality string `mapstructure:"image_quality" validate:"required,oneof=low medium high"`

	// MaxRetries bounds retry attempts for transient backend failures.
	MaxRetries int `mapstructure:"max_retries" validate:"min=0,max=10"`

	// RetryDelay is the base delay between attempts; it doubles per retry.
	RetryDelay time.Duration `mapstructure:"retry_delay" validate:"min=0"`
}

// TasksConfig contains the dispatcher and lifecycle tuning settings.
type TasksConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0,lte=64"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`

	// TaskTimeout bounds active processing time per task.
	TaskTimeout time.Duration `mapstructure:"task_timeout" validate:"required,min=1s"`

	// ResultProbeTimeout bounds the per-handle result retrieval probe so
	// a reconciliation pass never stalls.
	ResultProbeTimeout time.Duration `mapstructure:"result_probe_timeout" validate:"required,min=1ms"`

	// MaxPromptsPerBatch caps one generation submission.
	MaxPromptsPerBatch int `mapstructure:"max_prompts_per_batch" validate:"required,gt=0"`
}

// OutputConfig contains settings for persisting accepted images.
type OutputConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}
