package config

import (
	"fmt"
	"time"

	"github.com/aegisai/aegis/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // in seconds
}

func (c *RedisConfig) TTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

type KafkaConfig struct {
	// Brokers empty disables alert fan-out; alerts are still persisted.
	Brokers    []string `mapstructure:"brokers"`
	AlertTopic string   `mapstructure:"alert_topic"`
}

// PipelineConfig holds the tunable thresholds of the scoring pipeline. All
// other thresholds (risk breakpoints, window lengths, alert severities) are
// fixed constants of the algorithms.
type PipelineConfig struct {
	// DriftLatencyThresholdMS sets the drift alert trigger at one tenth of
	// its value.
	DriftLatencyThresholdMS float64 `mapstructure:"drift_latency_threshold_ms"`

	HealthScoreMin float64 `mapstructure:"health_score_min"`
	HealthScoreMax float64 `mapstructure:"health_score_max"`

	// AlertCooldownSeconds bounds how often an identical alert may repeat.
	AlertCooldownSeconds int `mapstructure:"alert_cooldown_seconds"`
}

func (c *PipelineConfig) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownSeconds) * time.Second
}

// TasksConfig bounds the background task dispatcher.
type TasksConfig struct {
	// QueueSize caps each tenant's pending task queue; enqueue on a full
	// queue dead-letters the task instead of blocking ingestion.
	QueueSize int `mapstructure:"queue_size"`

	MaxRetries int `mapstructure:"max_retries"`

	// RetryBackoffMS is the initial retry delay; it doubles per attempt.
	RetryBackoffMS int `mapstructure:"retry_backoff_ms"`

	// ShutdownGraceSeconds bounds the drain on shutdown.
	ShutdownGraceSeconds int `mapstructure:"shutdown_grace_seconds"`
}

func (c *TasksConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

func (c *TasksConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidConfig.WithMetadata("field", "server.port")
	}
	if c.Pipeline.DriftLatencyThresholdMS <= 0 {
		return errors.ErrInvalidConfig.WithMetadata("field", "pipeline.drift_latency_threshold_ms")
	}
	if c.Pipeline.HealthScoreMin >= c.Pipeline.HealthScoreMax {
		return errors.ErrInvalidConfig.WithMetadata("field", "pipeline.health_score_min")
	}
	if c.Tasks.QueueSize <= 0 {
		return errors.ErrInvalidConfig.WithMetadata("field", "tasks.queue_size")
	}
	if c.Tasks.MaxRetries < 0 {
		return errors.ErrInvalidConfig.WithMetadata("field", "tasks.max_retries")
	}
	return nil
}
