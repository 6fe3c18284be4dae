package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/aegisai/aegis/pkg/errors"
)

// LoadConfig loads the configuration from file and environment variables.
// Environment variables use the AEGIS_ prefix with underscores for nesting,
// e.g. AEGIS_DATABASE_HOST.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/aegis/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfig.WithCause(err)
		}
	}

	v.SetEnvPrefix("AEGIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfig.WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "aegis")
	v.SetDefault("database.database", "aegis")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.cache_ttl", 300)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.alert_topic", "aegis.alerts")

	v.SetDefault("pipeline.drift_latency_threshold_ms", 2000)
	v.SetDefault("pipeline.health_score_min", 0)
	v.SetDefault("pipeline.health_score_max", 100)
	v.SetDefault("pipeline.alert_cooldown_seconds", 600)

	v.SetDefault("tasks.queue_size", 256)
	v.SetDefault("tasks.max_retries", 3)
	v.SetDefault("tasks.retry_backoff_ms", 200)
	v.SetDefault("tasks.shutdown_grace_seconds", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "aegis-pipeline")
	v.SetDefault("tracing.sample_rate", 0.1)
}
