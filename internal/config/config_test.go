package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisai/aegis/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Pipeline: PipelineConfig{
			DriftLatencyThresholdMS: 2000,
			HealthScoreMin:          0,
			HealthScoreMax:          100,
			AlertCooldownSeconds:    600,
		},
		Tasks: TasksConfig{
			QueueSize:            256,
			MaxRetries:           3,
			RetryBackoffMS:       200,
			ShutdownGraceSeconds: 20,
		},
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"drift threshold zero", func(c *Config) { c.Pipeline.DriftLatencyThresholdMS = 0 }, "pipeline.drift_latency_threshold_ms"},
		{"inverted health bounds", func(c *Config) { c.Pipeline.HealthScoreMin = 100 }, "pipeline.health_score_min"},
		{"queue size zero", func(c *Config) { c.Tasks.QueueSize = 0 }, "tasks.queue_size"},
		{"negative retries", func(c *Config) { c.Tasks.MaxRetries = -1 }, "tasks.max_retries"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			appErr := errors.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tc.field, appErr.Metadata()["field"])
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.AlertCooldown())
	assert.Equal(t, 200*time.Millisecond, cfg.Tasks.RetryBackoff())
	assert.Equal(t, 20*time.Second, cfg.Tasks.ShutdownGrace())

	redisCfg := RedisConfig{CacheTTL: 300}
	assert.Equal(t, 5*time.Minute, redisCfg.TTL())
}

func TestLoadConfig_DefaultsAreValid(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2000.0, cfg.Pipeline.DriftLatencyThresholdMS)
	assert.Equal(t, 256, cfg.Tasks.QueueSize)
	assert.Equal(t, "aegis.alerts", cfg.Kafka.AlertTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("AEGIS_SERVER_PORT", "9090")
	t.Setenv("AEGIS_PIPELINE_ALERT_COOLDOWN_SECONDS", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.AlertCooldown())
}
