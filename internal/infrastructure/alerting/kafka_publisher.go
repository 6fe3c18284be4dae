// Package alerting fans persisted alerts out to downstream consumers.
package alerting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/aegisai/aegis/internal/config"
	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/service"
	"github.com/aegisai/aegis/pkg/logger"
)

// KafkaPublisher writes raised alerts onto a Kafka topic, keyed by tenant so
// a consumer sees one tenant's alerts in order.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

var _ service.AlertPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for the configured alert topic.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AlertTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{
		writer: writer,
		logger: log.WithComponent("kafka_publisher"),
	}
}

// Publish sends one alert. Failures are returned to the caller, which treats
// fan-out as best effort; the alert row is already durable.
func (p *KafkaPublisher) Publish(ctx context.Context, alert *models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal alert", err, logger.Fields{
			"alert_id": alert.ID,
		})
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.TenantID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to publish alert", err, logger.Fields{
			"alert_id":  alert.ID,
			"tenant_id": alert.TenantID,
		})
	}
	return err
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
