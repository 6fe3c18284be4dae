package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/logger"
)

// AlertPublisher fans a persisted alert out to downstream consumers. The
// Kafka implementation lives in infrastructure/alerting; a no-op is used when
// no broker is configured.
type AlertPublisher interface {
	Publish(ctx context.Context, alert *models.Alert) error
}

// AlertEngine evaluates thresholds over drift, health and risk outputs and
// persists alert records. Duplicate alerts within the cool-down window are
// suppressed so a degraded model raises one alert, not one per batch.
type AlertEngine interface {
	// EvaluateDrift raises a drift alert when score crosses the configured
	// threshold (latency threshold ms / 10).
	EvaluateDrift(ctx context.Context, tenantID, modelName string, driftScore float64) error

	// EvaluateHealth raises a health alert when the tenant score drops below
	// the warning threshold.
	EvaluateHealth(ctx context.Context, tenantID string, score float64) error

	// EvaluateRisk raises a critical risk alert when a per-event label
	// resolves to risky. Flags are included in the message when present.
	EvaluateRisk(ctx context.Context, tenantID, modelName string, source constants.EventSource, score float64, label constants.RiskLabel, flags []string) error
}

var _ AlertEngine = (*alertEngine)(nil)

type alertEngine struct {
	alerts         repository.AlertRepository
	publisher      AlertPublisher
	suppression    *gocache.Cache
	onSuppressed   func(alert *models.Alert)
	driftThreshold float64
	log            logger.Logger
}

// AlertEngineOption customizes an AlertEngine.
type AlertEngineOption func(*alertEngine)

// WithSuppressionObserver registers a callback invoked for every alert the
// cool-down window swallows.
func WithSuppressionObserver(fn func(alert *models.Alert)) AlertEngineOption {
	return func(e *alertEngine) {
		e.onSuppressed = fn
	}
}

// NewAlertEngine wires the evaluator. driftLatencyThresholdMS is the
// configured latency threshold; drift alerts trigger at one tenth of it.
// cooldown bounds how often an identical alert may repeat; zero disables
// suppression entirely.
func NewAlertEngine(
	alerts repository.AlertRepository,
	publisher AlertPublisher,
	driftLatencyThresholdMS float64,
	cooldown time.Duration,
	log logger.Logger,
	opts ...AlertEngineOption,
) AlertEngine {
	e := &alertEngine{
		alerts:         alerts,
		publisher:      publisher,
		driftThreshold: driftLatencyThresholdMS / 10,
		log:            log.WithComponent("alert_engine"),
	}
	if cooldown > 0 {
		e.suppression = gocache.New(cooldown, cooldown)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *alertEngine) EvaluateDrift(ctx context.Context, tenantID, modelName string, driftScore float64) error {
	if driftScore < e.driftThreshold {
		return nil
	}
	severity := constants.AlertSeverityWarning
	if driftScore >= constants.DriftAlertCriticalScore {
		severity = constants.AlertSeverityCritical
	}
	message := fmt.Sprintf("model %s drift score %.1f exceeds threshold %.1f", modelName, driftScore, e.driftThreshold)
	return e.raise(ctx, models.NewAlert(tenantID, modelName, constants.AlertTypeDrift, message, severity))
}

func (e *alertEngine) EvaluateHealth(ctx context.Context, tenantID string, score float64) error {
	if score >= constants.HealthAlertThreshold {
		return nil
	}
	severity := constants.AlertSeverityWarning
	if score < constants.HealthAlertCriticalThreshold {
		severity = constants.AlertSeverityCritical
	}
	message := fmt.Sprintf("account health score dropped to %.1f", score)
	return e.raise(ctx, models.NewAlert(tenantID, "", constants.AlertTypeHealth, message, severity))
}

func (e *alertEngine) EvaluateRisk(ctx context.Context, tenantID, modelName string, source constants.EventSource, score float64, label constants.RiskLabel, flags []string) error {
	if label != constants.RiskLabelRisky {
		return nil
	}
	message := fmt.Sprintf("%s event for model %s classified risky (score %.2f)", source, modelName, score)
	if len(flags) > 0 {
		message += " flags: " + strings.Join(flags, ",")
	}
	return e.raise(ctx, models.NewAlert(tenantID, modelName, constants.AlertTypeRisk, message, constants.AlertSeverityCritical))
}

// raise persists and publishes the alert unless an identical one fired
// within the cool-down window.
func (e *alertEngine) raise(ctx context.Context, alert *models.Alert) error {
	key := alert.SuppressionKey()
	if e.suppression != nil {
		if _, suppressed := e.suppression.Get(key); suppressed {
			e.log.Debug(ctx, "alert suppressed by cool-down", logger.Fields{
				"tenant_id": alert.TenantID,
				"type":      alert.Type,
				"severity":  alert.Severity,
			})
			if e.onSuppressed != nil {
				e.onSuppressed(alert)
			}
			return nil
		}
	}

	if err := e.alerts.Insert(ctx, alert); err != nil {
		return err
	}
	if e.suppression != nil {
		e.suppression.SetDefault(key, struct{}{})
	}

	e.log.Warn(ctx, "alert raised", logger.Fields{
		"tenant_id":  alert.TenantID,
		"model_name": alert.ModelName,
		"type":       alert.Type,
		"severity":   alert.Severity,
		"message":    alert.Message,
	})

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, alert); err != nil {
			// Fan-out is best effort; the persisted record is the source of truth.
			e.log.Error(ctx, "alert publish failed", err, logger.Fields{
				"tenant_id": alert.TenantID,
				"alert_id":  alert.ID,
			})
		}
	}
	return nil
}
