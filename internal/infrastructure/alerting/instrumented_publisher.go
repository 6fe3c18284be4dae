package alerting

import (
	"context"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/service"
	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
)

// InstrumentedPublisher counts every raised alert before handing it to the
// next publisher. Suppressed duplicates never reach a publisher, so the
// counter reflects distinct alert rows.
type InstrumentedPublisher struct {
	next    service.AlertPublisher
	metrics *monitoring.Metrics
}

var _ service.AlertPublisher = (*InstrumentedPublisher)(nil)

// NewInstrumentedPublisher wraps next with alert metrics. next may be nil
// when fan-out is disabled.
func NewInstrumentedPublisher(next service.AlertPublisher, metrics *monitoring.Metrics) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, metrics: metrics}
}

func (p *InstrumentedPublisher) Publish(ctx context.Context, alert *models.Alert) error {
	if p.metrics != nil {
		p.metrics.RecordAlert(alert.TenantID, alert.Type, alert.Severity)
	}
	if p.next == nil {
		return nil
	}
	return p.next.Publish(ctx, alert)
}
