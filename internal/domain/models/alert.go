package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aegisai/aegis/pkg/constants"
)

// Alert is a persisted record of a threshold crossing. Creation is
// append-only; only the Resolved flag is mutable, and only by external
// operator action.
type Alert struct {
	ID       string `gorm:"primaryKey;size:36"`
	TenantID string `gorm:"index;size:36;not null"`

	// ModelName is empty for tenant-level alerts (health).
	ModelName string `gorm:"size:255"`

	Type     constants.AlertType     `gorm:"size:16;not null"`
	Message  string                  `gorm:"type:text;not null"`
	Severity constants.AlertSeverity `gorm:"size:16;not null"`

	CreatedAt time.Time `gorm:"index"`
	Resolved  bool      `gorm:"not null;default:false"`
}

// NewAlert builds an unresolved alert.
func NewAlert(tenantID, modelName string, alertType constants.AlertType, message string, severity constants.AlertSeverity) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ModelName: modelName,
		Type:      alertType,
		Message:   message,
		Severity:  severity,
		Resolved:  false,
	}
}

// SuppressionKey identifies alerts considered duplicates for the cool-down
// policy: same tenant, type, model, and severity.
func (a *Alert) SuppressionKey() string {
	return a.TenantID + "|" + string(a.Type) + "|" + a.ModelName + "|" + string(a.Severity)
}
