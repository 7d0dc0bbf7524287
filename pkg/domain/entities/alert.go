package entities

import (
	"fmt"
	"time"
)

// AlertType categorises an alert
type AlertType string

const (
	AlertReload    AlertType = "Reload"
	AlertQuality   AlertType = "Quality"
	AlertEquipment AlertType = "Equipment"
)

// Severity ranks an alert
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// Alert is an operator notification. Alerts are cleared, never deleted.
type Alert struct {
	AlertID   string            `json:"alertId"`
	Type      AlertType         `json:"type"`
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdTs"`
	ClearedAt *time.Time        `json:"clearedTs,omitempty"`
	ClearedBy string            `json:"clearedBy,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// NewAlert creates a validated, uncleared Alert
func NewAlert(alertID string, alertType AlertType, severity Severity, message string, createdAt time.Time) (*Alert, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alert id cannot be empty")
	}
	switch alertType {
	case AlertReload, AlertQuality, AlertEquipment:
	default:
		return nil, fmt.Errorf("unknown alert type %q", alertType)
	}
	switch severity {
	case SeverityInfo, SeverityWarn, SeverityCritical:
	default:
		return nil, fmt.Errorf("unknown severity %q", severity)
	}
	if message == "" {
		return nil, fmt.Errorf("alert message cannot be empty")
	}

	return &Alert{
		AlertID:   alertID,
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		CreatedAt: createdAt,
	}, nil
}

// Active reports whether the alert is still uncleared
func (a *Alert) Active() bool {
	return a.ClearedAt == nil
}

// Clone returns a copy that shares no pointers with a
func (a Alert) Clone() Alert {
	a.ClearedAt = cloneTime(a.ClearedAt)
	if a.Meta != nil {
		meta := make(map[string]string, len(a.Meta))
		for k, v := range a.Meta {
			meta[k] = v
		}
		a.Meta = meta
	}
	return a
}
