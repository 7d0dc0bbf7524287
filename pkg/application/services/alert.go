package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// AlertService raises, evaluates and clears operator alerts
type AlertService struct {
	rt Runtime
}

// NewAlertService creates an alert service
func NewAlertService(rt Runtime) *AlertService {
	return &AlertService{rt: rt.withDefaults()}
}

// RaiseInput describes a manually raised alert
type RaiseInput struct {
	Type     entities.AlertType
	Severity entities.Severity
	Message  string
	Meta     map[string]string
	Actor    string
}

// Raise records a new alert
func (s *AlertService) Raise(ctx context.Context, in RaiseInput) (entities.Alert, error) {
	now := s.rt.Clock()
	var raised entities.Alert

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		alert, err := entities.NewAlert(s.rt.IDs.NewID("ALERT"), in.Type, in.Severity, in.Message, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		alert.Meta = in.Meta
		if err := tx.AddAlert(*alert); err != nil {
			return err
		}
		raised = alert.Clone()
		return s.rt.audit(tx, entities.ScopeSystem, in.Actor, fmt.Sprintf("Alert %s raised: %s", alert.AlertID, in.Message), now)
	})
	if err != nil {
		return entities.Alert{}, err
	}

	s.rt.publish(events.NewAlertRaisedEvent(raised))
	return raised, nil
}

// Clear marks an alert as handled by actor
func (s *AlertService) Clear(ctx context.Context, alertID, actor string) (entities.Alert, error) {
	now := s.rt.Clock()
	var cleared entities.Alert

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		alert, err := tx.GetAlert(alertID)
		if err != nil {
			return err
		}
		if !alert.Active() {
			return fmt.Errorf("alert %s: %w", alertID, ErrAlertCleared)
		}
		if actor == "" {
			actor = tx.Session().OperatorID
		}
		if err := tx.ClearAlert(alertID, actor, now); err != nil {
			return err
		}
		if cleared, err = tx.GetAlert(alertID); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeSystem, actor, fmt.Sprintf("Alert %s cleared", alertID), now)
	})
	if err != nil {
		return entities.Alert{}, err
	}

	s.rt.publish(events.NewAlertClearedEvent(cleared, actor, now))
	return cleared, nil
}

// Active lists uncleared alerts
func (s *AlertService) Active() []entities.Alert {
	return selectors.ActiveAlerts(s.rt.Store.Alerts())
}

// EvaluateReload raises one warn Reload alert for every grade whose
// available stock covers fewer days than the reload threshold, unless that
// grade already has an uncleared Reload alert
func (s *AlertService) EvaluateReload(ctx context.Context) ([]entities.Alert, error) {
	now := s.rt.Clock()
	var raised []entities.Alert

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		raised = nil
		cfg := tx.Config()

		pending := make(map[entities.Grade]bool)
		for _, a := range selectors.ActiveAlerts(tx.Alerts()) {
			if a.Type == entities.AlertReload {
				pending[entities.Grade(a.Meta["grade"])] = true
			}
		}

		cover := selectors.AvailableDaysCoverByGrade(tx.Bales(), tx.Pyramids(), tx.Slots(), cfg.DailyUsageByGrade)
		for _, g := range entities.Grades {
			days, ok := cover[g]
			if !ok || days >= cfg.ReloadThresholdDays || pending[g] {
				continue
			}
			alert, err := entities.NewAlert(s.rt.IDs.NewID("ALERT"), entities.AlertReload, entities.SeverityWarn,
				fmt.Sprintf("Grade %s stock covers %d days, below the %d day reload threshold", g, days, cfg.ReloadThresholdDays), now)
			if err != nil {
				return err
			}
			alert.Meta = map[string]string{"grade": string(g), "daysCover": strconv.Itoa(days)}
			if err := tx.AddAlert(*alert); err != nil {
				return err
			}
			raised = append(raised, alert.Clone())
		}
		if len(raised) == 0 {
			return nil
		}
		return s.rt.audit(tx, entities.ScopeSystem, "system", fmt.Sprintf("%d reload alerts raised", len(raised)), now)
	})
	if err != nil {
		return nil, err
	}

	evs := make([]events.Event, 0, len(raised))
	for _, a := range raised {
		s.rt.Logger.Warn("reload alert raised",
			zap.String("alert_id", a.AlertID),
			zap.String("grade", a.Meta["grade"]))
		evs = append(evs, events.NewAlertRaisedEvent(a))
	}
	s.rt.publish(evs...)
	return raised, nil
}
