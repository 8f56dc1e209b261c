// Package notify dispatches emergency alerts to a tourist's emergency
// contact.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Alert describes an emergency notification.
type Alert struct {
	TouristName      string
	TouristDID       string
	EmergencyContact string
	Lat              float64
	Lon              float64
	Reason           string
}

// Alerter sends emergency alerts.
type Alerter interface {
	SendEmergencyAlert(ctx context.Context, alert Alert) error
}

// LogAlerter simulates SMS dispatch by logging the alert. Stands in for a
// real SMS gateway in dev and test environments.
type LogAlerter struct {
	logger *slog.Logger
}

// NewLogAlerter creates a LogAlerter.
func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) SendEmergencyAlert(ctx context.Context, alert Alert) error {
	mapsLink := fmt.Sprintf("https://www.google.com/maps?q=%f,%f", alert.Lat, alert.Lon)

	a.logger.Warn("emergency alert",
		"to", alert.EmergencyContact,
		"tourist", alert.TouristName,
		"did", alert.TouristDID,
		"reason", alert.Reason,
		"location", mapsLink,
	)

	return nil
}
