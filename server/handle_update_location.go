package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sahayatri/go-tourist-credential/geofence"
	"github.com/sahayatri/go-tourist-credential/notify"
	"github.com/sahayatri/go-tourist-credential/registry"
)

type updateLocationRequest struct {
	TouristID string  `json:"touristId" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" validate:"required"`
}

type updateLocationResponse struct {
	Status  string `json:"status"`
	Zone    string `json:"zone,omitempty"`
	Message string `json:"message"`
}

// handleUpdateLocation records a reported position, classifies it against
// the geofence zones, and raises emergency alerts for restricted-zone
// entries and stationary anomalies.
func (s *Server) handleUpdateLocation(e echo.Context) error {
	var req updateLocationRequest
	if err := e.Bind(&req); err != nil {
		return inputError(e, "invalid JSON data provided")
	}
	if err := e.Validate(&req); err != nil {
		return inputError(e, "missing latitude, longitude, or touristId")
	}

	ctx := e.Request().Context()
	now := time.Now().UTC()

	// The previous position is read before being overwritten so the
	// stationary check measures real elapsed time.
	previous, err := s.registry.GetLocation(ctx, req.TouristID)
	if err != nil && !errors.Is(err, registry.ErrNotFound) {
		s.logger.Error("failed to load location record", "error", err)
		return serverError(e, "failed to load location record")
	}

	if err := s.registry.PutLocation(ctx, registry.Location{
		DID: req.TouristID,
		Lat: req.Latitude,
		Lon: req.Longitude,
		At:  now,
	}); err != nil {
		s.logger.Error("failed to store location record", "error", err)
		return serverError(e, "failed to store location record")
	}

	status, zoneName := s.geo.Locate(req.Latitude, req.Longitude)

	if status == geofence.StatusRestricted {
		s.raiseAlert(ctx, req, "tourist has entered a restricted area: "+zoneName)
		return e.JSON(http.StatusOK, updateLocationResponse{
			Status:  "alert",
			Zone:    zoneName,
			Message: "tourist entered restricted zone: " + zoneName,
		})
	}

	if anomaly, reason := s.geo.StationaryAnomaly(previous, now); anomaly {
		s.raiseAlert(ctx, req, reason)
		return e.JSON(http.StatusOK, updateLocationResponse{
			Status:  "alert",
			Zone:    zoneName,
			Message: reason,
		})
	}

	message := "tourist is in an unmonitored area"
	if zoneName != "" {
		message = "tourist is in '" + zoneName + "' (" + status + ")"
	}

	return e.JSON(http.StatusOK, updateLocationResponse{
		Status:  status,
		Zone:    zoneName,
		Message: message,
	})
}

// raiseAlert notifies the tourist's emergency contact when one is on file.
// Alert failures are logged, not surfaced; the location update itself
// succeeded.
func (s *Server) raiseAlert(ctx context.Context, req updateLocationRequest, reason string) {
	tourist, err := s.registry.GetTourist(ctx, req.TouristID)
	if err != nil {
		s.logger.Warn("no tourist record for alert", "did", req.TouristID, "reason", reason)
		return
	}

	alert := notify.Alert{
		TouristName:      tourist.Name,
		TouristDID:       tourist.DID,
		EmergencyContact: tourist.EmergencyContact,
		Lat:              req.Latitude,
		Lon:              req.Longitude,
		Reason:           reason,
	}
	if err := s.alerter.SendEmergencyAlert(ctx, alert); err != nil {
		s.logger.Error("failed to send emergency alert", "error", err)
	}
}
