// Package geofence classifies reported positions against configured zones
// and flags tourists who have been stationary for too long.
package geofence

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sahayatri/go-tourist-credential/registry"
)

// Zone statuses reported by Locate.
const (
	StatusRestricted  = "restricted_zone"
	StatusSafe        = "safe_zone"
	StatusUnmonitored = "unmonitored"
)

// Zone is a named polygon with a status type. Coordinates are [lon, lat]
// pairs forming the polygon ring.
type Zone struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// LoadZones reads zone definitions from a JSON file so zones can change
// without a rebuild.
func LoadZones(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geofence file: %w", err)
	}

	var zones []Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("failed to parse geofence file: %w", err)
	}

	return zones, nil
}

// Engine evaluates positions against a fixed zone set. Read-only after
// construction, safe for concurrent use.
type Engine struct {
	zones               []Zone
	stationaryThreshold time.Duration
}

// NewEngine creates an Engine over the given zones.
func NewEngine(zones []Zone, stationaryThreshold time.Duration) *Engine {
	return &Engine{
		zones:               zones,
		stationaryThreshold: stationaryThreshold,
	}
}

// Locate returns the status and name of the first zone containing the
// position, or StatusUnmonitored when no zone matches.
func (e *Engine) Locate(lat, lon float64) (status, zoneName string) {
	for _, zone := range e.zones {
		if containsPoint(zone.Coordinates, lon, lat) {
			return zone.Type, zone.Name
		}
	}

	return StatusUnmonitored, ""
}

// StationaryAnomaly reports whether the last known position is older than
// the stationary threshold.
func (e *Engine) StationaryAnomaly(last *registry.Location, now time.Time) (bool, string) {
	if last == nil || last.At.IsZero() {
		return false, "no previous location data"
	}

	elapsed := now.Sub(last.At)
	if elapsed > e.stationaryThreshold {
		return true, fmt.Sprintf("tourist has been stationary for over %d minutes", int(elapsed.Minutes()))
	}

	return false, "tourist is moving normally"
}

// containsPoint runs a ray cast over the polygon ring. Points are compared
// in (x=lon, y=lat) order to match the zone coordinate convention.
func containsPoint(ring [][2]float64, x, y float64) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}

	return inside
}
