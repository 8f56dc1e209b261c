package geofence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayatri/go-tourist-credential/registry"
)

func testZones() []Zone {
	return []Zone{
		{
			Name: "Border Area",
			Type: StatusRestricted,
			Coordinates: [][2]float64{
				{78.0, 27.0}, {78.2, 27.0}, {78.2, 27.2}, {78.0, 27.2},
			},
		},
		{
			Name: "City Center",
			Type: StatusSafe,
			Coordinates: [][2]float64{
				{77.0, 28.5}, {77.4, 28.5}, {77.4, 28.8}, {77.0, 28.8},
			},
		},
	}
}

func TestLocate(t *testing.T) {
	engine := NewEngine(testZones(), 30*time.Minute)

	tests := []struct {
		name         string
		lat, lon     float64
		expectedType string
		expectedZone string
	}{
		{name: "Inside restricted zone", lat: 27.1, lon: 78.1, expectedType: StatusRestricted, expectedZone: "Border Area"},
		{name: "Inside safe zone", lat: 28.6, lon: 77.2, expectedType: StatusSafe, expectedZone: "City Center"},
		{name: "Outside all zones", lat: 10.0, lon: 10.0, expectedType: StatusUnmonitored, expectedZone: ""},
		{name: "Just outside restricted boundary", lat: 27.3, lon: 78.1, expectedType: StatusUnmonitored, expectedZone: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, zone := engine.Locate(tt.lat, tt.lon)
			assert.Equal(t, tt.expectedType, status)
			assert.Equal(t, tt.expectedZone, zone)
		})
	}
}

func TestLocateFirstMatchWins(t *testing.T) {
	zones := testZones()
	overlapping := Zone{
		Name:        "Overlap",
		Type:        StatusSafe,
		Coordinates: zones[0].Coordinates,
	}
	engine := NewEngine(append(zones, overlapping), 30*time.Minute)

	status, zone := engine.Locate(27.1, 78.1)
	assert.Equal(t, StatusRestricted, status)
	assert.Equal(t, "Border Area", zone)
}

func TestStationaryAnomaly(t *testing.T) {
	engine := NewEngine(nil, 30*time.Minute)
	now := time.Now().UTC()

	tests := []struct {
		name     string
		last     *registry.Location
		expected bool
	}{
		{name: "No previous data", last: nil, expected: false},
		{name: "Recent update", last: &registry.Location{At: now.Add(-5 * time.Minute)}, expected: false},
		{name: "Stale update", last: &registry.Location{At: now.Add(-45 * time.Minute)}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anomaly, reason := engine.StationaryAnomaly(tt.last, now)
			assert.Equal(t, tt.expected, anomaly)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestLoadZones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geofences.json")
	content := `[{"name":"Border Area","type":"restricted_zone","coordinates":[[78.0,27.0],[78.2,27.0],[78.2,27.2]]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	zones, err := LoadZones(path)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Border Area", zones[0].Name)
	assert.Equal(t, StatusRestricted, zones[0].Type)
	assert.Len(t, zones[0].Coordinates, 3)

	_, err = LoadZones(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
