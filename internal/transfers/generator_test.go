package transfers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptorplanner.dev/internal/raptor"
)

func TestGenerate_WithinRadiusProducesLeg(t *testing.T) {
	// Two points roughly 100m apart on a meridian.
	stops := []StopCoord{
		{Stop: 0, Lat: 47.6000, Lon: -122.3000},
		{Stop: 1, Lat: 47.6009, Lon: -122.3000},
	}
	cfg := Config{RadiusMeters: 200, WalkingSpeedMetersPerSecond: 1.3}

	legs := Generate(stops, cfg)

	require.Contains(t, legs, raptor.Stop(0))
	require.Len(t, legs[0], 1)
	assert.Equal(t, raptor.Stop(1), legs[0][0].ToStop)
	assert.Greater(t, legs[0][0].Duration, int32(0))
}

func TestGenerate_OutsideRadiusProducesNoLeg(t *testing.T) {
	stops := []StopCoord{
		{Stop: 0, Lat: 47.6000, Lon: -122.3000},
		{Stop: 1, Lat: 47.7000, Lon: -122.3000}, // roughly 11km away
	}
	cfg := Config{RadiusMeters: 500, WalkingSpeedMetersPerSecond: 1.3}

	legs := Generate(stops, cfg)

	assert.NotContains(t, legs, raptor.Stop(0))
}

func TestGenerate_NoSelfTransfer(t *testing.T) {
	stops := []StopCoord{{Stop: 0, Lat: 47.6, Lon: -122.3}}
	legs := Generate(stops, DefaultConfig())
	assert.Empty(t, legs)
}

func TestGenerate_DurationScalesWithSpeed(t *testing.T) {
	stops := []StopCoord{
		{Stop: 0, Lat: 47.6000, Lon: -122.3000},
		{Stop: 1, Lat: 47.6009, Lon: -122.3000},
	}
	slow := Generate(stops, Config{RadiusMeters: 200, WalkingSpeedMetersPerSecond: 1.0})
	fast := Generate(stops, Config{RadiusMeters: 200, WalkingSpeedMetersPerSecond: 2.0})

	assert.Greater(t, slow[0][0].Duration, fast[0][0].Duration)
}
