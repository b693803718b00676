package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptorplanner.dev/internal/raptor"
)

func sampleTimetable() TimetableData {
	return TimetableData{
		Stops: []StopRecord{
			{ID: 0, Lat: 47.60, Lon: -122.33},
			{ID: 1, Lat: 47.61, Lon: -122.32},
			{ID: 2, Lat: 47.62, Lon: -122.31},
		},
		Patterns: []PatternRecord{
			{ID: 0, Stops: []int{0, 1, 2}},
		},
		Trips: []TripRecord{
			{ID: 0, PatternID: 0, InService: true,
				Arrivals:   []int32{1000, 1100, 1200},
				Departures: []int32{1000, 1110, 1200}},
			{ID: 1, PatternID: 0, InService: false,
				Arrivals:   []int32{2000, 2100, 2200},
				Departures: []int32{2000, 2110, 2200}},
		},
		Transfers: []TransferRecord{
			{FromStop: 1, ToStop: 2, Duration: 90},
		},
	}
}

func TestClient_ImportLoad_RoundTrips(t *testing.T) {
	client, err := NewClient(Config{DBPath: ":memory:"})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	data := sampleTimetable()
	require.NoError(t, client.Import(ctx, data))

	loaded, err := client.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, data.Stops, loaded.Stops)
	assert.Equal(t, data.Patterns, loaded.Patterns)
	assert.Equal(t, data.Trips, loaded.Trips)
	assert.Equal(t, data.Transfers, loaded.Transfers)
}

func TestClient_LoadProvider_BuildsSearchableProvider(t *testing.T) {
	client, err := NewClient(Config{DBPath: ":memory:"})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Import(ctx, sampleTimetable()))

	provider, err := client.LoadProvider(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.NumStops())
	assert.True(t, provider.IsTripInService(0))
	assert.False(t, provider.IsTripInService(1))

	coord, ok := provider.Coord(0)
	require.True(t, ok)
	assert.Equal(t, 47.60, coord.Lat)
}

func runFixedRequest(t *testing.T, provider raptor.Provider) []raptor.Journey {
	t.Helper()
	req := raptor.Request{
		AccessLegs:        []raptor.TransferLeg{{FromStop: -1, ToStop: 0, Duration: 0}},
		EgressLegs:        []raptor.TransferLeg{{FromStop: 2, ToStop: -1, Duration: 0}},
		EarliestDeparture: 900,
		LatestDeparture:   1000,
		Direction:         raptor.Forward,
		Criteria:          raptor.Pareto,
	}
	tuning := raptor.DefaultTuning()
	ctx, err := raptor.NewSearchContext(req, tuning, provider, raptor.NewNoopTimer())
	require.NoError(t, err)
	state := raptor.NewMultiCriterionState(ctx.Calc, provider.NumStops(), tuning.MaxNumberOfTransfers+1)
	journeys, err := raptor.NewWorker(ctx, state).Run(context.Background())
	require.NoError(t, err)
	return journeys
}

func TestClient_StoreRoundTrip_PreservesSearchResults(t *testing.T) {
	data := sampleTimetable()

	directProvider, err := BuildProvider(data)
	require.NoError(t, err)
	want := runFixedRequest(t, directProvider)

	client, err := NewClient(Config{DBPath: ":memory:"})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Import(ctx, data))
	storedProvider, err := client.LoadProvider(ctx)
	require.NoError(t, err)
	got := runFixedRequest(t, storedProvider)

	assert.Equal(t, want, got)
	assert.NotEmpty(t, got)
}

func TestSnapshot_ExportImport_RoundTrips(t *testing.T) {
	data := sampleTimetable()

	var buf bytes.Buffer
	require.NoError(t, ExportSnapshot(&buf, data))
	assert.NotZero(t, buf.Len())

	restored, err := ImportSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, restored)
}

func TestSnapshot_CompressesRepetitiveData(t *testing.T) {
	data := sampleTimetable()
	for i := 0; i < 200; i++ {
		data.Trips = append(data.Trips, data.Trips[0])
	}

	var uncompressed bytes.Buffer
	require.NoError(t, gob.NewEncoder(&uncompressed).Encode(data))

	var compressed bytes.Buffer
	require.NoError(t, ExportSnapshot(&compressed, data))

	assert.Less(t, compressed.Len(), uncompressed.Len())
}

func TestBuildProvider_RejectsTripWithUnknownPattern(t *testing.T) {
	data := sampleTimetable()
	data.Trips[0].PatternID = 99

	_, err := BuildProvider(data)
	assert.Error(t, err)
}
