package store

import (
	"context"
	"fmt"
	"sort"

	"raptorplanner.dev/internal/memtimetable"
	"raptorplanner.dev/internal/raptor"
)

// Load reads the whole database back into a TimetableData, the inverse of
// Import.
func (c *Client) Load(ctx context.Context) (TimetableData, error) {
	var data TimetableData

	stopRows, err := c.DB.QueryContext(ctx, "SELECT stop_id, lat, lon FROM stops ORDER BY stop_id")
	if err != nil {
		return data, fmt.Errorf("loading stops: %w", err)
	}
	for stopRows.Next() {
		var s StopRecord
		if err := stopRows.Scan(&s.ID, &s.Lat, &s.Lon); err != nil {
			_ = stopRows.Close()
			return data, fmt.Errorf("scanning stop: %w", err)
		}
		data.Stops = append(data.Stops, s)
	}
	if err := stopRows.Close(); err != nil {
		return data, fmt.Errorf("closing stop rows: %w", err)
	}

	patternStops := make(map[int][]int)
	psRows, err := c.DB.QueryContext(ctx, "SELECT pattern_id, position, stop_id FROM pattern_stops ORDER BY pattern_id, position")
	if err != nil {
		return data, fmt.Errorf("loading pattern stops: %w", err)
	}
	for psRows.Next() {
		var patternID, position, stopID int
		if err := psRows.Scan(&patternID, &position, &stopID); err != nil {
			_ = psRows.Close()
			return data, fmt.Errorf("scanning pattern stop: %w", err)
		}
		patternStops[patternID] = append(patternStops[patternID], stopID)
	}
	if err := psRows.Close(); err != nil {
		return data, fmt.Errorf("closing pattern stop rows: %w", err)
	}

	patternIDs := make([]int, 0, len(patternStops))
	for id := range patternStops {
		patternIDs = append(patternIDs, id)
	}
	sort.Ints(patternIDs)
	for _, id := range patternIDs {
		data.Patterns = append(data.Patterns, PatternRecord{ID: id, Stops: patternStops[id]})
	}

	tripRows, err := c.DB.QueryContext(ctx, "SELECT trip_id, pattern_id, in_service FROM trips ORDER BY trip_id")
	if err != nil {
		return data, fmt.Errorf("loading trips: %w", err)
	}
	trips := make(map[int]*TripRecord)
	for tripRows.Next() {
		var t TripRecord
		var inService int
		if err := tripRows.Scan(&t.ID, &t.PatternID, &inService); err != nil {
			_ = tripRows.Close()
			return data, fmt.Errorf("scanning trip: %w", err)
		}
		t.InService = inService != 0
		trips[t.ID] = &t
	}
	if err := tripRows.Close(); err != nil {
		return data, fmt.Errorf("closing trip rows: %w", err)
	}

	timeRows, err := c.DB.QueryContext(ctx, "SELECT trip_id, position, arrival, departure FROM stop_times ORDER BY trip_id, position")
	if err != nil {
		return data, fmt.Errorf("loading stop times: %w", err)
	}
	for timeRows.Next() {
		var tripID, position int
		var arrival, departure int32
		if err := timeRows.Scan(&tripID, &position, &arrival, &departure); err != nil {
			_ = timeRows.Close()
			return data, fmt.Errorf("scanning stop time: %w", err)
		}
		trip, ok := trips[tripID]
		if !ok {
			continue
		}
		trip.Arrivals = append(trip.Arrivals, arrival)
		trip.Departures = append(trip.Departures, departure)
	}
	if err := timeRows.Close(); err != nil {
		return data, fmt.Errorf("closing stop time rows: %w", err)
	}

	tripIDs := make([]int, 0, len(trips))
	for id := range trips {
		tripIDs = append(tripIDs, id)
	}
	sort.Ints(tripIDs)
	for _, id := range tripIDs {
		data.Trips = append(data.Trips, *trips[id])
	}

	transferRows, err := c.DB.QueryContext(ctx, "SELECT from_stop, to_stop, duration FROM transfers ORDER BY from_stop, to_stop")
	if err != nil {
		return data, fmt.Errorf("loading transfers: %w", err)
	}
	for transferRows.Next() {
		var tr TransferRecord
		if err := transferRows.Scan(&tr.FromStop, &tr.ToStop, &tr.Duration); err != nil {
			_ = transferRows.Close()
			return data, fmt.Errorf("scanning transfer: %w", err)
		}
		data.Transfers = append(data.Transfers, tr)
	}
	if err := transferRows.Close(); err != nil {
		return data, fmt.Errorf("closing transfer rows: %w", err)
	}

	return data, nil
}

// BuildProvider turns TimetableData into a ready-to-search
// raptor.Provider, the bridge from persisted storage back into the
// search engine.
func BuildProvider(data TimetableData) (*memtimetable.Provider, error) {
	numStops := 0
	for _, s := range data.Stops {
		if s.ID+1 > numStops {
			numStops = s.ID + 1
		}
	}

	builder := memtimetable.NewBuilder(numStops)
	for _, s := range data.Stops {
		builder.SetCoord(raptor.Stop(s.ID), s.Lat, s.Lon)
	}

	patternIDOf := make(map[int]raptor.PatternID, len(data.Patterns))
	for _, p := range data.Patterns {
		stops := make([]raptor.Stop, len(p.Stops))
		for i, s := range p.Stops {
			stops[i] = raptor.Stop(s)
		}
		id, err := builder.AddPattern(stops)
		if err != nil {
			return nil, fmt.Errorf("adding pattern %d: %w", p.ID, err)
		}
		patternIDOf[p.ID] = id
	}

	for _, t := range data.Trips {
		patternID, ok := patternIDOf[t.PatternID]
		if !ok {
			return nil, fmt.Errorf("trip %d references unknown pattern %d", t.ID, t.PatternID)
		}
		if _, err := builder.AddTrip(patternID, t.Arrivals, t.Departures, t.InService); err != nil {
			return nil, fmt.Errorf("adding trip %d: %w", t.ID, err)
		}
	}

	for _, t := range data.Transfers {
		builder.AddTransfer(raptor.Stop(t.FromStop), raptor.Stop(t.ToStop), t.Duration)
	}

	return builder.Build()
}

// LoadProvider is a convenience wrapper combining Load and BuildProvider.
func (c *Client) LoadProvider(ctx context.Context) (*memtimetable.Provider, error) {
	data, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildProvider(data)
}
