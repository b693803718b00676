package memtimetable

import (
	"fmt"
	"sort"

	"raptorplanner.dev/internal/raptor"
)

// Builder accumulates stops, patterns, trips, and transfers and produces
// an immutable Provider. Used directly by tests and by the transfer
// generator (C8) and timetable store (C9) once they have read their
// source data into memory.
type Builder struct {
	numStops  int
	patterns  []*patternData
	transfers [][]raptor.TransferLeg
	trips     []tripMeta
	coords    []Coord
}

// NewBuilder allocates a Builder for a timetable with numStops stops.
func NewBuilder(numStops int) *Builder {
	return &Builder{
		numStops:  numStops,
		transfers: make([][]raptor.TransferLeg, numStops),
		coords:    make([]Coord, numStops),
	}
}

// SetCoord records an optional (lat, lon) for stop, used by the transfer
// generator and journey-polyline encoding; the core algorithm never reads
// it.
func (b *Builder) SetCoord(stop raptor.Stop, lat, lon float64) {
	b.coords[stop] = Coord{Lat: lat, Lon: lon}
}

// AddPattern registers a new pattern over stops, in order, returning its
// id. stops must have length at least 2.
func (b *Builder) AddPattern(stops []raptor.Stop) (raptor.PatternID, error) {
	if len(stops) < 2 {
		return 0, &raptor.ProviderError{Op: "AddPattern", Err: fmt.Errorf("pattern must have at least 2 stops, got %d", len(stops))}
	}
	id := raptor.PatternID(len(b.patterns))
	b.patterns = append(b.patterns, &patternData{id: id, stops: append([]raptor.Stop(nil), stops...)})
	return id, nil
}

// AddTrip registers a trip on pattern with per-position arrival and
// departure times, returning its global trip reference. Times must be
// non-decreasing along the pattern and satisfy arrival[p] <= departure[p].
func (b *Builder) AddTrip(pattern raptor.PatternID, arrivals, departures []int32, inService bool) (raptor.TripRef, error) {
	if int(pattern) < 0 || int(pattern) >= len(b.patterns) {
		return 0, &raptor.ProviderError{Op: "AddTrip", Err: fmt.Errorf("unknown pattern %d", pattern)}
	}
	data := b.patterns[pattern]
	if len(arrivals) != len(data.stops) || len(departures) != len(data.stops) {
		return 0, &raptor.ProviderError{Op: "AddTrip", Err: fmt.Errorf("pattern %d has %d stops, got %d arrivals / %d departures", pattern, len(data.stops), len(arrivals), len(departures))}
	}
	for p := range arrivals {
		if arrivals[p] > departures[p] {
			return 0, &raptor.ProviderError{Op: "AddTrip", Err: fmt.Errorf("pattern %d position %d: arrival %d after departure %d", pattern, p, arrivals[p], departures[p])}
		}
		if p > 0 && departures[p-1] > arrivals[p] {
			return 0, &raptor.ProviderError{Op: "AddTrip", Err: fmt.Errorf("pattern %d position %d: departure %d at prior stop after arrival %d", pattern, p, departures[p-1], arrivals[p])}
		}
	}

	trip := raptor.TripRef(len(b.trips))
	indexInPattern := len(data.tripRefs)
	data.tripRefs = append(data.tripRefs, trip)
	data.arrivals = append(data.arrivals, append([]int32(nil), arrivals...))
	data.departures = append(data.departures, append([]int32(nil), departures...))
	b.trips = append(b.trips, tripMeta{patternIdx: int(pattern), indexInPattern: indexInPattern, inService: inService})
	return trip, nil
}

// AddTransfer registers a walking transfer leg from one stop to another.
func (b *Builder) AddTransfer(from, to raptor.Stop, duration int32) {
	b.transfers[from] = append(b.transfers[from], raptor.TransferLeg{FromStop: from, ToStop: to, Duration: duration})
}

// Build freezes the accumulated data into a Provider, sorting each
// pattern's trips by departure time at position 0, the order
// TripScheduleSearch's in-order scan relies on.
func (b *Builder) Build() (*Provider, error) {
	for _, data := range b.patterns {
		sortPatternTrips(data, b.trips)
	}

	patternsByStop := make([][]raptor.PatternID, b.numStops)
	for _, data := range b.patterns {
		seen := make(map[raptor.Stop]bool)
		for _, stop := range data.stops {
			if seen[stop] {
				continue
			}
			seen[stop] = true
			patternsByStop[stop] = append(patternsByStop[stop], data.id)
		}
	}

	return &Provider{
		numStops:       b.numStops,
		patterns:       b.patterns,
		patternsByStop: patternsByStop,
		transfers:      b.transfers,
		trips:          b.trips,
		coords:         b.coords,
	}, nil
}

// sortPatternTrips reorders a pattern's trips by departure at position 0,
// updating every trip's recorded indexInPattern in trips to match, since
// TimesAtPosition indexes by that value.
func sortPatternTrips(data *patternData, trips []tripMeta) {
	type row struct {
		trip       raptor.TripRef
		arrivals   []int32
		departures []int32
	}
	rows := make([]row, len(data.tripRefs))
	for i, trip := range data.tripRefs {
		rows[i] = row{trip: trip, arrivals: data.arrivals[i], departures: data.departures[i]}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].departures[0] < rows[j].departures[0] })

	data.tripRefs = data.tripRefs[:0]
	data.arrivals = data.arrivals[:0]
	data.departures = data.departures[:0]
	for newIndex, r := range rows {
		data.tripRefs = append(data.tripRefs, r.trip)
		data.arrivals = append(data.arrivals, r.arrivals)
		data.departures = append(data.departures, r.departures)
		trips[r.trip].indexInPattern = newIndex
	}
}
