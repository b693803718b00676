// Package memtimetable implements the in-memory Timetable Data Provider
// (C1): the default raptor.Provider backing tests, the batch CLI against a
// loaded snapshot, and the target of the transfer generator (C8).
package memtimetable

import (
	"raptorplanner.dev/internal/raptor"
)

// tripMeta locates a trip within its owning pattern.
type tripMeta struct {
	patternIdx     int
	indexInPattern int
	inService      bool
}

type patternData struct {
	id         raptor.PatternID
	stops      []raptor.Stop
	tripRefs   []raptor.TripRef
	arrivals   [][]int32 // arrivals[indexInPattern][position]
	departures [][]int32
}

// Provider is an immutable, in-memory raptor.Provider. Build one with
// Builder; do not construct a Provider directly.
type Provider struct {
	numStops       int
	patterns       []*patternData
	patternsByStop [][]raptor.PatternID
	transfers      [][]raptor.TransferLeg
	trips          []tripMeta
	coords         []Coord
}

// Coord is an optional (lat, lon) associated with a stop; the core
// algorithm never reads it, but the transfer generator (C8) and the
// journey-polyline encoder do.
type Coord struct {
	Lat, Lon float64
}

// Init is a no-op: the in-memory provider is already fully materialized
// at construction time.
func (p *Provider) Init() error { return nil }

func (p *Provider) NumStops() int { return p.numStops }

func (p *Provider) IsTripInService(trip raptor.TripRef) bool {
	if int(trip) < 0 || int(trip) >= len(p.trips) {
		return false
	}
	return p.trips[trip].inService
}

// Coord returns the stop's coordinate and whether one was recorded.
func (p *Provider) Coord(stop raptor.Stop) (Coord, bool) {
	if int(stop) < 0 || int(stop) >= len(p.coords) {
		return Coord{}, false
	}
	c := p.coords[stop]
	if c == (Coord{}) {
		return Coord{}, false
	}
	return c, true
}

func (p *Provider) PatternsForStops(stops *raptor.StopSet) raptor.PatternIterator {
	seen := make(map[raptor.PatternID]bool)
	var ids []raptor.PatternID
	stops.Iterate(func(stop raptor.Stop) {
		for _, id := range p.patternsByStop[stop] {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	})
	return &patternIterator{provider: p, ids: ids, cursor: -1}
}

func (p *Provider) TransfersFrom(stop raptor.Stop) raptor.TransferIterator {
	return &transferIterator{legs: p.transfers[stop], cursor: -1}
}

type patternIterator struct {
	provider *Provider
	ids      []raptor.PatternID
	cursor   int
}

func (it *patternIterator) Next() bool {
	it.cursor++
	return it.cursor < len(it.ids)
}

func (it *patternIterator) Pattern() raptor.Pattern {
	data := it.provider.patterns[it.ids[it.cursor]]
	return &patternView{provider: it.provider, data: data}
}

type transferIterator struct {
	legs   []raptor.TransferLeg
	cursor int
}

func (it *transferIterator) Next() bool {
	it.cursor++
	return it.cursor < len(it.legs)
}

func (it *transferIterator) Leg() raptor.TransferLeg { return it.legs[it.cursor] }

// patternView is the raptor.Pattern view over one patternData.
type patternView struct {
	provider *Provider
	data     *patternData
}

func (v *patternView) ID() raptor.PatternID { return v.data.id }
func (v *patternView) Len() int             { return len(v.data.stops) }
func (v *patternView) StopAt(position int) raptor.Stop { return v.data.stops[position] }
func (v *patternView) NumTrips() int                   { return len(v.data.tripRefs) }
func (v *patternView) TripAt(index int) raptor.TripRef { return v.data.tripRefs[index] }

func (v *patternView) TimesAtPosition(trip raptor.TripRef, position int) (arrival, departure int32) {
	meta := v.provider.trips[trip]
	return v.data.arrivals[meta.indexInPattern][position], v.data.departures[meta.indexInPattern][position]
}
