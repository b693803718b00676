package raptor

// TripScheduleSearch finds the boardable (forward) or alightable (reverse)
// trip at a pattern position nearest a target time. §4.3 only licenses
// amortizing the scan across calls when successive target times are
// monotone in the scan direction; the worker queries per touched stop in
// pattern-position order, and boarding targets are derived independently
// per stop, so they are not guaranteed monotone across calls. Each Search
// call therefore scans from scratch.
type TripScheduleSearch interface {
	// Search returns the trip and its time at the given position that is
	// boardable (forward: departs no earlier than target) or alightable
	// (reverse: arrives no later than target), or ok=false if none
	// qualifies. position is the pattern position at which the rider
	// boards (forward) or alights (reverse).
	Search(position int, target int32) (trip TripRef, time int32, ok bool)
}

// boardingSearch is the forward TripScheduleSearch: among trips sorted by
// departure time, find the earliest trip departing at or after target.
type boardingSearch struct {
	pattern Pattern
	skip    func(TripRef) bool
}

func newBoardingSearch(pattern Pattern, skip func(TripRef) bool) TripScheduleSearch {
	return &boardingSearch{pattern: pattern, skip: skip}
}

func (b *boardingSearch) Search(position int, target int32) (TripRef, int32, bool) {
	n := b.pattern.NumTrips()
	for i := 0; i < n; i++ {
		trip := b.pattern.TripAt(i)
		if b.skip != nil && b.skip(trip) {
			continue
		}
		_, departure := b.pattern.TimesAtPosition(trip, position)
		if departure >= target {
			return trip, departure, true
		}
	}
	return NoTrip, 0, false
}

// alightingSearch is the reverse TripScheduleSearch: among trips sorted by
// departure time ascending, find the latest (highest-index) trip arriving
// at or before target, scanning from the end backward.
type alightingSearch struct {
	pattern Pattern
	skip    func(TripRef) bool
}

func newAlightingSearch(pattern Pattern, skip func(TripRef) bool) TripScheduleSearch {
	return &alightingSearch{pattern: pattern, skip: skip}
}

func (a *alightingSearch) Search(position int, target int32) (TripRef, int32, bool) {
	for i := a.pattern.NumTrips() - 1; i >= 0; i-- {
		trip := a.pattern.TripAt(i)
		if a.skip != nil && a.skip(trip) {
			continue
		}
		arrival, _ := a.pattern.TimesAtPosition(trip, position)
		if arrival <= target {
			return trip, arrival, true
		}
	}
	return NoTrip, 0, false
}
