package raptor

// Pattern is the read-only view of a stop sequence shared by a set of
// trips. Positions are [0, Len()).
type Pattern interface {
	ID() PatternID
	Len() int
	StopAt(position int) Stop

	// NumTrips returns the number of scheduled trips on this pattern.
	NumTrips() int
	// TripAt returns the trip handle at the given index, in an order the
	// provider guarantees is stable and, for the forward direction, sorted
	// by departure time at position 0 (sorted by arrival time at the last
	// position for a reverse-friendly provider). TripScheduleSearch relies
	// on this ordering for its in-order scan.
	TripAt(index int) TripRef
	// TimesAtPosition returns the (arrival, departure) times of the given
	// trip at the given pattern position.
	TimesAtPosition(trip TripRef, position int) (arrival, departure int32)
}

// Provider is the Timetable Data Provider contract (C1): read-only access
// to patterns, trips, transfers, and the service calendar for one search
// day. All iterators it returns are single-pass and are only valid until
// the next call into the Provider.
type Provider interface {
	// Init is called once per search, before the minute loop starts. It
	// gives the provider a chance to precompute service masks or load data
	// from a backing store; it never blocks again for the remainder of the
	// search.
	Init() error

	// NumStops returns the number of stops, defining the valid range for
	// every Stop value the provider or caller produces.
	NumStops() int

	// IsTripInService reports whether a trip runs on the search day.
	IsTripInService(trip TripRef) bool

	// PatternsForStops yields, without duplicates, every pattern visiting
	// at least one stop in the given set. Order is unspecified but stable
	// within one call.
	PatternsForStops(stops *StopSet) PatternIterator

	// TransfersFrom yields every outgoing transfer leg from the given
	// stop.
	TransfersFrom(stop Stop) TransferIterator
}

// PatternIterator is a single-pass cursor over patterns.
type PatternIterator interface {
	// Next advances the cursor and reports whether a pattern is available.
	Next() bool
	// Pattern returns the pattern at the cursor. Valid only after a Next
	// call that returned true, and only until the next Next call.
	Pattern() Pattern
}

// TransferIterator is a single-pass cursor over transfer legs.
type TransferIterator interface {
	Next() bool
	Leg() TransferLeg
}
