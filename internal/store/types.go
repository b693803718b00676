package store

// StopRecord is one stop's identity and location.
type StopRecord struct {
	ID  int
	Lat float64
	Lon float64
}

// PatternRecord is an ordered sequence of stops shared by every trip that
// follows it.
type PatternRecord struct {
	ID    int
	Stops []int
}

// TripRecord is one scheduled run of a pattern, with per-position arrival
// and departure times in seconds since midnight.
type TripRecord struct {
	ID         int
	PatternID  int
	InService  bool
	Arrivals   []int32
	Departures []int32
}

// TransferRecord is a walking connection between two stops.
type TransferRecord struct {
	FromStop int
	ToStop   int
	Duration int32
}

// TimetableData is the full contents of a timetable, independent of
// whatever format produced or will consume it: a SQLite database, a
// compressed snapshot, or an in-memory build.
type TimetableData struct {
	Stops     []StopRecord
	Patterns  []PatternRecord
	Trips     []TripRecord
	Transfers []TransferRecord
}
