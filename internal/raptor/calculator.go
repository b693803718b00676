package raptor

// Calculator encapsulates every operation whose meaning depends on search
// direction, so the Worker's loop body stays direction-agnostic. A Worker
// is specialized by direction at construction time rather than dispatching
// virtually inside the per-stop inner loop.
type Calculator interface {
	Direction() Direction

	// Minutes returns the ordered sequence of range-raptor minutes to run
	// over the closed interval [earliest, latest], latest-first for
	// forward search (so later minutes' state can be reused by earlier
	// ones) and earliest-first for reverse search.
	Minutes(earliest, latest int32) []int32

	// IsBetter reports whether candidate improves on current: a < current
	// for forward search, a > current for reverse search.
	IsBetter(candidate, current int32) bool

	// PositionRange returns the ordered sequence of positions to visit
	// within a pattern of the given length: 0..L-1 for forward, L-1..0 for
	// reverse.
	PositionRange(length int) []int

	// BoardingTime derives the earliest time at which a rider standing at
	// stopArrival may board (forward) or the latest time by which they
	// must alight (reverse), given the configured slack.
	BoardingTime(stopArrival int32, boardSlack, alightSlack int32) int32

	// UnreachedValue is the sentinel "not yet reached" value for this
	// direction: +infinity forward, -infinity reverse.
	UnreachedValue() int32

	// NewTripSearch constructs a fresh TripScheduleSearch over pattern,
	// skipping any trip for which skip returns true.
	NewTripSearch(pattern Pattern, skip func(TripRef) bool) TripScheduleSearch
}

// forwardCalculator implements Calculator for departure-time search:
// board the earliest trip no earlier than the boarding time, walk pattern
// positions left to right, and scan range-raptor minutes from latest to
// earliest so later-minute state is already in place when an earlier
// minute runs.
type forwardCalculator struct{}

// NewForwardCalculator returns the Calculator for arrival-time-minimizing
// forward search.
func NewForwardCalculator() Calculator { return forwardCalculator{} }

func (forwardCalculator) Direction() Direction { return Forward }

func (forwardCalculator) Minutes(earliest, latest int32) []int32 {
	n := int((latest-earliest)/60) + 1
	if n < 1 {
		n = 1
	}
	minutes := make([]int32, n)
	for i := range minutes {
		minutes[i] = latest - int32(i)*60
	}
	return minutes
}

func (forwardCalculator) IsBetter(candidate, current int32) bool { return candidate < current }

func (forwardCalculator) PositionRange(length int) []int {
	positions := make([]int, length)
	for i := range positions {
		positions[i] = i
	}
	return positions
}

func (forwardCalculator) BoardingTime(stopArrival int32, boardSlack, _ int32) int32 {
	return stopArrival + boardSlack
}

func (forwardCalculator) UnreachedValue() int32 { return UnreachedTime }

func (forwardCalculator) NewTripSearch(pattern Pattern, skip func(TripRef) bool) TripScheduleSearch {
	return newBoardingSearch(pattern, skip)
}

// reverseCalculator implements Calculator for arrival-time search: alight
// the latest trip no later than the target time, walk pattern positions
// right to left, and scan range-raptor minutes from earliest to latest.
type reverseCalculator struct{}

// NewReverseCalculator returns the Calculator for departure-time-maximizing
// reverse search.
func NewReverseCalculator() Calculator { return reverseCalculator{} }

func (reverseCalculator) Direction() Direction { return Reverse }

func (reverseCalculator) Minutes(earliest, latest int32) []int32 {
	n := int((latest-earliest)/60) + 1
	if n < 1 {
		n = 1
	}
	minutes := make([]int32, n)
	for i := range minutes {
		minutes[i] = earliest + int32(i)*60
	}
	return minutes
}

func (reverseCalculator) IsBetter(candidate, current int32) bool { return candidate > current }

func (reverseCalculator) PositionRange(length int) []int {
	positions := make([]int, length)
	for i := range positions {
		positions[i] = length - 1 - i
	}
	return positions
}

func (reverseCalculator) BoardingTime(stopArrival int32, _ int32, alightSlack int32) int32 {
	return stopArrival - alightSlack
}

func (reverseCalculator) UnreachedValue() int32 { return UnreachedTimeReverse }

func (reverseCalculator) NewTripSearch(pattern Pattern, skip func(TripRef) bool) TripScheduleSearch {
	return newAlightingSearch(pattern, skip)
}
