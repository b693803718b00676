package raptor

// arrival is one per-round, per-stop record: enough to reconstruct the
// journey segment that produced it.
type arrival struct {
	reached     bool
	time        int32
	boardStop   Stop
	boardTime   int32
	trip        TripRef
	pattern     PatternID
	viaTransfer bool
	transferLeg TransferLeg
	prevRound   int // round whose arrival at boardStop this chains to; -1 for the access round
}

// State is the Worker State contract (C4): per-round best arrivals per
// stop, back-pointers, touched-stop sets, and the iteration lifecycle the
// Range-RAPTOR outer loop drives. SingleCriterionState and
// MultiCriterionState are two independent implementations of this
// interface, not a subclass relationship.
type State interface {
	// SetupIteration begins a new outer-loop minute. It does not clear the
	// best-known arrivals carried from later minutes (Range-RAPTOR reuse);
	// it resets the round counter, the touched sets and the per-round
	// arrival records, which IterationComplete has already copied.
	SetupIteration(departureTime int32)

	// SetInitialTimeForIteration seeds round 0 with an access leg's
	// arrival at its destination stop for the given minute.
	SetInitialTimeForIteration(access TransferLeg, departureTime int32)

	// IsNewRoundAvailable reports whether the previous round touched any
	// stops by transit or transfer.
	IsNewRoundAvailable() bool

	// PrepareForNextRound advances the round counter and rotates the
	// touched-stop sets.
	PrepareForNextRound()

	// Round returns the current round counter (0 is the access round).
	Round() int

	// StopsTouchedPreviousRound yields stops whose arrival improved in the
	// round before the current one.
	StopsTouchedPreviousRound() *StopSet

	// StopsTouchedByTransitCurrentRound yields stops improved by transit
	// in the current round, driving transfer relaxation.
	StopsTouchedByTransitCurrentRound() *StopSet

	// BestTimeAt returns the best known arrival at stop across every
	// round completed so far, or the direction's UnreachedValue.
	BestTimeAt(stop Stop) int32

	// PreviousRoundTimeAt returns the arrival at stop as of the end of
	// the round before the current one (τ_{k-1}(stop)), or the
	// direction's UnreachedValue. Boarding must derive from this, not
	// BestTimeAt, since a round-k transit improvement to stop must not
	// be visible to a later pattern's boarding search within the same
	// round k.
	PreviousRoundTimeAt(stop Stop) int32

	// TransitStopReached attempts to improve the current round's arrival
	// at alightStop via a ride that boarded at boardStop. Returns true if
	// the arrival improved and a back-pointer was recorded.
	TransitStopReached(pattern PatternID, trip TripRef, boardStop Stop, boardTime int32, alightStop Stop, alightTime int32) bool

	// TransferToStops relaxes every transfer leg in legs starting at
	// fromStop, improving arrivals at each leg's destination.
	TransferToStops(fromStop Stop, legs []TransferLeg)

	// TransitsForRoundComplete and TransfersForRoundComplete are
	// bookkeeping hooks called after each half of a round.
	TransitsForRoundComplete()
	TransfersForRoundComplete()

	// IterationComplete is called once the round loop for the current
	// minute terminates. Implementations make defensive copies of
	// anything the next iteration's SetupIteration would otherwise
	// overwrite but which ExtractPaths will still need.
	IterationComplete()

	// ExtractPaths returns the unified, de-duplicated Pareto set of
	// journeys discovered across every iteration run so far, one per
	// egress leg whose FromStop was reached.
	ExtractPaths(egressLegs []TransferLeg, maxTransfers int) []Journey
}

const maxRounds = 64 // hard ceiling; Worker also enforces max_transfers+1

// SingleCriterionState implements State tracking, per stop, the single
// best arrival time across all rounds ("best known") plus a bounded
// history of per-round arrivals used for path reconstruction.
type SingleCriterionState struct {
	calc     Calculator
	numStops int
	maxRound int

	bestKnown []int32 // best arrival at stop across every round so far

	// rounds[k][stop] is the arrival record for round k. Sized maxRound+1.
	rounds [][]arrival

	touchedByTransit  []*StopSet // per round
	touchedByTransfer []*StopSet // per round

	round            int
	currentDeparture int32

	// snapshots accumulates, per iteration, the rounds data needed by
	// ExtractPaths, since later SetupIteration calls clear rounds in place.
	snapshots []iterationSnapshot
}

type iterationSnapshot struct {
	departureTime int32
	rounds        [][]arrival
}

// NewSingleCriterionState allocates worker state for numStops stops and up
// to maxRound rounds (max_transfers + 1).
func NewSingleCriterionState(calc Calculator, numStops, maxRound int) *SingleCriterionState {
	if maxRound > maxRounds {
		maxRound = maxRounds
	}
	s := &SingleCriterionState{
		calc:     calc,
		numStops: numStops,
		maxRound: maxRound,
	}
	s.bestKnown = make([]int32, numStops)
	s.rounds = make([][]arrival, maxRound+1)
	for k := range s.rounds {
		s.rounds[k] = make([]arrival, numStops)
	}
	s.touchedByTransit = make([]*StopSet, maxRound+1)
	s.touchedByTransfer = make([]*StopSet, maxRound+1)
	for k := range s.touchedByTransit {
		s.touchedByTransit[k] = NewStopSet(numStops)
		s.touchedByTransfer[k] = NewStopSet(numStops)
	}
	unreached := calc.UnreachedValue()
	for i := range s.bestKnown {
		s.bestKnown[i] = unreached
	}
	return s
}

func (s *SingleCriterionState) SetupIteration(departureTime int32) {
	s.round = 0
	s.currentDeparture = departureTime
	for k := range s.touchedByTransit {
		s.touchedByTransit[k].Clear()
		s.touchedByTransfer[k].Clear()
	}
	for k := range s.rounds {
		round := s.rounds[k]
		for i := range round {
			round[i] = arrival{}
		}
	}
}

func (s *SingleCriterionState) SetInitialTimeForIteration(access TransferLeg, departureTime int32) {
	arrivalTime := departureTime + signedDuration(s.calc, access.Duration)
	stop := access.ToStop
	if s.improve(0, stop, arrivalTime) {
		s.rounds[0][stop] = arrival{
			reached:   true,
			time:      arrivalTime,
			boardStop: access.FromStop,
			boardTime: departureTime,
			trip:      NoTrip,
			prevRound: -1,
		}
		s.touchedByTransfer[0].Set(stop)
	}
}

// signedDuration applies the direction's sign convention to a transfer
// duration: added to the departure time going forward, subtracted going
// backward in time for reverse search.
func signedDuration(calc Calculator, duration int32) int32 {
	if calc.Direction() == Reverse {
		return -duration
	}
	return duration
}

func (s *SingleCriterionState) IsNewRoundAvailable() bool {
	return s.touchedByTransit[s.round].Any() || s.touchedByTransfer[s.round].Any()
}

func (s *SingleCriterionState) PrepareForNextRound() {
	s.round++
}

func (s *SingleCriterionState) Round() int { return s.round }

func (s *SingleCriterionState) StopsTouchedPreviousRound() *StopSet {
	prev := s.round - 1
	if prev < 0 {
		prev = 0
	}
	merged := NewStopSet(s.numStops)
	merged.CopyFrom(s.touchedByTransit[prev])
	s.touchedByTransfer[prev].Iterate(func(stop Stop) { merged.Set(stop) })
	return merged
}

func (s *SingleCriterionState) StopsTouchedByTransitCurrentRound() *StopSet {
	return s.touchedByTransit[s.round]
}

func (s *SingleCriterionState) BestTimeAt(stop Stop) int32 {
	return s.bestKnown[stop]
}

func (s *SingleCriterionState) PreviousRoundTimeAt(stop Stop) int32 {
	prev := s.round - 1
	if prev < 0 {
		return s.calc.UnreachedValue()
	}
	rec := s.rounds[prev][stop]
	if !rec.reached {
		return s.calc.UnreachedValue()
	}
	return rec.time
}

// improve applies the RAPTOR target-pruning rule: candidate must beat both
// the existing round-k entry and the best-known arrival across all earlier
// rounds. Returns true and updates bestKnown iff it wins.
func (s *SingleCriterionState) improve(round int, stop Stop, candidate int32) bool {
	if !s.calc.IsBetter(candidate, s.rounds[round][stop].time) && s.rounds[round][stop].reached {
		return false
	}
	if !s.calc.IsBetter(candidate, s.bestKnown[stop]) {
		return false
	}
	s.bestKnown[stop] = candidate
	return true
}

func (s *SingleCriterionState) TransitStopReached(pattern PatternID, trip TripRef, boardStop Stop, boardTime int32, alightStop Stop, alightTime int32) bool {
	if !s.improve(s.round, alightStop, alightTime) {
		return false
	}
	s.rounds[s.round][alightStop] = arrival{
		reached:   true,
		time:      alightTime,
		boardStop: boardStop,
		boardTime: boardTime,
		trip:      trip,
		pattern:   pattern,
		prevRound: s.round - 1,
	}
	s.touchedByTransit[s.round].Set(alightStop)
	return true
}

func (s *SingleCriterionState) TransferToStops(fromStop Stop, legs []TransferLeg) {
	fromTime := s.rounds[s.round][fromStop].time
	for _, leg := range legs {
		candidate := fromTime + signedDuration(s.calc, leg.Duration)
		if !s.improve(s.round, leg.ToStop, candidate) {
			continue
		}
		s.rounds[s.round][leg.ToStop] = arrival{
			reached:     true,
			time:        candidate,
			boardStop:   fromStop,
			boardTime:   fromTime,
			trip:        NoTrip,
			viaTransfer: true,
			transferLeg: leg,
			prevRound:   s.round,
		}
		s.touchedByTransfer[s.round].Set(leg.ToStop)
	}
}

func (s *SingleCriterionState) TransitsForRoundComplete()  {}
func (s *SingleCriterionState) TransfersForRoundComplete() {}

func (s *SingleCriterionState) IterationComplete() {
	snap := iterationSnapshot{departureTime: s.currentDeparture, rounds: make([][]arrival, len(s.rounds))}
	for k := range s.rounds {
		snap.rounds[k] = append([]arrival(nil), s.rounds[k]...)
	}
	s.snapshots = append(s.snapshots, snap)
}

// ExtractPaths walks back-pointers from each egress leg's origin stop,
// across every recorded iteration and round, producing the unified,
// de-duplicated Pareto set. The walk itself lives in extractJourneys
// (path.go); MultiCriterionState has its own walk over label bags.
func (s *SingleCriterionState) ExtractPaths(egressLegs []TransferLeg, maxTransfers int) []Journey {
	return extractJourneys(s.snapshots, s.calc, egressLegs, maxTransfers)
}

// MaxRound returns the configured round ceiling (max_transfers + 1).
func (s *SingleCriterionState) MaxRound() int { return s.maxRound }

// NumStops returns the number of stops this state was sized for.
func (s *SingleCriterionState) NumStops() int { return s.numStops }
