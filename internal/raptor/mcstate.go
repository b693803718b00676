package raptor

// mcLabel is one element of a per-stop Pareto bag: a non-dominated
// (arrival time, generalized cost) pair plus enough back-pointer
// information to reconstruct the ride or transfer that produced it.
type mcLabel struct {
	time        int32
	cost        float64
	boardStop   Stop
	boardTime   int32
	trip        TripRef
	pattern     PatternID
	viaTransfer bool
	transferLeg TransferLeg
	prevRound   int
	prevLabel   int // index into the previous round's bag at boardStop
}

// mcDominates reports whether label a dominates label b under direction
// calc: a's time is no worse, a's cost is no worse, and at least one is
// strictly better.
func mcDominates(calc Calculator, a, b mcLabel) bool {
	timeNoWorse := a.time == b.time || calc.IsBetter(a.time, b.time)
	costNoWorse := a.cost <= b.cost
	strictlyBetter := (a.time != b.time && calc.IsBetter(a.time, b.time)) || a.cost < b.cost
	return timeNoWorse && costNoWorse && strictlyBetter
}

// mcInsert adds candidate to bag if not dominated by any existing label,
// removing any existing labels candidate dominates. Returns the updated
// bag and whether candidate was kept.
func mcInsert(calc Calculator, bag []mcLabel, candidate mcLabel) ([]mcLabel, bool) {
	for _, existing := range bag {
		if mcDominates(calc, existing, candidate) {
			return bag, false
		}
	}
	filtered := bag[:0]
	for _, existing := range bag {
		if !mcDominates(calc, candidate, existing) {
			filtered = append(filtered, existing)
		}
	}
	return append(filtered, candidate), true
}

// MultiCriterionState implements State tracking a Pareto bag of
// (arrival time, generalized cost) labels per stop per round. No ride or
// transfer adds to a label's cost, so every label keeps the seed's cost of
// zero and labels compete on arrival time alone; journeys with fewer
// transfers come from the per-round bags, as in SingleCriterionState.
type MultiCriterionState struct {
	calc     Calculator
	numStops int
	maxRound int

	bestKnown [][]mcLabel // Pareto bag across every round so far, per stop
	rounds    [][][]mcLabel // rounds[k][stop] is round k's bag at stop

	touchedByTransit  []*StopSet
	touchedByTransfer []*StopSet

	round            int
	currentDeparture int32

	snapshots []mcSnapshot
}

type mcSnapshot struct {
	departureTime int32
	rounds        [][][]mcLabel
}

// NewMultiCriterionState allocates Pareto-bag worker state for numStops
// stops and up to maxRound rounds.
func NewMultiCriterionState(calc Calculator, numStops, maxRound int) *MultiCriterionState {
	if maxRound > maxRounds {
		maxRound = maxRounds
	}
	s := &MultiCriterionState{
		calc:     calc,
		numStops: numStops,
		maxRound: maxRound,
	}
	s.bestKnown = make([][]mcLabel, numStops)
	s.rounds = make([][][]mcLabel, maxRound+1)
	for k := range s.rounds {
		s.rounds[k] = make([][]mcLabel, numStops)
	}
	s.touchedByTransit = make([]*StopSet, maxRound+1)
	s.touchedByTransfer = make([]*StopSet, maxRound+1)
	for k := range s.touchedByTransit {
		s.touchedByTransit[k] = NewStopSet(numStops)
		s.touchedByTransfer[k] = NewStopSet(numStops)
	}
	return s
}

func (s *MultiCriterionState) SetupIteration(departureTime int32) {
	s.round = 0
	s.currentDeparture = departureTime
	for k := range s.touchedByTransit {
		s.touchedByTransit[k].Clear()
		s.touchedByTransfer[k].Clear()
	}
	for k := range s.rounds {
		for stop := range s.rounds[k] {
			s.rounds[k][stop] = nil
		}
	}
	// bestKnown is not cleared: it is the cross-iteration Pareto-bag
	// target pruning Range-RAPTOR relies on across minutes, matching
	// SingleCriterionState's persistent bestKnown.
}

func (s *MultiCriterionState) SetInitialTimeForIteration(access TransferLeg, departureTime int32) {
	arrivalTime := departureTime + signedDuration(s.calc, access.Duration)
	stop := access.ToStop
	candidate := mcLabel{
		time:      arrivalTime,
		boardStop: access.FromStop,
		boardTime: departureTime,
		trip:      NoTrip,
		prevRound: -1,
	}
	updated, kept := mcInsert(s.calc, s.bestKnown[stop], candidate)
	if !kept {
		return
	}
	s.bestKnown[stop] = updated
	s.rounds[0][stop], _ = mcInsert(s.calc, s.rounds[0][stop], candidate)
	s.touchedByTransfer[0].Set(stop)
}

func (s *MultiCriterionState) IsNewRoundAvailable() bool {
	return s.touchedByTransit[s.round].Any() || s.touchedByTransfer[s.round].Any()
}

func (s *MultiCriterionState) PrepareForNextRound() { s.round++ }

func (s *MultiCriterionState) Round() int { return s.round }

func (s *MultiCriterionState) StopsTouchedPreviousRound() *StopSet {
	prev := s.round - 1
	if prev < 0 {
		prev = 0
	}
	merged := NewStopSet(s.numStops)
	merged.CopyFrom(s.touchedByTransit[prev])
	s.touchedByTransfer[prev].Iterate(func(stop Stop) { merged.Set(stop) })
	return merged
}

func (s *MultiCriterionState) StopsTouchedByTransitCurrentRound() *StopSet {
	return s.touchedByTransit[s.round]
}

// BestTimeAt returns the best arrival time across the stop's whole Pareto
// bag, for transfer-generation pruning that only cares about time.
func (s *MultiCriterionState) BestTimeAt(stop Stop) int32 {
	best := s.calc.UnreachedValue()
	for _, label := range s.bestKnown[stop] {
		if best == s.calc.UnreachedValue() || s.calc.IsBetter(label.time, best) {
			best = label.time
		}
	}
	return best
}

func (s *MultiCriterionState) PreviousRoundTimeAt(stop Stop) int32 {
	prev := s.round - 1
	if prev < 0 {
		return s.calc.UnreachedValue()
	}
	best := s.calc.UnreachedValue()
	for _, label := range s.rounds[prev][stop] {
		if best == s.calc.UnreachedValue() || s.calc.IsBetter(label.time, best) {
			best = label.time
		}
	}
	return best
}

func (s *MultiCriterionState) TransitStopReached(pattern PatternID, trip TripRef, boardStop Stop, boardTime int32, alightStop Stop, alightTime int32) bool {
	improved := false
	for prevIdx, prev := range s.rounds[s.round-1][boardStop] {
		candidate := mcLabel{
			time:      alightTime,
			cost:      prev.cost,
			boardStop: boardStop,
			boardTime: boardTime,
			trip:      trip,
			pattern:   pattern,
			prevRound: s.round - 1,
			prevLabel: prevIdx,
		}
		updated, kept := mcInsert(s.calc, s.bestKnown[alightStop], candidate)
		if !kept {
			continue
		}
		s.bestKnown[alightStop] = updated
		s.rounds[s.round][alightStop], _ = mcInsert(s.calc, s.rounds[s.round][alightStop], candidate)
		s.touchedByTransit[s.round].Set(alightStop)
		improved = true
	}
	return improved
}

func (s *MultiCriterionState) TransferToStops(fromStop Stop, legs []TransferLeg) {
	for labelIdx, fromLabel := range s.rounds[s.round][fromStop] {
		for _, leg := range legs {
			candidate := mcLabel{
				time:        fromLabel.time + signedDuration(s.calc, leg.Duration),
				cost:        fromLabel.cost,
				boardStop:   fromStop,
				boardTime:   fromLabel.time,
				trip:        NoTrip,
				viaTransfer: true,
				transferLeg: leg,
				prevRound:   s.round,
				prevLabel:   labelIdx,
			}
			updated, kept := mcInsert(s.calc, s.bestKnown[leg.ToStop], candidate)
			if !kept {
				continue
			}
			s.bestKnown[leg.ToStop] = updated
			s.rounds[s.round][leg.ToStop], _ = mcInsert(s.calc, s.rounds[s.round][leg.ToStop], candidate)
			s.touchedByTransfer[s.round].Set(leg.ToStop)
		}
	}
}

func (s *MultiCriterionState) TransitsForRoundComplete()  {}
func (s *MultiCriterionState) TransfersForRoundComplete() {}

func (s *MultiCriterionState) IterationComplete() {
	snap := mcSnapshot{departureTime: s.currentDeparture, rounds: make([][][]mcLabel, len(s.rounds))}
	for k := range s.rounds {
		snap.rounds[k] = make([][]mcLabel, len(s.rounds[k]))
		for stop := range s.rounds[k] {
			snap.rounds[k][stop] = append([]mcLabel(nil), s.rounds[k][stop]...)
		}
	}
	s.snapshots = append(s.snapshots, snap)
}

// ExtractPaths walks every label's back-pointer chain for every anchor
// leg, producing one Journey per surviving (non-dominated) label.
func (s *MultiCriterionState) ExtractPaths(egressLegs []TransferLeg, maxTransfers int) []Journey {
	var out []Journey
	seen := make(map[journeyKey]bool)

	for _, snap := range s.snapshots {
		for round := 0; round <= maxTransfers+1 && round < len(snap.rounds); round++ {
			for _, anchor := range egressLegs {
				stop := anchor.FromStop
				for _, label := range snap.rounds[round][stop] {
					journey := mcBuildJourney(snap.rounds, round, stop, label, anchor, s.calc)
					if journey == nil {
						continue
					}
					key := journeyKey{departure: journey.DepartureTime, arrival: journey.ArrivalTime, transfers: journey.NumberOfTransfers}
					if seen[key] {
						continue
					}
					seen[key] = true
					out = append(out, *journey)
				}
			}
		}
	}
	return paretoFilter(out, s.calc)
}

func mcBuildJourney(rounds [][][]mcLabel, round int, stop Stop, label mcLabel, anchorLeg TransferLeg, calc Calculator) *Journey {
	anchorTime := label.time

	var legs []Leg
	var internalAccess TransferLeg
	var seedMinute int32

	curRound, curStop, cur := round, stop, label
	for {
		if cur.viaTransfer {
			curStop = cur.boardStop
			cur = rounds[curRound][curStop][cur.prevLabel]
			continue
		}
		if cur.prevRound < 0 {
			internalAccess = TransferLeg{FromStop: cur.boardStop, ToStop: curStop, Duration: absDiff(cur.time, cur.boardTime)}
			seedMinute = cur.boardTime
			break
		}
		legs = append(legs, Leg{
			BoardStop:  cur.boardStop,
			BoardTime:  cur.boardTime,
			AlightStop: curStop,
			AlightTime: cur.time,
			Trip:       cur.trip,
			Pattern:    cur.pattern,
		})
		prevRound, prevLabel := cur.prevRound, cur.prevLabel
		curStop = cur.boardStop
		curRound = prevRound
		cur = rounds[curRound][curStop][prevLabel]
	}

	if calc.Direction() == Forward {
		reverseLegs(legs)
	}

	var access, egress TransferLeg
	var depTime, arrTime int32
	if calc.Direction() == Forward {
		access = internalAccess
		egress = anchorLeg
		depTime = seedMinute
		arrTime = anchorTime + anchorLeg.Duration
	} else {
		access = flip(anchorLeg)
		egress = flip(internalAccess)
		arrTime = seedMinute
		depTime = anchorTime - anchorLeg.Duration
	}

	return &Journey{
		Access:            access,
		Legs:              legs,
		Egress:            egress,
		DepartureTime:     depTime,
		ArrivalTime:       arrTime,
		Duration:          absDiff(arrTime, depTime),
		NumberOfTransfers: numTransfers(legs),
		GeneralizedCost:   label.cost,
	}
}
