package raptor

import "sort"

// extractJourneys is the Path Extractor (C6): it walks back-pointers from
// each anchor leg's origin stop, across every recorded iteration and
// round, and returns the unified, de-duplicated Pareto set of journeys.
// SingleCriterionState calls into this walk; MultiCriterionState walks its
// label bags with mcBuildJourney and shares journeyKey and paretoFilter.
// Round k holds journeys with k rides (k-1 transfers), so rounds up to
// maxTransfers+1 are read.
//
// anchorLegs are in the search's internal orientation: for forward search
// these are the caller's real egress legs; for reverse search the Worker
// passes the caller's real access legs with FromStop/ToStop swapped, so
// round 0 is always "the seed" and increasing rounds always move away from
// it, regardless of direction. buildJourney undoes that swap when
// direction is Reverse so the returned Journey always names the real
// access and egress legs.
func extractJourneys(snapshots []iterationSnapshot, calc Calculator, anchorLegs []TransferLeg, maxTransfers int) []Journey {
	var out []Journey
	seen := make(map[journeyKey]bool)

	for _, snap := range snapshots {
		for round := 0; round <= maxTransfers+1 && round < len(snap.rounds); round++ {
			for _, anchor := range anchorLegs {
				stop := anchor.FromStop
				a := snap.rounds[round][stop]
				if !a.reached {
					continue
				}
				journey := buildJourney(snap.rounds, round, stop, a, anchor, calc)
				if journey == nil {
					continue
				}
				key := journeyKey{
					departure: journey.DepartureTime,
					arrival:   journey.ArrivalTime,
					transfers: journey.NumberOfTransfers,
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, *journey)
			}
		}
	}

	return paretoFilter(out, calc)
}

type journeyKey struct {
	departure int32
	arrival   int32
	transfers int
}

// flip swaps a TransferLeg's endpoints; used to translate between a real
// access/egress leg and its internal-orientation counterpart for reverse
// search.
func flip(leg TransferLeg) TransferLeg {
	return TransferLeg{FromStop: leg.ToStop, ToStop: leg.FromStop, Duration: leg.Duration}
}

// buildJourney walks the back-pointer chain from (round, stop) down to
// round 0 (the seed), accumulating ride Legs, then assembles a Journey
// with real-world access/egress legs and wall-clock departure/arrival
// times regardless of search direction.
func buildJourney(rounds [][]arrival, round int, stop Stop, a arrival, anchorLeg TransferLeg, calc Calculator) *Journey {
	anchorTime := a.time

	var legs []Leg
	var internalAccess TransferLeg
	var seedMinute int32

	curRound, curStop, cur := round, stop, a
	for {
		if cur.viaTransfer {
			curStop = cur.boardStop
			cur = rounds[curRound][curStop]
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
		curRound = cur.prevRound
		curStop = cur.boardStop
		cur = rounds[curRound][curStop]
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
	}
}

func numTransfers(legs []Leg) int {
	if len(legs) == 0 {
		return 0
	}
	return len(legs) - 1
}

func reverseLegs(legs []Leg) {
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
}

func absDiff(a, b int32) int32 {
	if a >= b {
		return a - b
	}
	return b - a
}

// paretoFilter discards any journey dominated (componentwise no worse in
// arrival time and transfers, strictly better in at least one) by another
// journey in the result set.
func paretoFilter(journeys []Journey, calc Calculator) []Journey {
	sort.Slice(journeys, func(i, j int) bool {
		return journeys[i].NumberOfTransfers < journeys[j].NumberOfTransfers
	})

	var kept []Journey
	for _, j := range journeys {
		dominated := false
		for _, k := range kept {
			if dominates(k, j, calc) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		filtered := kept[:0]
		for _, k := range kept {
			if !dominates(j, k, calc) {
				filtered = append(filtered, k)
			}
		}
		kept = append(filtered, j)
	}
	return kept
}

// dominates reports whether a dominates b: a's arrival is no worse and a's
// transfer count is no worse, with at least one strictly better.
func dominates(a, b Journey, calc Calculator) bool {
	arrivalNoWorse := a.ArrivalTime == b.ArrivalTime || calc.IsBetter(a.ArrivalTime, b.ArrivalTime)
	transfersNoWorse := a.NumberOfTransfers <= b.NumberOfTransfers
	strictlyBetter := (a.ArrivalTime != b.ArrivalTime && calc.IsBetter(a.ArrivalTime, b.ArrivalTime)) ||
		a.NumberOfTransfers < b.NumberOfTransfers
	return arrivalNoWorse && transfersNoWorse && strictlyBetter
}
