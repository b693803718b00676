package raptor

// This file exposes package-internal pieces to the external raptor_test
// test package, purely so property_test.go can drive individual search
// rounds and inspect per-iteration snapshots without importing
// memtimetable into package raptor itself (which would create an import
// cycle, since memtimetable already imports raptor).

// NewTestWorker builds a Worker directly from ctx and state, as NewWorker
// does, for tests that need to run rounds individually.
func NewTestWorker(ctx *SearchContext, state State) *Worker {
	return &Worker{ctx: ctx, state: state}
}

// RunTransitRoundForTest runs one transit round via the Worker's internal
// step.
func (w *Worker) RunTransitRoundForTest(provider Provider, calc Calculator) error {
	return w.runTransitRound(provider, calc)
}

// RunTransferRoundForTest runs one transfer round via the Worker's
// internal step.
func (w *Worker) RunTransferRoundForTest(provider Provider, calc Calculator) {
	w.runTransferRound(provider, calc)
}

// BestAtMinuteForTest reports the best arrival at destination across all
// rounds of the iteration snapshot taken for the given departure minute.
func (s *SingleCriterionState) BestAtMinuteForTest(minute int32, destination Stop, calc Calculator) (int32, bool) {
	best := calc.UnreachedValue()
	found := false
	for _, snap := range s.snapshots {
		if snap.departureTime != minute {
			continue
		}
		for round := range snap.rounds {
			a := snap.rounds[round][destination]
			if a.reached && (!found || calc.IsBetter(a.time, best)) {
				best, found = a.time, true
			}
		}
	}
	return best, found
}
