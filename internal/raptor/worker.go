package raptor

import (
	"context"
	"fmt"
)

// Worker is the Range-RAPTOR Worker (C5): it drives the outer minute
// loop and the round loop, pulling patterns and transfers from the
// Provider via the Calculator, invoking the TripScheduleSearch per
// pattern, and updating State after every boarding and every transfer.
// A Worker is specialized by direction at construction (via
// SearchContext.Calc) rather than branching inside the hot loop.
type Worker struct {
	ctx   *SearchContext
	state State
}

// NewWorker builds a Worker bound to ctx and state. state must be sized
// for ctx.Provider.NumStops() and ctx.Tuning.MaxNumberOfTransfers+1
// rounds.
func NewWorker(ctx *SearchContext, state State) *Worker {
	return &Worker{ctx: ctx, state: state}
}

// Run sweeps every range-raptor minute in the request's departure
// window, running the round loop at each, and returns the unified
// Pareto set of journeys. runCtx is checked at minute-loop and
// round-loop boundaries so callers can cancel a long-running batch.
func (w *Worker) Run(runCtx context.Context) ([]Journey, error) {
	calc := w.ctx.Calc
	provider := w.ctx.Provider
	if err := provider.Init(); err != nil {
		return nil, err
	}
	maxRound := w.ctx.Tuning.MaxNumberOfTransfers + 1
	seedLegs := w.ctx.seedLegs()
	anchorLegs := w.ctx.anchorLegs()

	minutes := calc.Minutes(w.ctx.Request.EarliestDeparture, w.ctx.Request.LatestDeparture)
	minutesIterated := 0

	for _, minute := range minutes {
		if err := runCtx.Err(); err != nil {
			return nil, err
		}
		w.ctx.Timer.MinuteStarted(minute)
		minutesIterated++

		w.state.SetupIteration(minute)
		for _, access := range seedLegs {
			w.state.SetInitialTimeForIteration(access, minute)
		}

		for w.state.Round() < maxRound && w.state.IsNewRoundAvailable() {
			if err := runCtx.Err(); err != nil {
				return nil, err
			}
			w.state.PrepareForNextRound()
			if err := w.runTransitRound(provider, calc); err != nil {
				return nil, err
			}
			w.state.TransitsForRoundComplete()
			w.runTransferRound(provider, calc)
			w.state.TransfersForRoundComplete()
			w.ctx.Timer.RoundCompleted(w.state.Round(), w.state.StopsTouchedByTransitCurrentRound().Len())
		}

		w.state.IterationComplete()
	}

	w.ctx.Timer.SearchCompleted(minutesIterated)
	return w.state.ExtractPaths(anchorLegs, w.ctx.Tuning.MaxNumberOfTransfers), nil
}

// runTransitRound implements §4.5's run_transit_round: for every pattern
// touching a stop improved in the previous round, ride it through every
// position in direction-appropriate order, boarding or re-boarding at
// any touched stop along the way.
func (w *Worker) runTransitRound(provider Provider, calc Calculator) error {
	touched := w.state.StopsTouchedPreviousRound()
	skip := func(trip TripRef) bool { return !provider.IsTripInService(trip) }

	patterns := provider.PatternsForStops(touched)
	for patterns.Next() {
		pattern := patterns.Pattern()
		search := calc.NewTripSearch(pattern, skip)

		boardedTrip := NoTrip
		var boardedStop Stop
		var boardedTime int32

		for _, position := range calc.PositionRange(pattern.Len()) {
			stop := pattern.StopAt(position)

			if boardedTrip != NoTrip {
				arrival, departure := pattern.TimesAtPosition(boardedTrip, position)
				if arrival > departure {
					return &ProviderError{Op: "TimesAtPosition", Err: fmt.Errorf("trip %d: arrival %d after departure %d at position %d", boardedTrip, arrival, departure, position)}
				}
				improveTime := arrival
				if calc.Direction() == Reverse {
					improveTime = departure
				}
				w.state.TransitStopReached(pattern.ID(), boardedTrip, boardedStop, boardedTime, stop, improveTime)
			}

			if !touched.IsSet(stop) {
				continue
			}
			boardTime := calc.BoardingTime(w.state.PreviousRoundTimeAt(stop), w.ctx.Tuning.BoardSlackSeconds, w.ctx.Tuning.AlightSlackSeconds)
			trip, availTime, ok := search.Search(position, boardTime)
			if !ok {
				continue
			}
			if boardedTrip != NoTrip {
				ownArrival, ownDeparture := pattern.TimesAtPosition(boardedTrip, position)
				// availTime is the candidate's departure (forward) or
				// arrival (reverse); compare like-for-like against the
				// held trip's same half, not the other one, since
				// arrival <= departure whenever a trip has dwell.
				ownTime := ownDeparture
				if calc.Direction() == Reverse {
					ownTime = ownArrival
				}
				if !calc.IsBetter(availTime, ownTime) {
					continue
				}
			}
			boardedTrip = trip
			boardedStop = stop
			boardedTime = availTime
		}
	}
	return nil
}

// runTransferRound implements §4.5's run_transfer_round: relax every
// outgoing transfer from each stop touched by transit this round.
// Transfers do not compound within a round.
func (w *Worker) runTransferRound(provider Provider, calc Calculator) {
	touchedByTransit := w.state.StopsTouchedByTransitCurrentRound()
	touchedByTransit.Iterate(func(stop Stop) {
		var legs []TransferLeg
		it := provider.TransfersFrom(stop)
		for it.Next() {
			legs = append(legs, it.Leg())
		}
		if len(legs) == 0 {
			return
		}
		w.state.TransferToStops(stop, legs)
	})
}
