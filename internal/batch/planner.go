// Package batch runs many journey searches against one timetable at a
// rate the caller controls (C12), for offline OD-matrix generation and
// load testing without overwhelming a shared Provider.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/time/rate"

	"raptorplanner.dev/internal/clock"
	"raptorplanner.dev/internal/raptor"
)

// Query is one origin-destination search to run.
type Query struct {
	AccessLegs        []raptor.TransferLeg
	EgressLegs        []raptor.TransferLeg
	EarliestDeparture int32
	LatestDeparture   int32
	Direction         raptor.Direction
	Criteria          raptor.Criteria
}

// Result is one Query's outcome, carrying its original index so callers
// can match results back to queries regardless of completion order.
type Result struct {
	Index       int
	Journeys    []raptor.Journey
	Err         error
	RequestedAt int64 // Unix milliseconds, from the Planner's Clock
}

// Planner dispatches Queries against Provider at a bounded rate, fanned
// out across a worker per CPU.
type Planner struct {
	Provider raptor.Provider
	Tuning   raptor.Tuning
	Limiter  *rate.Limiter
	Clock    clock.Clock
	Workers  int
}

// NewPlanner builds a Planner limited to requestsPerSecond dispatches,
// allowing a burst of burst queued at once, with one worker per available
// CPU.
func NewPlanner(provider raptor.Provider, tuning raptor.Tuning, requestsPerSecond float64, burst int) *Planner {
	return &Planner{
		Provider: provider,
		Tuning:   tuning,
		Limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		Clock:    clock.RealClock{},
		Workers:  runtime.NumCPU(),
	}
}

// Run dispatches every query in queries, respecting the Planner's rate
// limit, and returns one Result per query in the same order regardless of
// which worker finished it first. A query whose dispatch is cancelled by
// ctx gets a Result carrying ctx's error rather than being dropped.
func (p *Planner) Run(ctx context.Context, queries []Query) ([]Result, error) {
	results := make([]Result, len(queries))
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.runOne(ctx, idx, queries[idx])
			}
		}()
	}

	for i := range queries {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = Result{Index: i, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	return results, ctx.Err()
}

func (p *Planner) runOne(ctx context.Context, idx int, q Query) Result {
	if err := p.Limiter.Wait(ctx); err != nil {
		// Wait fails before ctx ends when the next token lies past ctx's
		// deadline; hold the query until then so its Result carries
		// ctx's error, as for a query cancelled outright.
		if _, ok := ctx.Deadline(); ok {
			<-ctx.Done()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Index: idx, Err: ctxErr}
		}
		return Result{Index: idx, Err: err}
	}

	req := raptor.Request{
		AccessLegs:        q.AccessLegs,
		EgressLegs:        q.EgressLegs,
		EarliestDeparture: q.EarliestDeparture,
		LatestDeparture:   q.LatestDeparture,
		Direction:         q.Direction,
		Criteria:          q.Criteria,
	}

	searchCtx, err := raptor.NewSearchContext(req, p.Tuning, p.Provider, raptor.NewNoopTimer())
	if err != nil {
		return Result{Index: idx, Err: fmt.Errorf("query %d: %w", idx, err), RequestedAt: p.Clock.NowUnixMilli()}
	}

	maxRound := p.Tuning.MaxNumberOfTransfers + 1
	var state raptor.State
	if q.Criteria == raptor.Pareto {
		state = raptor.NewMultiCriterionState(searchCtx.Calc, p.Provider.NumStops(), maxRound)
	} else {
		state = raptor.NewSingleCriterionState(searchCtx.Calc, p.Provider.NumStops(), maxRound)
	}

	journeys, err := raptor.NewWorker(searchCtx, state).Run(ctx)
	return Result{Index: idx, Journeys: journeys, Err: err, RequestedAt: p.Clock.NowUnixMilli()}
}
