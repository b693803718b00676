package raptor

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request is the public search request shape (§6): access and egress
// legs, the departure/arrival window to sweep, and which Calculator and
// State variant to run.
type Request struct {
	AccessLegs        []TransferLeg `validate:"required,min=1,dive"`
	EgressLegs        []TransferLeg `validate:"required,min=1,dive"`
	EarliestDeparture int32         `validate:"gte=0"`
	LatestDeparture   int32         `validate:"gtefield=EarliestDeparture"`
	Direction         Direction
	Criteria          Criteria
}

// Tuning holds the parameters that shape the search without changing its
// input or output contract (§6, §4.13's documented defaults).
type Tuning struct {
	MaxNumberOfTransfers int   `yaml:"max_number_of_transfers" validate:"gte=0"`
	BoardSlackSeconds    int32 `yaml:"board_slack_seconds" validate:"gte=0"`
	AlightSlackSeconds   int32 `yaml:"alight_slack_seconds" validate:"gte=0"`
}

// DefaultTuning returns the documented fallback tuning for a zero-value
// Config (§4.13).
func DefaultTuning() Tuning {
	return Tuning{
		MaxNumberOfTransfers: 12,
		BoardSlackSeconds:    60,
		AlightSlackSeconds:   0,
	}
}

// SearchContext is the immutable bundle a Worker holds for its lifetime
// (C7): the validated request, tuning, the direction-specialized
// Calculator, the provider handle, and an instrumentation Timer.
type SearchContext struct {
	Request  Request
	Tuning   Tuning
	Calc     Calculator
	Provider Provider
	Timer    Timer
}

// NewSearchContext validates req and tuning per §7 and constructs the
// Calculator matching req.Direction. Construction fails fast with a
// *ValidationError rather than letting an invalid request reach the
// search loop.
func NewSearchContext(req Request, tuning Tuning, provider Provider, timer Timer) (*SearchContext, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &ValidationError{Field: "request", Reason: err.Error()}
	}
	if err := validate.Struct(tuning); err != nil {
		return nil, &ValidationError{Field: "tuning", Reason: err.Error()}
	}
	for _, leg := range req.AccessLegs {
		if leg.Duration < 0 {
			return nil, &ValidationError{Field: "access_legs", Reason: fmt.Sprintf("negative duration for stop %d", leg.ToStop)}
		}
	}
	for _, leg := range req.EgressLegs {
		if leg.Duration < 0 {
			return nil, &ValidationError{Field: "egress_legs", Reason: fmt.Sprintf("negative duration for stop %d", leg.FromStop)}
		}
	}
	if provider == nil {
		return nil, &ValidationError{Field: "provider", Reason: "must not be nil"}
	}

	var calc Calculator
	switch req.Direction {
	case Forward:
		calc = NewForwardCalculator()
	case Reverse:
		calc = NewReverseCalculator()
	default:
		return nil, &ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %d", req.Direction)}
	}

	if timer == nil {
		timer = NewNoopTimer()
	}

	return &SearchContext{Request: req, Tuning: tuning, Calc: calc, Provider: provider, Timer: timer}, nil
}

// seedLegs and anchorLegs return the request's access/egress legs in the
// internal orientation the Worker and Path Extractor expect: for reverse
// search the roles and endpoints are swapped so round 0 is always the
// seed and path extraction always anchors on the opposite side (see
// extractJourneys' doc comment in path.go).
func (c *SearchContext) seedLegs() []TransferLeg {
	if c.Calc.Direction() == Forward {
		return c.Request.AccessLegs
	}
	return flipAll(c.Request.EgressLegs)
}

func (c *SearchContext) anchorLegs() []TransferLeg {
	if c.Calc.Direction() == Forward {
		return c.Request.EgressLegs
	}
	return flipAll(c.Request.AccessLegs)
}

func flipAll(legs []TransferLeg) []TransferLeg {
	out := make([]TransferLeg, len(legs))
	for i, leg := range legs {
		out[i] = flip(leg)
	}
	return out
}
