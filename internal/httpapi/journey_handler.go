package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"raptorplanner.dev/internal/metrics"
	"raptorplanner.dev/internal/raptor"
)

type transferLegDTO struct {
	FromStop int32 `json:"from_stop"`
	ToStop   int32 `json:"to_stop"`
	Duration int32 `json:"duration_seconds" validate:"gte=0"`
}

// journeyRequestDTO is the wire shape of POST /journeys. Unset optional
// fields fall back to the server's configured tuning and single-criterion
// search.
type journeyRequestDTO struct {
	AccessLegs           []transferLegDTO `json:"access_legs" validate:"required,min=1,dive"`
	EgressLegs           []transferLegDTO `json:"egress_legs" validate:"required,min=1,dive"`
	EarliestDeparture    int32            `json:"earliest_departure" validate:"gte=0"`
	LatestDeparture      int32            `json:"latest_departure" validate:"gtefield=EarliestDeparture"`
	Direction            string           `json:"direction" validate:"omitempty,oneof=forward reverse"`
	Criteria             string           `json:"criteria" validate:"omitempty,oneof=min_arrival pareto"`
	MaxNumberOfTransfers *int             `json:"max_number_of_transfers" validate:"omitempty,gte=0"`
}

func toTransferLeg(d transferLegDTO) raptor.TransferLeg {
	return raptor.TransferLeg{FromStop: raptor.Stop(d.FromStop), ToStop: raptor.Stop(d.ToStop), Duration: d.Duration}
}

func toTransferLegs(ds []transferLegDTO) []raptor.TransferLeg {
	legs := make([]raptor.TransferLeg, len(ds))
	for i, d := range ds {
		legs[i] = toTransferLeg(d)
	}
	return legs
}

type journeyDTO struct {
	Access            transferLegDTO `json:"access"`
	Legs              []legDTO       `json:"legs"`
	Egress            transferLegDTO `json:"egress"`
	DepartureTime     int32          `json:"departure_time"`
	ArrivalTime       int32          `json:"arrival_time"`
	Duration          int32          `json:"duration_seconds"`
	NumberOfTransfers int            `json:"number_of_transfers"`
	GeneralizedCost   float64        `json:"generalized_cost,omitempty"`
	Polyline          string         `json:"polyline,omitempty"`
}

type legDTO struct {
	BoardStop  int32 `json:"board_stop"`
	BoardTime  int32 `json:"board_time"`
	AlightStop int32 `json:"alight_stop"`
	AlightTime int32 `json:"alight_time"`
	Trip       int32 `json:"trip"`
	Pattern    int32 `json:"pattern"`
}

func fromJourney(provider raptor.Provider, j raptor.Journey) journeyDTO {
	legs := make([]legDTO, len(j.Legs))
	for i, l := range j.Legs {
		legs[i] = legDTO{
			BoardStop:  int32(l.BoardStop),
			BoardTime:  l.BoardTime,
			AlightStop: int32(l.AlightStop),
			AlightTime: l.AlightTime,
			Trip:       int32(l.Trip),
			Pattern:    int32(l.Pattern),
		}
	}
	return journeyDTO{
		Access:            transferLegDTO{FromStop: int32(j.Access.FromStop), ToStop: int32(j.Access.ToStop), Duration: j.Access.Duration},
		Legs:              legs,
		Egress:            transferLegDTO{FromStop: int32(j.Egress.FromStop), ToStop: int32(j.Egress.ToStop), Duration: j.Egress.Duration},
		DepartureTime:     j.DepartureTime,
		ArrivalTime:       j.ArrivalTime,
		Duration:          j.Duration,
		NumberOfTransfers: j.NumberOfTransfers,
		GeneralizedCost:   j.GeneralizedCost,
		Polyline:          journeyPolyline(provider, j),
	}
}

type journeysResponse struct {
	Journeys []journeyDTO `json:"journeys"`
}

var validate = validator.New()

// journeysHandler handles POST /journeys: decode, validate, translate
// into a raptor.Request, run a Worker, and return the resulting journeys.
// Every rejection below happens before a Worker is ever constructed.
func (s *Server) journeysHandler(w http.ResponseWriter, r *http.Request) {
	var req journeyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, s.Logger, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		sendError(w, s.Logger, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	direction := raptor.Forward
	if req.Direction == "reverse" {
		direction = raptor.Reverse
	}
	criteria := raptor.MinArrival
	if req.Criteria == "pareto" {
		criteria = raptor.Pareto
	}

	tuning := s.Tuning
	if req.MaxNumberOfTransfers != nil {
		tuning.MaxNumberOfTransfers = *req.MaxNumberOfTransfers
	}

	raptorReq := raptor.Request{
		AccessLegs:        toTransferLegs(req.AccessLegs),
		EgressLegs:        toTransferLegs(req.EgressLegs),
		EarliestDeparture: req.EarliestDeparture,
		LatestDeparture:   req.LatestDeparture,
		Direction:         direction,
		Criteria:          criteria,
	}

	ctx, err := raptor.NewSearchContext(raptorReq, tuning, s.Provider, s.timer())
	if err != nil {
		sendError(w, s.Logger, http.StatusBadRequest, err.Error())
		return
	}

	maxRound := tuning.MaxNumberOfTransfers + 1
	var state raptor.State
	if criteria == raptor.Pareto {
		state = raptor.NewMultiCriterionState(ctx.Calc, s.Provider.NumStops(), maxRound)
	} else {
		state = raptor.NewSingleCriterionState(ctx.Calc, s.Provider.NumStops(), maxRound)
	}

	worker := raptor.NewWorker(ctx, state)

	start := time.Now()
	journeys, err := worker.Run(r.Context())
	if s.Metrics != nil {
		s.Metrics.ObserveSearch(direction, criteria, time.Since(start).Seconds())
	}
	if err != nil {
		sendError(w, s.Logger, http.StatusInternalServerError, "search failed: "+err.Error())
		return
	}

	dtos := make([]journeyDTO, len(journeys))
	for i, j := range journeys {
		dtos[i] = fromJourney(s.Provider, j)
	}
	sendResponse(w, s.Logger, http.StatusOK, journeysResponse{Journeys: dtos})
}

func (s *Server) timer() raptor.Timer {
	if s.Metrics == nil {
		return raptor.NewNoopTimer()
	}
	return metrics.NewTimer(s.Metrics)
}
