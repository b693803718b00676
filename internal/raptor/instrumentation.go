package raptor

// Timer receives counters from a single Worker run so a caller can wire
// them to whatever observability stack it likes (Prometheus, logging,
// nothing at all) without the Worker importing that stack directly.
type Timer interface {
	// MinuteStarted is called once per range-raptor minute the outer loop
	// runs, before the round loop begins.
	MinuteStarted(minute int32)

	// RoundCompleted is called once per round within a minute, after
	// transfer relaxation finishes.
	RoundCompleted(round int, touchedStops int)

	// SearchCompleted is called once the whole range-raptor window has
	// been swept, reporting the total minutes iterated.
	SearchCompleted(minutesIterated int)
}

// noopTimer discards every observation; it is the Worker's default so
// instrumentation is opt-in.
type noopTimer struct{}

func (noopTimer) MinuteStarted(int32)     {}
func (noopTimer) RoundCompleted(int, int) {}
func (noopTimer) SearchCompleted(int)     {}

// NewNoopTimer returns a Timer that discards every observation.
func NewNoopTimer() Timer { return noopTimer{} }
