package httpapi

import (
	"github.com/twpayne/go-polyline"

	"raptorplanner.dev/internal/memtimetable"
	"raptorplanner.dev/internal/raptor"
)

// journeyPolyline encodes a journey's stop sequence as a Google-encoded
// polyline, for clients that want to draw the route without looking up
// every stop's coordinates themselves. Returns "" if the provider backing
// the search doesn't carry coordinates.
func journeyPolyline(provider raptor.Provider, j raptor.Journey) string {
	withCoords, ok := provider.(*memtimetable.Provider)
	if !ok {
		return ""
	}

	stops := make([]raptor.Stop, 0, len(j.Legs)+1)
	if len(j.Legs) > 0 {
		stops = append(stops, j.Legs[0].BoardStop)
		for _, leg := range j.Legs {
			stops = append(stops, leg.AlightStop)
		}
	}

	coords := make([][]float64, 0, len(stops))
	for _, stop := range stops {
		c, ok := withCoords.Coord(stop)
		if !ok {
			continue
		}
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	if len(coords) == 0 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}
