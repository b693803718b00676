// Package transfers builds the walking-transfer legs a real timetable
// needs but a GTFS feed may omit (C8): for every stop, every other stop
// within a configured walking radius, spatially indexed so a radius
// query stays sublinear in the number of stops.
package transfers

import (
	"github.com/tidwall/rtree"

	"raptorplanner.dev/internal/geo"
	"raptorplanner.dev/internal/raptor"
)

// StopCoord pairs a stop with its (lat, lon), the input shape the
// generator consumes regardless of which Provider ultimately produced
// it.
type StopCoord struct {
	Stop raptor.Stop
	Lat  float64
	Lon  float64
}

// Config tunes the walking-transfer search.
type Config struct {
	// RadiusMeters is the maximum walking distance a transfer may cover;
	// the boundary itself is included (closed interval).
	RadiusMeters float64
	// WalkingSpeedMetersPerSecond converts distance into a transfer
	// duration.
	WalkingSpeedMetersPerSecond float64
}

// DefaultConfig mirrors a brisk walking pace and a five-minute-walk
// radius, reasonable defaults for a first timetable build.
func DefaultConfig() Config {
	return Config{RadiusMeters: 500, WalkingSpeedMetersPerSecond: 1.3}
}

// Generate builds, for every stop in stops, a TransferLeg to every other
// stop within cfg.RadiusMeters, using an R-tree keyed by each stop's
// degenerate (point) bounding box so the search is sublinear in
// len(stops). Returns legs grouped by origin stop, index-aligned with
// stops.
func Generate(stops []StopCoord, cfg Config) map[raptor.Stop][]raptor.TransferLeg {
	index := buildIndex(stops)
	result := make(map[raptor.Stop][]raptor.TransferLeg, len(stops))

	for _, from := range stops {
		bounds := geo.CalculateBounds(from.Lat, from.Lon, cfg.RadiusMeters)
		min := [2]float64{bounds.MinLon, bounds.MinLat}
		max := [2]float64{bounds.MaxLon, bounds.MaxLat}

		var legs []raptor.TransferLeg
		index.Search(min, max, func(_, _ [2]float64, data interface{}) bool {
			to := data.(StopCoord)
			if to.Stop == from.Stop {
				return true
			}
			distance := geo.Distance(from.Lat, from.Lon, to.Lat, to.Lon)
			if distance > cfg.RadiusMeters {
				return true
			}
			duration := int32(distance / cfg.WalkingSpeedMetersPerSecond)
			legs = append(legs, raptor.TransferLeg{FromStop: from.Stop, ToStop: to.Stop, Duration: duration})
			return true
		})
		if len(legs) > 0 {
			result[from.Stop] = legs
		}
	}
	return result
}

func buildIndex(stops []StopCoord) *rtree.RTree {
	var index rtree.RTree
	for _, s := range stops {
		point := [2]float64{s.Lon, s.Lat}
		index.Insert(point, point, s)
	}
	return &index
}
