package geom

import (
	"math"
)

// StationaryThresholdKts is the speed at or below which heading data is
// considered unreliable and the direction is reported as stationary.
const StationaryThresholdKts = 0.5

// Direction is an 8-point compass direction, or one of the two sentinel
// values Stationary and Unknown.
type Direction string

const (
	North      Direction = "north"
	NorthEast  Direction = "north-east"
	East       Direction = "east"
	SouthEast  Direction = "south-east"
	South      Direction = "south"
	SouthWest  Direction = "south-west"
	West       Direction = "west"
	NorthWest  Direction = "north-west"
	Stationary Direction = "stationary"
	Unknown    Direction = "unknown"
)

var compassSectors = [8]Direction{
	North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest,
}

// CompassDirection quantizes a 0-360 degree bearing into 8 sectors of 45
// degrees centered on the cardinal and intercardinal directions. Sectors are
// half-open on the upper side: 337.5 maps to north, 22.5 to north-east.
func CompassDirection(degrees float64) Direction {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	idx := int((d+22.5)/45) % 8
	return compassSectors[idx]
}

// ResolveDirection applies the stationary and missing-heading policy on top
// of the compass quantization. heading is nil when the feed did not report
// one.
func ResolveDirection(heading *float64, speedKts float64) Direction {
	if speedKts <= StationaryThresholdKts {
		return Stationary
	}
	if heading == nil {
		return Unknown
	}
	return CompassDirection(*heading)
}
