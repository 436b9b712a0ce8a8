package overlay

import "github.com/yegors/flight-overlay/internal/telemetry"

// Zoom phases
const (
	ZoomRegional = iota
	ZoomGlobal
	ZoomMaxOut
)

// Base zoom per phase, before the altitude offset
var zoomBase = [...]int{
	ZoomRegional: 8,
	ZoomGlobal:   5,
	ZoomMaxOut:   2,
}

// Altitude thresholds for the zoom offset, in the units the source reports
const (
	LowAltitude = 4000.0
	MidAltitude = 10000.0
)

// AltitudeZoomOffset zooms further in the closer the aircraft is to the ground
func AltitudeZoomOffset(altitude float64) int {
	switch {
	case altitude <= LowAltitude:
		return 7
	case altitude <= MidAltitude:
		return 4
	default:
		return 0
	}
}

// ZoomLevel combines the phase base zoom with the altitude offset
func ZoomLevel(altitude float64, phase int) int {
	if phase < ZoomRegional || phase > ZoomMaxOut {
		phase = ZoomRegional
	}
	return zoomBase[phase] + AltitudeZoomOffset(altitude)
}

// Track is the flown polyline. It only ever grows.
type Track struct {
	points []telemetry.LatLon
}

// Append adds a point to the end of the track
func (t *Track) Append(p telemetry.LatLon) {
	t.points = append(t.points, p)
}

// Len returns the number of points
func (t *Track) Len() int {
	return len(t.points)
}

// Points returns a copy of the track
func (t *Track) Points() []telemetry.LatLon {
	out := make([]telemetry.LatLon, len(t.points))
	copy(out, t.points)
	return out
}
