package overlay

import "github.com/yegors/flight-overlay/internal/telemetry"

// Readout is one label/value pair on the overlay
type Readout struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Readouts is everything the display surface shows for one tick
type Readouts struct {
	TimeInfo        Readout `json:"time_info"`
	FlightData      Readout `json:"flight_data"`
	TimeTo          Readout `json:"time_to"`
	Distance        Readout `json:"distance"`
	TimeInfoPhase   int     `json:"time_info_phase"`
	FlightDataPhase int     `json:"flight_data_phase"`
}

// MapView is everything the map widget needs for one tick
type MapView struct {
	Center      telemetry.LatLon `json:"center"`
	Zoom        int              `json:"zoom"`
	Rotation    float64          `json:"rotation"` // Marker glyph rotation, degrees
	Point       telemetry.LatLon `json:"point"`    // Point appended to the track this tick
	TrackLength int              `json:"track_length"`
}

// DisplayPort receives display commands
type DisplayPort interface {
	SetReadouts(r Readouts)
}

// MapPort receives map commands
type MapPort interface {
	SetView(v MapView)
}

// SnapshotPort optionally receives a copy of the telemetry applied for each display tick
type SnapshotPort interface {
	SetSnapshot(s telemetry.Snapshot)
}

// Ports fans commands out to several sinks
type Ports []any

// SetReadouts forwards to every DisplayPort in the list
func (p Ports) SetReadouts(r Readouts) {
	for _, sink := range p {
		if d, ok := sink.(DisplayPort); ok {
			d.SetReadouts(r)
		}
	}
}

// SetView forwards to every MapPort in the list
func (p Ports) SetView(v MapView) {
	for _, sink := range p {
		if m, ok := sink.(MapPort); ok {
			m.SetView(v)
		}
	}
}

// SetSnapshot forwards to every SnapshotPort in the list
func (p Ports) SetSnapshot(s telemetry.Snapshot) {
	for _, sink := range p {
		if sp, ok := sink.(SnapshotPort); ok {
			sp.SetSnapshot(s)
		}
	}
}
