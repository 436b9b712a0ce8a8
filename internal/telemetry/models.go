package telemetry

import "time"

// Report is the JSON object served by the telemetry endpoint
type Report struct {
	DestName string `json:"destName"`

	// Reference data entered on the sim side
	DepHH     int `json:"depHH"`     // Departure clock time, hours (UTC)
	DepMM     int `json:"depMM"`     // Departure clock time, minutes
	DepGMTHH  int `json:"depGMTHH"`  // Departure GMT offset hours, carries the sign
	DepGMTMM  int `json:"depGMTMM"`  // Departure GMT offset minutes, unsigned
	FltHH     int `json:"fltHH"`     // Total flight duration, hours
	FltMM     int `json:"fltMM"`     // Total flight duration, minutes
	DestGMTHH int `json:"destGMTHH"` // Destination GMT offset hours, carries the sign
	DestGMTMM int `json:"destGMTMM"` // Destination GMT offset minutes, unsigned

	// Live values. The source omits them while no flight is loaded.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
	Alt float64 `json:"alt"` // Metres
	Hdg float64 `json:"hdg"` // Degrees true
	Spd float64 `json:"spd"` // Knots
	Zul float64 `json:"zul"` // Sim zulu time, seconds
	Dst float64 `json:"dst"` // Miles travelled
	TEl float64 `json:"tEl"` // Seconds since departure
}

// LatLon is a position in decimal degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position returns the reported position, or nil unless both coordinates are present
func (r *Report) Position() *LatLon {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &LatLon{Lat: *r.Lat, Lon: *r.Lon}
}

// Snapshot is the latest fully applied telemetry state
type Snapshot struct {
	DestinationName string  `json:"destination_name"`
	Position        *LatLon `json:"position,omitempty"` // nil until the first successful poll

	Altitude         float64 `json:"altitude"`
	Heading          float64 `json:"heading"`
	GroundSpeed      float64 `json:"ground_speed"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
	DistanceTraveled float64 `json:"distance_traveled"`
	ZuluSeconds      float64 `json:"zulu_seconds"`

	DepartureHour               int `json:"departure_hour"`
	DepartureMinute             int `json:"departure_minute"`
	DepartureGMTOffsetSeconds   int `json:"departure_gmt_offset_seconds"`
	FlightHours                 int `json:"flight_hours"`
	FlightMinutes               int `json:"flight_minutes"`
	DestinationGMTOffsetSeconds int `json:"destination_gmt_offset_seconds"`

	UpdatedAt time.Time `json:"updated_at"`
	Updates   int       `json:"updates"`
}

// HasPosition reports whether a position has been received
func (s *Snapshot) HasPosition() bool {
	return s.Position != nil
}

// TotalFlightSeconds is the scheduled flight duration in seconds
func (s *Snapshot) TotalFlightSeconds() int {
	total := s.FlightHours*3600 + s.FlightMinutes*60
	if total < 0 {
		return -total
	}
	return total
}

// GMTDeltaSeconds is the destination offset minus the departure offset
func (s *Snapshot) GMTDeltaSeconds() int {
	return s.DestinationGMTOffsetSeconds - s.DepartureGMTOffsetSeconds
}

// GMTOffsetSeconds combines an hour/minute GMT offset into seconds. The sign is carried by
// the hour component; minutes are added for positive hours and subtracted otherwise.
func GMTOffsetSeconds(hh, mm int) int {
	secs := hh * 3600
	if secs > 0 {
		return secs + mm*60
	}
	return secs - mm*60
}
