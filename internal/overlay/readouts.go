package overlay

import (
	"fmt"
	"math"
	"time"

	"github.com/yegors/flight-overlay/internal/physics"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/internal/timecalc"
)

// Flight-data phases
const (
	PhaseAltitude = iota
	PhaseGroundSpeed
	PhaseHeading
)

// Time-info phases
const (
	PhaseArrivalTime = iota
	PhaseDestinationTime
	PhaseOriginTime
)

// Labels shown on the overlay
const (
	LabelAltitude        = "Altitude"
	LabelGroundSpeed     = "Ground Speed"
	LabelHeading         = "Heading"
	LabelArrivalTime     = "Time of Arrival"
	LabelDestinationTime = "Time at Destination"
	LabelOriginTime      = "Time at Origin"
	LabelDistance        = "Distance Traveled"
	LabelTimeToPrefix    = "Time to "
)

// referenceDate is the calendar day departure clock times are pinned to. Only the time of
// day is ever displayed.
var referenceDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// FlightDataReadout renders the altitude, ground speed or heading readout. Altitude is
// reported in metres and shown in feet.
func FlightDataReadout(phase int, altitude, groundSpeed, heading float64, dev Deviation) Readout {
	switch phase {
	case PhaseAltitude:
		feet := int(timecalc.RoundHalfUp(altitude*physics.MetersToFeet)) + dev.Altitude
		return Readout{Label: LabelAltitude, Value: fmt.Sprintf("%d ft", feet)}
	case PhaseGroundSpeed:
		if groundSpeed <= 1 {
			return Readout{Label: LabelGroundSpeed, Value: "0 kts"}
		}
		kts := int(timecalc.RoundHalfUp(groundSpeed)) + dev.Speed
		return Readout{Label: LabelGroundSpeed, Value: fmt.Sprintf("%d kts", kts)}
	default:
		deg := int(timecalc.RoundHalfUp(heading)) + dev.Heading
		return Readout{Label: LabelHeading, Value: fmt.Sprintf("%d deg", deg)}
	}
}

// DepartureInstant pins the departure clock time to the reference date
func DepartureInstant(s *telemetry.Snapshot) time.Time {
	return time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(),
		s.DepartureHour, s.DepartureMinute, 0, 0, time.UTC)
}

// TimeInfoReadout renders arrival time, local time at destination or local time at origin
func TimeInfoReadout(phase int, s *telemetry.Snapshot, dev Deviation) (Readout, error) {
	dep := DepartureInstant(s)
	elapsed := int(math.Floor(s.ElapsedSeconds))
	gmtDelta := s.GMTDeltaSeconds()

	var label string
	var offset int
	switch phase {
	case PhaseArrivalTime:
		label, offset = LabelArrivalTime, s.TotalFlightSeconds()+dev.TimeSeconds+gmtDelta
	case PhaseDestinationTime:
		label, offset = LabelDestinationTime, elapsed+gmtDelta
	default:
		label, offset = LabelOriginTime, elapsed
	}

	t, err := timecalc.DateAdd(dep, timecalc.Second, offset)
	if err != nil {
		return Readout{}, fmt.Errorf("failed to compute %s: %w", label, err)
	}
	return Readout{Label: label, Value: timecalc.ClockHHMM(t)}, nil
}

// TimeToDestination formats the remaining flight time as "H h MM m". Once the scheduled
// duration has elapsed it stays at zero.
func TimeToDestination(s *telemetry.Snapshot) string {
	remaining := float64(s.TotalFlightSeconds()) - s.ElapsedSeconds
	if remaining < 0 {
		remaining = 0
	}
	hours := int(math.Floor(remaining / 3600))
	remaining = math.Mod(remaining, 3600)
	minutes := int(math.Floor(remaining / 60))
	return fmt.Sprintf("%d h %s m", hours, timecalc.Pad(minutes, 2))
}

// TimeToReadout is the static time-to-destination readout
func TimeToReadout(s *telemetry.Snapshot) Readout {
	return Readout{Label: LabelTimeToPrefix + s.DestinationName, Value: TimeToDestination(s)}
}

// DistanceReadout is the static distance-traveled readout
func DistanceReadout(s *telemetry.Snapshot) Readout {
	miles := int(timecalc.RoundHalfUp(s.DistanceTraveled))
	return Readout{Label: LabelDistance, Value: fmt.Sprintf("%d miles", miles)}
}
