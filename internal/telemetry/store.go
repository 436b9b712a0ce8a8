package telemetry

import (
	"time"

	"github.com/mohae/deepcopy"
)

// Store owns the current Snapshot. It is written by the poller and read by the display and
// map tasks, all on the scheduler's executor, so it carries no lock. Anything leaving the
// executor must go through Snapshot, which hands out a deep copy.
type Store struct {
	current Snapshot
	now     func() time.Time
}

// NewStore creates a store holding the zero snapshot
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Apply replaces every field from a successfully decoded report
func (s *Store) Apply(r *Report) {
	next := Snapshot{
		DestinationName:             r.DestName,
		Position:                    r.Position(),
		Altitude:                    r.Alt,
		Heading:                     r.Hdg,
		GroundSpeed:                 r.Spd,
		ElapsedSeconds:              r.TEl,
		DistanceTraveled:            r.Dst,
		ZuluSeconds:                 r.Zul,
		DepartureHour:               r.DepHH,
		DepartureMinute:             r.DepMM,
		DepartureGMTOffsetSeconds:   GMTOffsetSeconds(r.DepGMTHH, r.DepGMTMM),
		FlightHours:                 r.FltHH,
		FlightMinutes:               r.FltMM,
		DestinationGMTOffsetSeconds: GMTOffsetSeconds(r.DestGMTHH, r.DestGMTMM),
		UpdatedAt:                   s.now(),
		Updates:                     s.current.Updates + 1,
	}
	s.current = next
}

// Current returns the live snapshot for use on the executor
func (s *Store) Current() *Snapshot {
	return &s.current
}

// Snapshot returns a deep copy safe to hand to other goroutines
func (s *Store) Snapshot() Snapshot {
	return deepcopy.Copy(s.current).(Snapshot)
}
