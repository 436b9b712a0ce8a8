package overlay

import (
	"math/rand/v2"

	"github.com/yegors/flight-overlay/internal/telemetry"
)

// Deviation is added to the displayed values for one flight-data cycle
type Deviation struct {
	Altitude    int // feet
	Speed       int // knots
	Heading     int // degrees
	TimeSeconds int // added to the arrival time
}

// DeviationSource produces a new Deviation at the end of each flight-data cycle
type DeviationSource interface {
	Next(s *telemetry.Snapshot) Deviation
}

// ZeroDeviation never perturbs the readouts
type ZeroDeviation struct{}

// Next always returns the zero Deviation
func (ZeroDeviation) Next(*telemetry.Snapshot) Deviation { return Deviation{} }

// RandomDeviation jitters readouts slightly so a replayed flight looks live
type RandomDeviation struct {
	rng *rand.Rand
}

// NewRandomDeviation creates a seeded random deviation source
func NewRandomDeviation(seed uint64) *RandomDeviation {
	return &RandomDeviation{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next draws altitude in [-10, 10), speed in [-5, 5), heading in [-1, 1) and a whole
// minute of arrival time in [-1, 1). Heading is left alone near north so the readout never
// shows 360 or a negative value.
func (d *RandomDeviation) Next(s *telemetry.Snapshot) Deviation {
	dev := Deviation{
		Altitude:    d.intn(-10, 10),
		Speed:       d.intn(-5, 5),
		TimeSeconds: d.intn(-1, 1) * 60,
	}
	if s != nil && s.Heading > 2 && s.Heading < 358 {
		dev.Heading = d.intn(-1, 1)
	}
	return dev
}

// intn returns a value in [lo, hi)
func (d *RandomDeviation) intn(lo, hi int) int {
	return d.rng.IntN(hi-lo) + lo
}
