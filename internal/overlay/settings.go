package overlay

import (
	"time"

	"github.com/yegors/flight-overlay/internal/config"
)

// SettingsFromConfig builds engine settings from a validated configuration. A zero
// deviation seed is replaced by one derived from the current time.
func SettingsFromConfig(cfg *config.Config) Settings {
	o := cfg.Overlay
	s := Settings{
		PollInterval:     time.Duration(cfg.Telemetry.PollIntervalMs) * time.Millisecond,
		MapInterval:      time.Duration(o.MapIntervalMs) * time.Millisecond,
		DisplayInterval:  time.Duration(o.DisplayIntervalMs) * time.Millisecond,
		SpeedMultiplier:  o.SpeedMultiplier,
		TimeInfoCycle:    time.Duration(o.TimeInfoCycleSecs) * time.Second,
		FlightDataCycle:  time.Duration(o.FlightDataCycleSecs) * time.Second,
		HeadingReference: o.HeadingReference,
		Deviation:        ZeroDeviation{},
	}
	for i := 0; i < len(s.ZoomCycles) && i < len(o.ZoomCycleSecs); i++ {
		s.ZoomCycles[i] = time.Duration(o.ZoomCycleSecs[i]) * time.Second
	}

	if o.Deviation == "random" {
		seed := o.DeviationSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		s.Deviation = NewRandomDeviation(seed)
	}
	return s
}
