// Package overlay computes what the flight overlay shows: the rotating time and flight-data
// readouts, the static readouts, the map view and the flown track.
//
// The Engine is the shared context for the periodic tasks. The poller writes the telemetry
// store, MapTick and DisplayTick read it, and each tick owns its own rotation. All of this
// runs on the scheduler's single executor so nothing here is locked. Results leave the
// engine only through the DisplayPort and MapPort.
package overlay

import (
	"context"
	"fmt"
	"time"

	"github.com/yegors/flight-overlay/internal/physics"
	"github.com/yegors/flight-overlay/internal/scheduler"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/pkg/logger"
)

// Heading references
const (
	HeadingTrue     = "true"
	HeadingMagnetic = "magnetic"
)

// Settings are the timing constants of the overlay
type Settings struct {
	PollInterval    time.Duration
	MapInterval     time.Duration
	DisplayInterval time.Duration

	// The time-info rotation advances SpeedMultiplier times faster than the display tick
	SpeedMultiplier float64
	TimeInfoCycle   time.Duration // Length of each time-info phase
	FlightDataCycle time.Duration // Length of each flight-data phase

	// Regional, global and max zoom-out phase lengths
	ZoomCycles [3]time.Duration

	HeadingReference string
	Deviation        DeviationSource
}

// DefaultSettings returns the stock overlay timing
func DefaultSettings() Settings {
	return Settings{
		PollInterval:     250 * time.Millisecond,
		MapInterval:      250 * time.Millisecond,
		DisplayInterval:  250 * time.Millisecond,
		SpeedMultiplier:  2,
		TimeInfoCycle:    20 * time.Second,
		FlightDataCycle:  10 * time.Second,
		ZoomCycles:       [3]time.Duration{60 * time.Second, 30 * time.Second, 30 * time.Second},
		HeadingReference: HeadingTrue,
		Deviation:        ZeroDeviation{},
	}
}

// Engine holds the shared overlay state
type Engine struct {
	settings Settings
	store    *telemetry.Store
	display  DisplayPort
	mapPort  MapPort
	logger   *logger.Logger

	timeInfo   *Rotation
	flightData *Rotation
	zoom       *Rotation
	deviation  Deviation

	// Points handed to the map port so far; the port keeps the polyline itself
	trackLength int

	// Last rendered time-info readout, shown again when a tick fails to compute one
	lastTimeInfo Readout

	timeInfoReadout func(phase int, s *telemetry.Snapshot, dev Deviation) (Readout, error)
	now             func() time.Time
}

// NewEngine creates an engine reading from store and writing to the given ports
func NewEngine(settings Settings, store *telemetry.Store, display DisplayPort, mapPort MapPort, loggerObj *logger.Logger) (*Engine, error) {
	if settings.DisplayInterval <= 0 || settings.MapInterval <= 0 {
		return nil, fmt.Errorf("display and map intervals must be positive")
	}
	if settings.TimeInfoCycle <= 0 || settings.FlightDataCycle <= 0 {
		return nil, fmt.Errorf("rotation cycles must be positive")
	}
	if settings.SpeedMultiplier <= 0 {
		return nil, fmt.Errorf("speed multiplier must be positive, got %v", settings.SpeedMultiplier)
	}
	if settings.Deviation == nil {
		settings.Deviation = ZeroDeviation{}
	}

	tick := settings.DisplayInterval.Seconds()
	zoomTick := settings.MapInterval.Seconds()

	return &Engine{
		settings:   settings,
		store:      store,
		display:    display,
		mapPort:    mapPort,
		logger:     loggerObj.Named("overlay"),
		timeInfo:   NewUniformRotation(tick*settings.SpeedMultiplier, settings.TimeInfoCycle.Seconds(), 3),
		flightData: NewUniformRotation(tick, settings.FlightDataCycle.Seconds(), 3),
		zoom: NewRotation(zoomTick,
			settings.ZoomCycles[ZoomRegional].Seconds(),
			settings.ZoomCycles[ZoomGlobal].Seconds(),
			settings.ZoomCycles[ZoomMaxOut].Seconds()),
		timeInfoReadout: TimeInfoReadout,
		now:             time.Now,
	}, nil
}

// Register adds the poll, map and display tasks to the scheduler. With async set the
// fetch runs off the executor and its result is posted back; otherwise it blocks the tick.
func (e *Engine) Register(s *scheduler.Scheduler, poller *telemetry.Poller, async bool) error {
	// Poll failures are logged by the poller and the previous snapshot stays current
	poll := func(ctx context.Context) {
		_ = poller.Poll(ctx)
	}
	if async {
		poll = func(ctx context.Context) {
			poller.PollAsync(ctx, s.Post)
		}
	}

	if err := s.Every("poll", e.settings.PollInterval, poll); err != nil {
		return err
	}
	if err := s.Every("map", e.settings.MapInterval, e.MapTick); err != nil {
		return err
	}
	return s.Every("display", e.settings.DisplayInterval, e.DisplayTick)
}

// DisplayTick renders the readouts for the current phase of each rotation and advances them
func (e *Engine) DisplayTick(ctx context.Context) {
	snap := e.store.Current()

	out := Readouts{
		TimeTo:          TimeToReadout(snap),
		Distance:        DistanceReadout(snap),
		TimeInfoPhase:   e.timeInfo.Phase(),
		FlightDataPhase: e.flightData.Phase(),
	}

	timeInfo, err := e.timeInfoReadout(out.TimeInfoPhase, snap, e.deviation)
	if err != nil {
		e.logger.Warn("Keeping previous time readout", logger.Error(err))
		timeInfo = e.lastTimeInfo
	}
	out.TimeInfo = timeInfo
	e.lastTimeInfo = timeInfo

	out.FlightData = FlightDataReadout(out.FlightDataPhase,
		snap.Altitude, snap.GroundSpeed, e.displayHeading(snap), e.deviation)

	e.display.SetReadouts(out)
	if sp, ok := e.display.(SnapshotPort); ok && snap.Updates > 0 {
		sp.SetSnapshot(e.store.Snapshot())
	}

	e.timeInfo.Advance()
	if e.flightData.Advance() {
		e.deviation = e.settings.Deviation.Next(snap)
	}
}

// MapTick centers the map on the aircraft, picks the zoom level and hands the next track
// point to the map port.
// Nothing is emitted until the first position arrives.
func (e *Engine) MapTick(ctx context.Context) {
	snap := e.store.Current()
	if !snap.HasPosition() {
		return
	}

	phase := e.zoom.Phase()
	if phase == ZoomMaxOut && snap.Altitude <= LowAltitude {
		// Zooming all the way out is pointless near the ground; restart the rotation
		e.zoom.Reset()
		phase = ZoomRegional
	}

	pos := *snap.Position
	e.trackLength++

	e.mapPort.SetView(MapView{
		Center:      pos,
		Zoom:        ZoomLevel(snap.Altitude, phase),
		Rotation:    snap.Heading,
		Point:       pos,
		TrackLength: e.trackLength,
	})

	e.zoom.Advance()
}

func (e *Engine) displayHeading(s *telemetry.Snapshot) float64 {
	if e.settings.HeadingReference != HeadingMagnetic || !s.HasPosition() {
		return s.Heading
	}
	decl := physics.CalculateMagneticVariation(s.Position.Lat, s.Position.Lon,
		s.Altitude*physics.MetersToFeet, e.now())
	return physics.TrueToMagnetic(s.Heading, decl)
}
