package overlay

import (
	"context"
	"testing"
	"time"

	"github.com/yegors/flight-overlay/internal/physics"
	"github.com/yegors/flight-overlay/internal/scheduler"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/internal/timecalc"
	"github.com/yegors/flight-overlay/pkg/logger"
)

type staticFetcher struct {
	report *telemetry.Report
}

func (f *staticFetcher) Fetch(context.Context) (*telemetry.Report, error) {
	if f.report == nil {
		return nil, context.DeadlineExceeded
	}
	r := *f.report
	return &r, nil
}

func float64Ptr(v float64) *float64 { return &v }

func sampleReport() *telemetry.Report {
	return &telemetry.Report{
		DestName:  "KSEA",
		DepHH:     14,
		DepMM:     30,
		DepGMTHH:  -5,
		FltHH:     5,
		FltMM:     45,
		DestGMTHH: -8,
		Lat:       float64Ptr(44.5),
		Lon:       float64Ptr(-110.25),
		Alt:       3048,
		Hdg:       270,
		Spd:       450,
		Dst:       500,
		TEl:       3600,
	}
}

type engineFixture struct {
	sched   *scheduler.Scheduler
	engine  *Engine
	port    *recordingPort
	fetcher *staticFetcher
}

func newEngineFixture(t *testing.T, settings Settings, report *telemetry.Report) *engineFixture {
	t.Helper()
	log := logger.NewNop()
	store := telemetry.NewStore()
	fetcher := &staticFetcher{report: report}
	port := &recordingPort{}

	engine, err := NewEngine(settings, store, port, port, log)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	sched := scheduler.New(log)
	if err := engine.Register(sched, telemetry.NewPoller(fetcher, store, log), false); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return &engineFixture{sched: sched, engine: engine, port: port, fetcher: fetcher}
}

func TestNewEngineValidation(t *testing.T) {
	bad := DefaultSettings()
	bad.SpeedMultiplier = 0
	if _, err := NewEngine(bad, telemetry.NewStore(), &recordingPort{}, &recordingPort{}, logger.NewNop()); err == nil {
		t.Error("Expected error for zero speed multiplier")
	}

	bad = DefaultSettings()
	bad.DisplayInterval = 0
	if _, err := NewEngine(bad, telemetry.NewStore(), &recordingPort{}, &recordingPort{}, logger.NewNop()); err == nil {
		t.Error("Expected error for zero display interval")
	}
}

func TestEngineFirstTick(t *testing.T) {
	f := newEngineFixture(t, DefaultSettings(), sampleReport())

	f.sched.Advance(context.Background(), 250*time.Millisecond)

	if len(f.port.readouts) != 1 {
		t.Fatalf("Expected 1 display update, got %d", len(f.port.readouts))
	}
	got := f.port.readouts[0]
	if got.FlightData != (Readout{Label: "Altitude", Value: "10000 ft"}) {
		t.Errorf("Expected altitude readout, got %+v", got.FlightData)
	}
	if got.TimeInfo != (Readout{Label: "Time of Arrival", Value: "17:15"}) {
		t.Errorf("Expected arrival readout, got %+v", got.TimeInfo)
	}
	if got.TimeTo.Label != "Time to KSEA" || got.Distance.Value != "500 miles" {
		t.Errorf("Unexpected static readouts: %+v %+v", got.TimeTo, got.Distance)
	}

	if len(f.port.views) != 1 {
		t.Fatalf("Expected 1 map update, got %d", len(f.port.views))
	}
	view := f.port.views[0]
	if view.Zoom != 15 || view.Rotation != 270 || view.TrackLength != 1 {
		t.Errorf("Unexpected first map view: %+v", view)
	}
}

func TestEngineRotatesReadouts(t *testing.T) {
	f := newEngineFixture(t, DefaultSettings(), sampleReport())
	ctx := context.Background()

	// 40 display ticks cover one 10s flight-data phase and one 20s time-info phase at 2x
	f.sched.Advance(ctx, 10*time.Second)
	if n := len(f.port.readouts); n != 40 {
		t.Fatalf("Expected 40 display updates, got %d", n)
	}
	last := f.port.readouts[39]
	if last.FlightDataPhase != PhaseAltitude || last.TimeInfoPhase != PhaseArrivalTime {
		t.Errorf("Expected first phases before the boundary, got %d/%d", last.FlightDataPhase, last.TimeInfoPhase)
	}

	f.sched.Advance(ctx, 250*time.Millisecond)
	next := f.port.readouts[40]
	if next.FlightData.Label != "Ground Speed" || next.FlightData.Value != "450 kts" {
		t.Errorf("Expected ground speed readout, got %+v", next.FlightData)
	}
	if next.TimeInfo.Label != "Time at Destination" || next.TimeInfo.Value != "12:30" {
		t.Errorf("Expected destination time readout, got %+v", next.TimeInfo)
	}

	f.sched.Advance(ctx, 10*time.Second)
	if got := f.port.readouts[80].FlightData; got.Label != "Heading" || got.Value != "270 deg" {
		t.Errorf("Expected heading readout, got %+v", got)
	}

	// Third flight-data phase ends at 30s and the rotation wraps to altitude
	f.sched.Advance(ctx, 10*time.Second)
	if got := f.port.readouts[120]; got.FlightDataPhase != PhaseAltitude || got.TimeInfoPhase != PhaseArrivalTime {
		t.Errorf("Expected both rotations to wrap, got %d/%d", got.FlightDataPhase, got.TimeInfoPhase)
	}
}

func TestEngineWaitsForPosition(t *testing.T) {
	f := newEngineFixture(t, DefaultSettings(), nil)
	ctx := context.Background()

	f.sched.Advance(ctx, time.Second)
	if len(f.port.views) != 0 {
		t.Errorf("Expected no map updates before the first position, got %d", len(f.port.views))
	}
	if len(f.port.readouts) != 4 {
		t.Errorf("Expected display to keep ticking, got %d updates", len(f.port.readouts))
	}

	f.fetcher.report = sampleReport()
	f.sched.Advance(ctx, time.Second)
	if len(f.port.views) != 4 {
		t.Errorf("Expected 4 map updates once telemetry arrives, got %d", len(f.port.views))
	}
	if got := f.port.views[3].TrackLength; got != 4 {
		t.Errorf("Expected 4 track points, got %d", got)
	}
	if len(f.port.snapshots) != 4 || f.port.snapshots[0].Updates != 1 {
		t.Errorf("Expected snapshots only after the first poll, got %d", len(f.port.snapshots))
	}
}

func TestEngineIgnoresReportWithoutPosition(t *testing.T) {
	r := sampleReport()
	r.Lat, r.Lon = nil, nil
	f := newEngineFixture(t, DefaultSettings(), r)
	ctx := context.Background()

	f.sched.Advance(ctx, time.Second)
	if len(f.port.views) != 0 {
		t.Fatalf("Expected no map updates without a position, got %+v", f.port.views)
	}
	if len(f.port.readouts) != 4 || f.port.readouts[3].TimeTo.Label != "Time to KSEA" {
		t.Errorf("Expected readouts to keep rendering, got %d", len(f.port.readouts))
	}

	// Only lat present is still no position
	r.Lat = float64Ptr(44.5)
	f.sched.Advance(ctx, time.Second)
	if len(f.port.views) != 0 {
		t.Errorf("Expected no map updates with a partial position, got %d", len(f.port.views))
	}

	f.fetcher.report = sampleReport()
	f.sched.Advance(ctx, 250*time.Millisecond)
	if len(f.port.views) != 1 || f.port.views[0].Center.Lat != 44.5 {
		t.Errorf("Expected the first view at the reported position, got %+v", f.port.views)
	}
}

func TestEngineKeepsTimeReadoutOnError(t *testing.T) {
	f := newEngineFixture(t, DefaultSettings(), sampleReport())
	ctx := context.Background()

	f.sched.Advance(ctx, 250*time.Millisecond)
	f.engine.timeInfoReadout = func(int, *telemetry.Snapshot, Deviation) (Readout, error) {
		return Readout{}, timecalc.ErrUnknownUnit
	}
	f.sched.Advance(ctx, 250*time.Millisecond)

	want := Readout{Label: "Time of Arrival", Value: "17:15"}
	if got := f.port.readouts[1].TimeInfo; got != want {
		t.Errorf("Expected the previous time readout %+v, got %+v", want, got)
	}
	if f.port.readouts[1].FlightData.Value == "" {
		t.Error("Expected the other readouts to update")
	}
}

func TestEngineSkipsMaxZoomNearGround(t *testing.T) {
	f := newEngineFixture(t, DefaultSettings(), sampleReport())

	// 60s regional, 30s global, then the max zoom-out phase is skipped below 4000
	f.sched.Advance(context.Background(), 90*time.Second+250*time.Millisecond)

	views := f.port.views
	if len(views) != 361 {
		t.Fatalf("Expected 361 map updates, got %d", len(views))
	}
	if views[0].Zoom != 15 || views[239].Zoom != 15 {
		t.Errorf("Expected regional zoom for the first minute, got %d and %d", views[0].Zoom, views[239].Zoom)
	}
	if views[240].Zoom != 12 || views[359].Zoom != 12 {
		t.Errorf("Expected global zoom after a minute, got %d and %d", views[240].Zoom, views[359].Zoom)
	}
	if views[360].Zoom != 15 {
		t.Errorf("Expected rotation to restart at regional zoom, got %d", views[360].Zoom)
	}
	if views[360].TrackLength != 361 {
		t.Errorf("Expected track to keep growing, got %d", views[360].TrackLength)
	}
}

func TestEngineMaxZoomAtCruise(t *testing.T) {
	report := sampleReport()
	report.Alt = 11000
	f := newEngineFixture(t, DefaultSettings(), report)

	f.sched.Advance(context.Background(), 90*time.Second+250*time.Millisecond)
	if got := f.port.views[360].Zoom; got != ZoomLevel(11000, ZoomMaxOut) {
		t.Errorf("Expected max zoom-out at cruise, got %d", got)
	}
}

type fixedDeviation struct {
	dev   Deviation
	calls int
}

func (d *fixedDeviation) Next(*telemetry.Snapshot) Deviation {
	d.calls++
	return d.dev
}

func TestEngineRefreshesDeviationPerCycle(t *testing.T) {
	dev := &fixedDeviation{dev: Deviation{Altitude: 5}}
	settings := DefaultSettings()
	settings.Deviation = dev
	f := newEngineFixture(t, settings, sampleReport())
	ctx := context.Background()

	f.sched.Advance(ctx, 30*time.Second-250*time.Millisecond)
	if dev.calls != 0 {
		t.Fatalf("Expected no deviation before the first full cycle, got %d", dev.calls)
	}
	if got := f.port.readouts[0].FlightData.Value; got != "10000 ft" {
		t.Errorf("Expected undeviated altitude, got %s", got)
	}

	// The 120th tick closes the cycle; the next one shows the new deviation
	f.sched.Advance(ctx, 500*time.Millisecond)
	if dev.calls != 1 {
		t.Errorf("Expected one deviation draw after the cycle, got %d", dev.calls)
	}
	if got := f.port.readouts[120].FlightData.Value; got != "10005 ft" {
		t.Errorf("Expected deviated altitude, got %s", got)
	}
}

func TestEngineMagneticHeading(t *testing.T) {
	settings := DefaultSettings()
	settings.HeadingReference = HeadingMagnetic
	f := newEngineFixture(t, settings, sampleReport())
	fixed := time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return fixed }

	f.sched.Advance(context.Background(), 20*time.Second+250*time.Millisecond)

	decl := physics.CalculateMagneticVariation(44.5, -110.25, 3048*physics.MetersToFeet, fixed)
	want := FlightDataReadout(PhaseHeading, 0, 0, physics.TrueToMagnetic(270, decl), Deviation{})
	if got := f.port.readouts[80].FlightData; got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
