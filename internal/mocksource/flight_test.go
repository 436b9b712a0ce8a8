package mocksource

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/physics"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testFlight(t *testing.T) (*Flight, *fakeClock) {
	t.Helper()
	cfg := config.Default().Mock
	clock := &fakeClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	return newFlight(cfg, logger.NewNop(), clock.Now), clock
}

func TestReportAtGate(t *testing.T) {
	f, _ := testFlight(t)

	r := f.Report()
	if r.TEl != 0 || r.Dst != 0 || r.Spd != 0 {
		t.Errorf("Expected a parked aircraft, got tEl=%v dst=%v spd=%v", r.TEl, r.Dst, r.Spd)
	}
	if pos := r.Position(); pos == nil || pos.Lat != 40.6413 || pos.Lon != -73.7781 {
		t.Errorf("Expected origin position, got %+v", r.Position())
	}
	if r.DestName != "Seattle" || r.FltHH != 5 || r.FltMM != 45 || r.DepGMTHH != -5 {
		t.Errorf("Unexpected reference data: %+v", r)
	}
	// 14:30 local at GMT-5 is 19:30 UTC
	if r.Zul != 19*3600+30*60 {
		t.Errorf("Expected zulu 70200, got %v", r.Zul)
	}
}

func TestReportAccumulatesSimTime(t *testing.T) {
	f, clock := testFlight(t)
	f.Report()

	clock.Advance(60 * time.Second)
	r := f.Report()
	if r.TEl != 60 {
		t.Errorf("Expected 60s elapsed, got %v", r.TEl)
	}
	if r.Spd != TaxiSpeedKts || r.Alt != 0 {
		t.Errorf("Expected taxiing, got spd=%v alt=%v", r.Spd, r.Alt)
	}
	wantMiles := TaxiSpeedKts * physics.KnotsToMilesPerS * 60
	if math.Abs(r.Dst-wantMiles) > 1e-9 {
		t.Errorf("Expected %v miles, got %v", wantMiles, r.Dst)
	}

	// A request without sim time passing changes nothing
	again := f.Report()
	if again.TEl != r.TEl || again.Dst != r.Dst || *again.Lat != *r.Lat {
		t.Errorf("Expected identical report, got %+v", again)
	}
}

func TestTimeScale(t *testing.T) {
	cfg := config.Default().Mock
	cfg.TimeScale = 10
	clock := &fakeClock{now: time.Unix(0, 0)}
	f := newFlight(cfg, logger.NewNop(), clock.Now)

	clock.Advance(3 * time.Second)
	if r := f.Report(); r.TEl != 30 {
		t.Errorf("Expected 30 sim seconds, got %v", r.TEl)
	}
}

func TestFlightClimbsCruisesAndArrives(t *testing.T) {
	f, clock := testFlight(t)
	cfg := config.Default().Mock
	total := physics.DistanceNM(cfg.OriginLat, cfg.OriginLon, cfg.DestinationLat, cfg.DestinationLon)

	var peak float64
	var r *telemetry.Report
	for i := 0; i < 24*360 && (r == nil || r.Spd > 0 || r.TEl < TaxiSeconds); i++ {
		clock.Advance(10 * time.Second)
		r = f.Report()
		peak = math.Max(peak, r.Alt)
		if r.Hdg < 0 || r.Hdg >= 360 {
			t.Fatalf("heading out of range: %v", r.Hdg)
		}
	}

	if peak != cfg.CruiseAltitudeM {
		t.Errorf("Expected to reach cruise altitude %v, peaked at %v", cfg.CruiseAltitudeM, peak)
	}
	if r.Spd != 0 || r.Alt != 0 {
		t.Fatalf("Expected to have landed, got spd=%v alt=%v", r.Spd, r.Alt)
	}
	if *r.Lat != cfg.DestinationLat || *r.Lon != cfg.DestinationLon {
		t.Errorf("Expected destination position, got %v,%v", *r.Lat, *r.Lon)
	}

	// Statute miles flown should be close to the great-circle distance
	miles := total * 1.150779
	if math.Abs(r.Dst-miles) > miles*0.02 {
		t.Errorf("Expected about %.0f miles, got %.0f", miles, r.Dst)
	}

	// Elapsed time keeps running at the gate
	landed := r.TEl
	clock.Advance(time.Minute)
	if got := f.Report(); got.TEl != landed+60 || got.Dst != r.Dst {
		t.Errorf("Expected only elapsed time to change after landing, got %+v", got)
	}
}

func TestServeHTTPWithTelemetryClient(t *testing.T) {
	f, clock := testFlight(t)
	srv := httptest.NewServer(f)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard CORS header, got %q", got)
	}

	clock.Advance(30 * time.Second)
	client := telemetry.NewClient(srv.URL, time.Second, logger.NewNop())
	report, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if report.TEl != 30 || report.DestName != "Seattle" {
		t.Errorf("Unexpected report: %+v", report)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}
