// Package mocksource serves simulated telemetry in the same shape as the simulator's overlay
// endpoint, so the overlay can be run and demoed without a simulator.
package mocksource

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/physics"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/pkg/logger"
)

// Flight profile
const (
	TaxiSeconds    = 120.0 // Taxi before takeoff
	TaxiSpeedKts   = 15.0
	ClimbRateMps   = 10.0 // Roughly 2000 ft/min
	DescentRateMps = 8.0
	arrivalNM      = 0.05
)

// Flight is a dead-reckoned great-circle flight between two points. Each request advances
// it by the simulator time passed since the previous request.
type Flight struct {
	cfg    config.MockConfig
	logger *logger.Logger
	clock  func() time.Time

	mu       sync.Mutex
	started  time.Time
	prevSim  float64 // Sim seconds at the previous request
	elapsed  float64 // Sim seconds since departure
	lat, lon float64
	altitude float64 // Metres
	heading  float64
	speed    float64
	miles    float64 // Statute miles travelled
	arrived  bool
}

// NewFlight creates a flight parked at the origin
func NewFlight(cfg config.MockConfig, loggerObj *logger.Logger) *Flight {
	return newFlight(cfg, loggerObj, time.Now)
}

func newFlight(cfg config.MockConfig, loggerObj *logger.Logger, clock func() time.Time) *Flight {
	f := &Flight{
		cfg:     cfg,
		logger:  loggerObj.Named("mock-flight"),
		clock:   clock,
		started: clock(),
		lat:     cfg.OriginLat,
		lon:     cfg.OriginLon,
	}
	f.heading = physics.Bearing(f.lat, f.lon, cfg.DestinationLat, cfg.DestinationLon)
	return f
}

// Report advances the flight to the current sim time and returns the telemetry for it
func (f *Flight) Report() *telemetry.Report {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock().Sub(f.started).Seconds() * f.cfg.TimeScale
	if now > f.prevSim {
		f.advance(now - f.prevSim)
	}
	f.prevSim = now

	lat, lon := f.lat, f.lon
	return &telemetry.Report{
		DestName:  f.cfg.DestinationName,
		DepHH:     f.cfg.DepHH,
		DepMM:     f.cfg.DepMM,
		DepGMTHH:  f.cfg.DepGMTHH,
		DepGMTMM:  f.cfg.DepGMTMM,
		FltHH:     f.cfg.FltHH,
		FltMM:     f.cfg.FltMM,
		DestGMTHH: f.cfg.DestGMTHH,
		DestGMTMM: f.cfg.DestGMTMM,
		Lat:       &lat,
		Lon:       &lon,
		Alt:       f.altitude,
		Hdg:       f.heading,
		Spd:       f.speed,
		Zul:       f.zulu(),
		Dst:       f.miles,
		TEl:       f.elapsed,
	}
}

// advance moves the aircraft forward by dt sim seconds
func (f *Flight) advance(dt float64) {
	f.elapsed += dt
	if f.arrived {
		return
	}

	remaining := physics.DistanceNM(f.lat, f.lon, f.cfg.DestinationLat, f.cfg.DestinationLon)
	f.speed = f.speedAt()
	f.miles += f.speed * physics.KnotsToMilesPerS * dt

	step := f.speed * dt / 3600
	if step >= remaining-arrivalNM {
		f.land()
		return
	}

	f.heading = physics.NormalizeHeading(physics.Bearing(f.lat, f.lon, f.cfg.DestinationLat, f.cfg.DestinationLon))
	f.lat, f.lon = physics.DestinationPoint(f.lat, f.lon, f.heading, step)
	f.altitude = f.altitudeAt(remaining - step)
}

func (f *Flight) land() {
	f.lat, f.lon = f.cfg.DestinationLat, f.cfg.DestinationLon
	f.altitude, f.speed = 0, 0
	f.arrived = true
	f.logger.Info("Mock flight arrived",
		logger.Float64("elapsed_seconds", f.elapsed),
		logger.Float64("miles", f.miles))
}

func (f *Flight) speedAt() float64 {
	if f.elapsed < TaxiSeconds {
		return TaxiSpeedKts
	}
	return f.cfg.CruiseSpeedKts
}

// altitudeAt climbs after the taxi and starts descending early enough to reach the ground
// at the destination
func (f *Flight) altitudeAt(remainingNM float64) float64 {
	if f.elapsed < TaxiSeconds {
		return 0
	}
	climb := (f.elapsed - TaxiSeconds) * ClimbRateMps
	secondsToGo := remainingNM / f.cfg.CruiseSpeedKts * 3600
	descent := secondsToGo * DescentRateMps
	return math.Max(0, math.Min(f.cfg.CruiseAltitudeM, math.Min(climb, descent)))
}

// zulu is the sim UTC time of day in seconds. Departure clock time is local to the origin.
func (f *Flight) zulu() float64 {
	depUTC := float64(f.cfg.DepHH*3600+f.cfg.DepMM*60) - float64(telemetry.GMTOffsetSeconds(f.cfg.DepGMTHH, f.cfg.DepGMTMM))
	return math.Mod(math.Mod(depUTC+f.elapsed, 86400)+86400, 86400)
}

// ServeHTTP answers every GET with the current report
func (f *Flight) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f.Report()); err != nil {
		f.logger.Error("Failed to encode report", logger.Error(err))
	}
}
