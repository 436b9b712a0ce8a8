package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Telemetry TelemetryConfig `toml:"telemetry"` // Telemetry endpoint polling settings
	Overlay   OverlayConfig   `toml:"overlay"`   // Display rotation and map settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	Mock      MockConfig      `toml:"mock"`      // Mock telemetry source settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the overlay page and API
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout, recommended for websockets)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory holding the overlay page (e.g., "www")
	OpenBrowser        bool     `toml:"open_browser"`          // Open the overlay page in the default browser on start
}

// TelemetryConfig contains settings for the simulator telemetry endpoint
type TelemetryConfig struct {
	SourceURL      string `toml:"source_url"`       // URL of the telemetry endpoint (e.g., http://127.0.0.1:1234)
	PollIntervalMs int    `toml:"poll_interval_ms"` // How often to poll the endpoint
	TimeoutMs      int    `toml:"timeout_ms"`       // HTTP timeout for a single poll
	Async          bool   `toml:"async"`            // Fetch off the scheduler so a slow endpoint never delays the display
}

// OverlayConfig contains the display rotation and map timing
type OverlayConfig struct {
	MapIntervalMs       int     `toml:"map_interval_ms"`        // Map refresh interval
	DisplayIntervalMs   int     `toml:"display_interval_ms"`    // Readout refresh interval
	SpeedMultiplier     float64 `toml:"speed_multiplier"`       // Time-info rotation speed relative to the display interval
	TimeInfoCycleSecs   int     `toml:"time_info_cycle_secs"`   // Seconds per time-info phase
	FlightDataCycleSecs int     `toml:"flight_data_cycle_secs"` // Seconds per flight-data phase
	ZoomCycleSecs       []int   `toml:"zoom_cycle_secs"`        // Seconds for the regional, global and max zoom-out phases
	HeadingReference    string  `toml:"heading_reference"`      // "true" or "magnetic"
	Deviation           string  `toml:"deviation"`              // "none" or "random"
	DeviationSeed       uint64  `toml:"deviation_seed"`         // Seed for the random deviation (0 = seed from the clock)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`        // Log level: "debug", "info", "warn", or "error"
	Format     string `toml:"format"`       // Log format: "json" (structured) or "console" (human-readable)
	File       string `toml:"file"`         // Optional log file, rotated by size (empty = stderr only)
	MaxSizeMB  int    `toml:"max_size_mb"`  // Size at which the log file is rotated
	MaxBackups int    `toml:"max_backups"`  // Rotated files to keep
	MaxAgeDays int    `toml:"max_age_days"` // Days to keep rotated files
}

// MockConfig describes the simulated flight served by the mock telemetry source
type MockConfig struct {
	Listen          string  `toml:"listen"`            // Address to serve the telemetry JSON on
	DestinationName string  `toml:"destination_name"`  // Destination shown as "Time to <name>"
	OriginLat       float64 `toml:"origin_lat"`        // Departure latitude
	OriginLon       float64 `toml:"origin_lon"`        // Departure longitude
	DestinationLat  float64 `toml:"destination_lat"`   // Destination latitude
	DestinationLon  float64 `toml:"destination_lon"`   // Destination longitude
	CruiseAltitudeM float64 `toml:"cruise_altitude_m"` // Cruise altitude in metres
	CruiseSpeedKts  float64 `toml:"cruise_speed_kts"`  // Ground speed at cruise
	TimeScale       float64 `toml:"time_scale"`        // Sim seconds per wall-clock second

	DepHH     int `toml:"dep_hh"`      // Departure clock time, hours
	DepMM     int `toml:"dep_mm"`      // Departure clock time, minutes
	DepGMTHH  int `toml:"dep_gmt_hh"`  // Departure GMT offset hours
	DepGMTMM  int `toml:"dep_gmt_mm"`  // Departure GMT offset minutes
	FltHH     int `toml:"flt_hh"`      // Scheduled flight duration, hours
	FltMM     int `toml:"flt_mm"`      // Scheduled flight duration, minutes
	DestGMTHH int `toml:"dest_gmt_hh"` // Destination GMT offset hours
	DestGMTMM int `toml:"dest_gmt_mm"` // Destination GMT offset minutes
}

// Default returns a runnable configuration for a local setup without a config file
func Default() *Config {
	c := &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Mock: MockConfig{
			DestinationName: "Seattle",
			OriginLat:       40.6413,
			OriginLon:       -73.7781,
			DestinationLat:  47.4502,
			DestinationLon:  -122.3088,
			DepHH:           14,
			DepMM:           30,
			DepGMTHH:        -5,
			FltHH:           5,
			FltMM:           45,
			DestGMTHH:       -8,
		},
	}
	// Defaults above never fail validation
	_ = c.applyDefaults()
	return c
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			// File exists, try to load it
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and fills in defaults for unset values
func (c *Config) Validate() error {
	if err := c.applyDefaults(); err != nil {
		return err
	}

	// Validate static files directory exists
	if _, err := os.Stat(c.Server.StaticFilesDir); os.IsNotExist(err) {
		return fmt.Errorf("static files directory does not exist: %s", c.Server.StaticFilesDir)
	}

	return nil
}

// ValidateHeadless validates everything except the static files directory, for commands
// that do not serve the overlay page
func (c *Config) ValidateHeadless() error {
	return c.applyDefaults()
}

func (c *Config) applyDefaults() error {
	// Validate server config
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.StaticFilesDir == "" {
		c.Server.StaticFilesDir = "www"
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 60
	}

	if err := c.ValidateTelemetry(); err != nil {
		return err
	}
	if err := c.ValidateOverlay(); err != nil {
		return err
	}
	if err := c.ValidateLogging(); err != nil {
		return err
	}
	return c.ValidateMock()
}

// ValidateTelemetry validates the telemetry endpoint configuration
func (c *Config) ValidateTelemetry() error {
	if c.Telemetry.SourceURL == "" {
		c.Telemetry.SourceURL = "http://127.0.0.1:1234"
	}
	u, err := url.Parse(c.Telemetry.SourceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid telemetry source_url: %q", c.Telemetry.SourceURL)
	}

	if c.Telemetry.PollIntervalMs == 0 {
		c.Telemetry.PollIntervalMs = 250
	}
	if c.Telemetry.PollIntervalMs < 0 {
		return fmt.Errorf("invalid poll_interval_ms: %d", c.Telemetry.PollIntervalMs)
	}
	if c.Telemetry.TimeoutMs == 0 {
		c.Telemetry.TimeoutMs = 2000
	}
	if c.Telemetry.TimeoutMs < 0 {
		return fmt.Errorf("invalid timeout_ms: %d", c.Telemetry.TimeoutMs)
	}
	return nil
}

// ValidateOverlay validates the overlay timing configuration
func (c *Config) ValidateOverlay() error {
	o := &c.Overlay

	if o.MapIntervalMs == 0 {
		o.MapIntervalMs = 250
	}
	if o.DisplayIntervalMs == 0 {
		o.DisplayIntervalMs = 250
	}
	if o.MapIntervalMs < 0 || o.DisplayIntervalMs < 0 {
		return fmt.Errorf("overlay intervals must be positive (map %d, display %d)", o.MapIntervalMs, o.DisplayIntervalMs)
	}

	if o.SpeedMultiplier == 0 {
		o.SpeedMultiplier = 2
	}
	if o.SpeedMultiplier < 0 {
		return fmt.Errorf("invalid speed_multiplier: %v", o.SpeedMultiplier)
	}

	if o.TimeInfoCycleSecs == 0 {
		o.TimeInfoCycleSecs = 20
	}
	if o.FlightDataCycleSecs == 0 {
		o.FlightDataCycleSecs = 10
	}
	if o.TimeInfoCycleSecs < 0 || o.FlightDataCycleSecs < 0 {
		return fmt.Errorf("rotation cycles must be positive")
	}

	if len(o.ZoomCycleSecs) == 0 {
		o.ZoomCycleSecs = []int{60, 30, 30}
	}
	if len(o.ZoomCycleSecs) != 3 {
		return fmt.Errorf("zoom_cycle_secs needs 3 entries (regional, global, max zoom-out), got %d", len(o.ZoomCycleSecs))
	}
	for _, secs := range o.ZoomCycleSecs {
		if secs <= 0 {
			return fmt.Errorf("invalid zoom cycle: %d", secs)
		}
	}

	o.HeadingReference = strings.ToLower(o.HeadingReference)
	switch o.HeadingReference {
	case "":
		o.HeadingReference = "true"
	case "true", "magnetic":
	default:
		return fmt.Errorf("invalid heading_reference: %s (must be 'true' or 'magnetic')", o.HeadingReference)
	}

	switch o.Deviation {
	case "":
		o.Deviation = "none"
	case "none", "random":
	default:
		return fmt.Errorf("invalid deviation: %s (must be 'none' or 'random')", o.Deviation)
	}
	return nil
}

// ValidateLogging validates the logging configuration
func (c *Config) ValidateLogging() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB <= 0 {
			c.Logging.MaxSizeMB = 10
		}
		if c.Logging.MaxBackups <= 0 {
			c.Logging.MaxBackups = 3
		}
		if c.Logging.MaxAgeDays <= 0 {
			c.Logging.MaxAgeDays = 7
		}
	}
	return nil
}

// ValidateMock validates the mock telemetry source configuration
func (c *Config) ValidateMock() error {
	m := &c.Mock
	if m.Listen == "" {
		m.Listen = "127.0.0.1:1234"
	}
	if m.CruiseAltitudeM == 0 {
		m.CruiseAltitudeM = 10668
	}
	if m.CruiseSpeedKts == 0 {
		m.CruiseSpeedKts = 450
	}
	if m.TimeScale == 0 {
		m.TimeScale = 1
	}
	if m.CruiseSpeedKts < 0 || m.TimeScale < 0 || m.CruiseAltitudeM < 0 {
		return fmt.Errorf("mock speed, altitude and time scale must be positive")
	}

	if m.OriginLat < -90 || m.OriginLat > 90 || m.DestinationLat < -90 || m.DestinationLat > 90 {
		return fmt.Errorf("mock latitudes must be within [-90, 90]")
	}
	if m.OriginLon < -180 || m.OriginLon > 180 || m.DestinationLon < -180 || m.DestinationLon > 180 {
		return fmt.Errorf("mock longitudes must be within [-180, 180]")
	}
	if m.DepHH < 0 || m.DepHH > 23 || m.DepMM < 0 || m.DepMM > 59 {
		return fmt.Errorf("invalid mock departure time %02d:%02d", m.DepHH, m.DepMM)
	}
	return nil
}
