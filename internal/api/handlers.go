package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/internal/websocket"
	"github.com/yegors/flight-overlay/pkg/logger"
)

// StatusFunc reports telemetry poll health
type StatusFunc func() telemetry.Status

// Handler contains the API handlers
type Handler struct {
	frames   *FrameCache
	status   StatusFunc
	config   *config.Config
	wsServer *websocket.Server
	logger   *logger.Logger
	started  time.Time
}

// NewHandler creates a new API handler
func NewHandler(frames *FrameCache, status StatusFunc, cfg *config.Config, wsServer *websocket.Server, loggerObj *logger.Logger) *Handler {
	return &Handler{
		frames:   frames,
		status:   status,
		config:   cfg,
		wsServer: wsServer,
		logger:   loggerObj.Named("api-handler"),
		started:  time.Now(),
	}
}

// GetHealth returns the health status of the API and the telemetry feed
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	var st telemetry.Status
	if h.status != nil {
		st = h.status()
	}

	state := "ok"
	switch {
	case st.LastSuccess.IsZero():
		state = "waiting"
	case !st.Healthy:
		state = "degraded"
	}

	clients := 0
	if h.wsServer != nil {
		clients = h.wsServer.ClientCount()
	}

	response := map[string]interface{}{
		"status":               state,
		"last_success":         st.LastSuccess,
		"last_attempt":         st.LastAttempt,
		"consecutive_failures": st.ConsecutiveFailures,
		"total_polls":          st.TotalPolls,
		"track_points":         len(h.frames.Track()),
		"websocket_clients":    clients,
		"uptime_seconds":       int(time.Since(h.started).Seconds()),
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetConfig returns the public configuration the overlay page needs
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	o := h.config.Overlay
	publicConfig := map[string]interface{}{
		"telemetry": map[string]interface{}{
			"source_url":       h.config.Telemetry.SourceURL,
			"poll_interval_ms": h.config.Telemetry.PollIntervalMs,
		},
		"overlay": map[string]interface{}{
			"map_interval_ms":        o.MapIntervalMs,
			"display_interval_ms":    o.DisplayIntervalMs,
			"speed_multiplier":       o.SpeedMultiplier,
			"time_info_cycle_secs":   o.TimeInfoCycleSecs,
			"flight_data_cycle_secs": o.FlightDataCycleSecs,
			"zoom_cycle_secs":        o.ZoomCycleSecs,
			"heading_reference":      o.HeadingReference,
			"deviation":              o.Deviation,
		},
	}

	WriteJSON(w, http.StatusOK, publicConfig)
}

// GetOverlay returns the latest display and map frames
func (h *Handler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	readouts, ok := h.frames.Readouts()
	if !ok {
		http.Error(w, "No overlay frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	response := map[string]interface{}{
		"readouts": readouts,
	}
	if view, ok := h.frames.View(); ok {
		response["view"] = view
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetTrack returns the whole flown track
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	track := h.frames.Track()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(track),
		"points": track,
	})
}

// GetSnapshot returns the latest applied telemetry
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.frames.Snapshot()
	if !ok {
		http.Error(w, "No telemetry received yet", http.StatusServiceUnavailable)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
