package api

import (
	"sync"

	"github.com/mohae/deepcopy"
	"github.com/yegors/flight-overlay/internal/overlay"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/internal/websocket"
)

// Broadcaster pushes a message to every connected overlay page
type Broadcaster interface {
	Broadcast(message *websocket.Message) bool
}

// OverlayState is everything a freshly connected page needs to catch up
type OverlayState struct {
	Readouts *overlay.Readouts   `json:"readouts"`
	View     *overlay.MapView    `json:"view"`
	Track    []telemetry.LatLon  `json:"track"`
	Snapshot *telemetry.Snapshot `json:"snapshot,omitempty"`
}

// FrameCache is the display and map port of the server. It keeps the latest frame of each
// kind plus the whole track for HTTP readers and forwards every frame to the websocket hub.
// The engine writes it from the scheduler goroutine; handlers read it from their own.
type FrameCache struct {
	mu       sync.RWMutex
	readouts *overlay.Readouts
	view     *overlay.MapView
	track    overlay.Track
	snapshot *telemetry.Snapshot

	broadcaster Broadcaster
}

// NewFrameCache creates a frame cache. broadcaster may be nil.
func NewFrameCache(broadcaster Broadcaster) *FrameCache {
	return &FrameCache{broadcaster: broadcaster}
}

// SetReadouts stores and broadcasts a display frame
func (f *FrameCache) SetReadouts(r overlay.Readouts) {
	f.mu.Lock()
	f.readouts = &r
	f.mu.Unlock()

	f.broadcast(websocket.MessageTypeDisplayUpdate, map[string]any{"readouts": r})
}

// SetView stores a map frame, extends the track and broadcasts the frame
func (f *FrameCache) SetView(v overlay.MapView) {
	f.mu.Lock()
	f.view = &v
	f.track.Append(v.Point)
	f.mu.Unlock()

	f.broadcast(websocket.MessageTypeMapUpdate, map[string]any{"view": v})
}

// SetSnapshot stores the telemetry the last display frame was rendered from
func (f *FrameCache) SetSnapshot(s telemetry.Snapshot) {
	f.mu.Lock()
	f.snapshot = &s
	f.mu.Unlock()
}

// Readouts returns the latest display frame
func (f *FrameCache) Readouts() (overlay.Readouts, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.readouts == nil {
		return overlay.Readouts{}, false
	}
	return *f.readouts, true
}

// View returns the latest map frame
func (f *FrameCache) View() (overlay.MapView, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.view == nil {
		return overlay.MapView{}, false
	}
	return *f.view, true
}

// Snapshot returns a copy of the latest published telemetry
func (f *FrameCache) Snapshot() (telemetry.Snapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.snapshot == nil {
		return telemetry.Snapshot{}, false
	}
	return deepcopy.Copy(*f.snapshot).(telemetry.Snapshot), true
}

// Track returns a copy of the flown track
func (f *FrameCache) Track() []telemetry.LatLon {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.track.Points()
}

// State returns a deep copy of everything cached
func (f *FrameCache) State() OverlayState {
	f.mu.RLock()
	state := OverlayState{
		Readouts: f.readouts,
		View:     f.view,
		Track:    f.track.Points(),
		Snapshot: f.snapshot,
	}
	out := deepcopy.Copy(state).(OverlayState)
	f.mu.RUnlock()
	return out
}

func (f *FrameCache) broadcast(messageType string, data map[string]any) {
	if f.broadcaster == nil {
		return
	}
	f.broadcaster.Broadcast(&websocket.Message{Type: messageType, Data: data})
}
