package cache

import "sync"

// HoverState holds the single hovered station id. At most one station is
// hovered at a time; the pointer-enter/leave handlers are the only writers
// and the content builder path is the only reader.
type HoverState struct {
	mu sync.RWMutex
	id string
}

// NewHoverState creates an empty hover state.
func NewHoverState() *HoverState {
	return &HoverState{}
}

// Enter records the station as hovered, replacing any previous one.
func (h *HoverState) Enter(stationID string) {
	h.mu.Lock()
	h.id = stationID
	h.mu.Unlock()
}

// Leave clears the hover if it still belongs to the given station. A stale
// leave (pointer already entered another marker) is a no-op.
func (h *HoverState) Leave(stationID string) {
	h.mu.Lock()
	if h.id == stationID {
		h.id = ""
	}
	h.mu.Unlock()
}

// Current returns the hovered station id, if any.
func (h *HoverState) Current() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id, h.id != ""
}

// Is reports whether the given station is the hovered one.
func (h *HoverState) Is(stationID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id == stationID && stationID != ""
}

// Reset clears the hover unconditionally.
func (h *HoverState) Reset() {
	h.mu.Lock()
	h.id = ""
	h.mu.Unlock()
}
