package orchestrator

import (
	"encoding/json"
	"sync"
)

const (
	EventStageStarted  = "stage_started"
	EventStageFinished = "stage_finished"
	EventStageFailed   = "stage_failed"
	EventSessionState  = "session_state"
	EventPlan          = "plan"
)

// Event is a generic SSE payload wrapper.
type Event struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	Payload   any    `json:"payload,omitempty"`
}

type subscriber chan []byte

// Hub fans JSON-encoded events out to subscribers of a session.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[subscriber]struct{} // sessionID -> set of subscribers
	closed bool
}

func NewHub() *Hub { return &Hub{subs: map[string]map[subscriber]struct{}{}} }

// Subscribe returns a channel of encoded events for sessionID. The caller must
// call the returned func when done. After Close the channel is already closed.
func (h *Hub) Subscribe(sessionID string) (<-chan []byte, func()) {
	ch := make(subscriber, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	set := h.subs[sessionID]
	if set == nil {
		set = map[subscriber]struct{}{}
		h.subs[sessionID] = set
	}
	set[ch] = struct{}{}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			set, ok := h.subs[sessionID]
			if !ok {
				return
			}
			if _, ok := set[ch]; !ok {
				return
			}
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Close ends every subscription so streaming handlers return. The hub drops
// later publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, id)
	}
}

// Publish is nil-safe and never blocks; slow subscribers miss events.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	for ch := range h.subs[ev.SessionID] {
		select {
		case ch <- b:
		default:
		}
	}
	h.mu.RUnlock()
}
