package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/starfront/starfront/internal/domain"
)

// ─── Live Reward Feed ───────────────────────────────────────────────────────
// Delivered as JSON: {type: "reward", event_id, category, credits, ...}.

// RewardEvent is one processed reward, as broadcast to live subscribers.
type RewardEvent struct {
	Type       string               `json:"type"` // "reward"
	EventID    string               `json:"event_id"`
	Category   domain.EventCategory `json:"category"`
	Credits    int64                `json:"credits"`
	Uridium    int64                `json:"uridium"`
	Honor      int64                `json:"honor"`
	Experience int64                `json:"experience"`
	Level      int                  `json:"level,omitempty"`
	Balances   domain.Account       `json:"balances"`
	Timestamp  int64                `json:"timestamp"` // Unix epoch
}

// NewRewardEvent builds the feed payload for an applied event.
func NewRewardEvent(ev domain.Event, res domain.RewardResult, bal domain.Account, at time.Time) RewardEvent {
	out := RewardEvent{
		Type:       "reward",
		EventID:    ev.ID,
		Category:   ev.Category,
		Credits:    res.Credits,
		Uridium:    res.Uridium,
		Honor:      res.Honor,
		Experience: res.Experience,
		Balances:   bal,
		Timestamp:  at.Unix(),
	}
	if res.LevelUp != nil {
		out.Level = res.LevelUp.Level
	}
	return out
}

// Hub fans reward events out to live subscribers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewHub creates an empty broadcast hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

// Broadcast sends an event to every subscriber. It never blocks: a client
// whose buffer is full misses the event.
func (h *Hub) Broadcast(event RewardEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Client too slow, drop message
		}
	}
}

// Subscribe registers a new client. Returns the channel and an unsubscribe func.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 32)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
