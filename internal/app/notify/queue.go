// Package notify implements the notification side of the reward pipeline:
// a tick-based transient message queue for the HUD and a broadcast hub for
// live reward feeds.
package notify

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starfront/starfront/internal/domain"
)

// CategoryLevelUp tags level-up notifications.
const CategoryLevelUp = "level_up"

// ErrNotFound is returned by MarkShown for an unknown or expired id.
var ErrNotFound = errors.New("notification not found")

// Notification is one transient HUD message.
type Notification struct {
	ID             string             `json:"id"`
	Message        string             `json:"message"`
	Category       string             `json:"category"`
	RemainingTicks int                `json:"remaining_ticks"`
	Level          int                `json:"level,omitempty"`
	Bonus          *domain.LevelBonus `json:"bonus,omitempty"`
	Shown          bool               `json:"shown"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Policy bounds the queue.
type Policy struct {
	MaxQueued    int // oldest entries are dropped beyond this
	LevelUpTicks int // display duration of level-up entries
}

// DefaultPolicy returns HUD defaults (60 ticks per second).
func DefaultPolicy() Policy {
	return Policy{
		MaxQueued:    50,
		LevelUpTicks: 300,
	}
}

// Queue holds live notifications in arrival order. It implements
// domain.NotificationSink. Safe for concurrent use: the reward loop writes,
// HTTP handlers read.
type Queue struct {
	mu     sync.Mutex
	policy Policy
	items  []Notification
	now    func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue(p Policy) *Queue {
	if p.MaxQueued <= 0 {
		p.MaxQueued = DefaultPolicy().MaxQueued
	}
	if p.LevelUpTicks <= 0 {
		p.LevelUpTicks = DefaultPolicy().LevelUpTicks
	}
	return &Queue{policy: p, now: time.Now}
}

// Policy returns the queue bounds.
func (q *Queue) Policy() Policy { return q.policy }

// Add enqueues a message for durationTicks ticks.
func (q *Queue) Add(message string, durationTicks int, category string) {
	q.push(Notification{
		Message:        message,
		Category:       category,
		RemainingTicks: durationTicks,
	})
}

// LevelUp enqueues a level-up message carrying the bonus.
func (q *Queue) LevelUp(level int, bonus domain.LevelBonus) {
	b := bonus
	q.push(Notification{
		Message:        fmt.Sprintf("Level %d!", level),
		Category:       CategoryLevelUp,
		RemainingTicks: q.policy.LevelUpTicks,
		Level:          level,
		Bonus:          &b,
	})
}

func (q *Queue) push(n Notification) {
	if n.RemainingTicks <= 0 {
		return
	}
	n.ID = uuid.NewString()
	n.CreatedAt = q.now()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if over := len(q.items) - q.policy.MaxQueued; over > 0 {
		q.items = append(q.items[:0], q.items[over:]...)
	}
}

// Tick advances every entry by one tick and drops expired ones.
// It returns the number of entries dropped.
func (q *Queue) Tick() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, n := range q.items {
		n.RemainingTicks--
		if n.RemainingTicks > 0 {
			kept = append(kept, n)
		}
	}
	dropped := len(q.items) - len(kept)
	q.items = kept
	return dropped
}

// Pending returns up to limit live entries, oldest first. limit <= 0 means all.
func (q *Queue) Pending(limit int) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if limit <= 0 || limit > len(q.items) {
		limit = len(q.items)
	}
	out := make([]Notification, limit)
	copy(out, q.items[:limit])
	return out
}

// MarkShown flags an entry as displayed.
func (q *Queue) MarkShown(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Shown = true
			return nil
		}
	}
	return ErrNotFound
}

// Len returns the number of live entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
