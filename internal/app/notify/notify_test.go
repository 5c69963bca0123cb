package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/starfront/starfront/internal/domain"
)

// ─── Queue ──────────────────────────────────────────────────────────────────

func TestQueue_AddAndPending(t *testing.T) {
	q := NewQueue(DefaultPolicy())
	q.Add("+500 Credits", 180, "reward")
	q.Add("+2 Uridium", 180, "reward")

	got := q.Pending(0)
	if len(got) != 2 {
		t.Fatalf("Pending() returned %d, want 2", len(got))
	}
	if got[0].Message != "+500 Credits" || got[1].Message != "+2 Uridium" {
		t.Errorf("order = %q, %q", got[0].Message, got[1].Message)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Error("notifications need distinct ids")
	}
}

func TestQueue_PendingLimit(t *testing.T) {
	q := NewQueue(DefaultPolicy())
	for i := 0; i < 5; i++ {
		q.Add("x", 10, "reward")
	}
	if got := q.Pending(3); len(got) != 3 {
		t.Errorf("Pending(3) returned %d", len(got))
	}
}

func TestQueue_ZeroDurationDropped(t *testing.T) {
	q := NewQueue(DefaultPolicy())
	q.Add("never shown", 0, "reward")
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_TickExpires(t *testing.T) {
	q := NewQueue(DefaultPolicy())
	q.Add("short", 1, "reward")
	q.Add("long", 3, "reward")

	if dropped := q.Tick(); dropped != 1 {
		t.Errorf("first Tick() dropped %d, want 1", dropped)
	}
	if q.Len() != 1 || q.Pending(0)[0].RemainingTicks != 2 {
		t.Errorf("after tick: %+v", q.Pending(0))
	}
	q.Tick()
	q.Tick()
	if q.Len() != 0 {
		t.Errorf("Len() after expiry = %d, want 0", q.Len())
	}
}

func TestQueue_MaxQueuedDropsOldest(t *testing.T) {
	q := NewQueue(Policy{MaxQueued: 2, LevelUpTicks: 10})
	q.Add("a", 10, "reward")
	q.Add("b", 10, "reward")
	q.Add("c", 10, "reward")

	got := q.Pending(0)
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Errorf("Pending() = %+v, want [b c]", got)
	}
}

func TestQueue_LevelUp(t *testing.T) {
	q := NewQueue(DefaultPolicy())
	q.LevelUp(7, domain.LevelBonus{Credits: 7000})

	got := q.Pending(0)
	if len(got) != 1 {
		t.Fatalf("Pending() returned %d", len(got))
	}
	n := got[0]
	if n.Category != CategoryLevelUp || n.Level != 7 || n.Message != "Level 7!" {
		t.Errorf("level-up notification = %+v", n)
	}
	if n.Bonus == nil || n.Bonus.Credits != 7000 {
		t.Errorf("bonus = %+v", n.Bonus)
	}
	if n.RemainingTicks != DefaultPolicy().LevelUpTicks {
		t.Errorf("RemainingTicks = %d", n.RemainingTicks)
	}
}

func TestQueue_MarkShown(t *testing.T) {
	q := NewQueue(DefaultPolicy())
	q.Add("a", 10, "reward")
	id := q.Pending(0)[0].ID

	if err := q.MarkShown(id); err != nil {
		t.Fatalf("MarkShown() error: %v", err)
	}
	if !q.Pending(0)[0].Shown {
		t.Error("notification should be marked shown")
	}
	if err := q.MarkShown("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkShown(missing) = %v, want ErrNotFound", err)
	}
}

// ─── Hub ────────────────────────────────────────────────────────────────────

func TestHub_BroadcastToSubscribers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()
	defer unsub()

	ev := NewRewardEvent(
		domain.Event{ID: "ev-1", Category: domain.EventEnemyKill},
		domain.RewardResult{Credits: 500, LevelUp: &domain.LevelUpRecord{Level: 3}},
		domain.Account{Credits: 1500},
		time.Unix(1700000000, 0),
	)
	h.Broadcast(ev)

	select {
	case data := <-ch:
		var got RewardEvent
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.EventID != "ev-1" || got.Credits != 500 || got.Level != 3 || got.Balances.Credits != 1500 {
			t.Errorf("event = %+v", got)
		}
	default:
		t.Fatal("subscriber received nothing")
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	_, unsub := h.Subscribe()
	if h.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", h.ClientCount())
	}
	unsub()
	unsub()
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", h.ClientCount())
	}
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, unsub := h.Subscribe()
	defer unsub()

	for i := 0; i < 100; i++ {
		h.Broadcast(RewardEvent{Type: "reward"})
	}
}
