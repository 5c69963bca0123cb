package domain

import "time"

// ─── Reward Journal ─────────────────────────────────────────────────────────
// Every applied event is journaled once, keyed by its event ID, so a
// replayed or resubmitted event can never be credited twice.

// LedgerEntry is a single row in the reward journal.
type LedgerEntry struct {
	EventID    string        `json:"event_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Category   EventCategory `json:"category"`
	Credits    int64         `json:"credits"`
	Uridium    int64         `json:"uridium"`
	Honor      int64         `json:"honor"`
	Experience int64         `json:"experience"`
	Level      int           `json:"level,omitempty"` // level reached, 0 if no level-up
}

// NewLedgerEntry builds the journal row for an applied result.
func NewLedgerEntry(ev Event, res RewardResult, at time.Time) LedgerEntry {
	e := LedgerEntry{
		EventID:    ev.ID,
		Timestamp:  at,
		Category:   ev.Category,
		Credits:    res.Credits,
		Uridium:    res.Uridium,
		Honor:      res.Honor,
		Experience: res.Experience,
	}
	if res.LevelUp != nil {
		e.Level = res.LevelUp.Level
	}
	return e
}
