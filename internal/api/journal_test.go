package api

import (
	"sync"

	"github.com/starfront/starfront/internal/domain"
)

type memJournal struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
	seen    map[string]bool
}

func newMemJournal() *memJournal { return &memJournal{seen: make(map[string]bool)} }

func (j *memJournal) HasEvent(id string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seen[id], nil
}

func (j *memJournal) CommitEvent(_ string, e domain.LedgerEntry, _ domain.Account, _ int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.seen[e.EventID] {
		return domain.ErrEventDuplicate
	}
	j.seen[e.EventID] = true
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) SaveAccount(string, domain.Account, int64) error { return nil }

func (j *memJournal) RecentEvents(limit int) ([]domain.LedgerEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}

func (j *memJournal) JournalTotals() (domain.Account, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var a domain.Account
	for _, e := range j.entries {
		a.Credits += e.Credits
		a.Uridium += e.Uridium
		a.Honor += e.Honor
		a.Experience += e.Experience
	}
	return a, nil
}
