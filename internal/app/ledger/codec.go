package ledger

import "github.com/starfront/starfront/internal/domain"

// ─── Persistence Codec ──────────────────────────────────────────────────────
// Save data is a flat record of the four balances. A field missing from a
// snapshot means "leave unchanged", never "reset to zero".

// Snapshot is the persisted form of an account. Nil fields are absent.
type Snapshot struct {
	Credits    *int64 `json:"credits,omitempty"`
	Uridium    *int64 `json:"uridium,omitempty"`
	Honor      *int64 `json:"honor,omitempty"`
	Experience *int64 `json:"experience,omitempty"`
}

// SnapshotOf returns a complete snapshot of acct.
func SnapshotOf(acct domain.Account) Snapshot {
	c, u, h, e := acct.Credits, acct.Uridium, acct.Honor, acct.Experience
	return Snapshot{Credits: &c, Uridium: &u, Honor: &h, Experience: &e}
}

// Field returns the value for c and whether it is present.
func (s Snapshot) Field(c domain.Currency) (int64, bool) {
	var p *int64
	switch c {
	case domain.Credits:
		p = s.Credits
	case domain.Uridium:
		p = s.Uridium
	case domain.Honor:
		p = s.Honor
	case domain.Experience:
		p = s.Experience
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Save copies exactly the four balance fields out of l.
func Save(l *Ledger) Snapshot {
	return SnapshotOf(l.Snapshot())
}

// Load writes back the fields present in s. Negative values are clamped to
// 0. Loading the same snapshot twice yields the same state.
func Load(l *Ledger, s Snapshot) {
	l.Restore(s)
}

// Restore applies a partial snapshot. It fires no callbacks, sends nothing
// to the mirror store and emits no notifications.
func (l *Ledger) Restore(s Snapshot) {
	for _, c := range domain.Currencies {
		v, ok := s.Field(c)
		if !ok {
			continue
		}
		if v < 0 {
			v = 0
		}
		*l.balancePtr(c) = v
	}
}
