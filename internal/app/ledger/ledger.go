// Package ledger is the single authoritative owner of a player's currency
// balances. It is the only code path allowed to increment them.
//
// The ledger:
//  1. Credits positive amounts to credits, uridium, honor and experience
//  2. Delegates experience to an ExperienceTracker when one is installed
//  3. Forwards credits and uridium to a mirror store (best-effort)
//  4. Emits one notification per credited currency, then any level-up
//  5. Fires single-slot callbacks after balances are updated
//
// A Ledger is not safe for concurrent use. The surrounding game loop owns it
// and processes one event to completion before starting the next.
package ledger

import (
	"fmt"
	"math"

	"github.com/starfront/starfront/internal/domain"
)

const (
	// DefaultNotifyTicks is how long a reward notification stays visible.
	DefaultNotifyTicks = 180

	// NotifyCategory tags reward notifications for the sink.
	NotifyCategory = "reward"
)

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithTracker installs the leveling system. Pass nil for none.
func WithTracker(t domain.ExperienceTracker) Option {
	return func(l *Ledger) { l.tracker = t }
}

// WithMirror installs a secondary credits/uridium store. Pass nil for none.
func WithMirror(m domain.MirrorStore) Option {
	return func(l *Ledger) { l.mirror = m }
}

// WithSink installs the notification sink. Pass nil for none.
func WithSink(s domain.NotificationSink) Option {
	return func(l *Ledger) { l.sink = s }
}

// WithProfiles replaces the enemy reward table. A table without a generic
// entry keeps the built-in generic profile.
func WithProfiles(p map[string]domain.EnemyRewardProfile) Option {
	return func(l *Ledger) {
		if len(p) == 0 {
			return
		}
		profiles := make(map[string]domain.EnemyRewardProfile, len(p)+1)
		for k, v := range p {
			profiles[k] = v
		}
		if _, ok := profiles[domain.GenericEnemy]; !ok {
			profiles[domain.GenericEnemy] = DefaultProfiles()[domain.GenericEnemy]
		}
		l.profiles = profiles
	}
}

// WithNotifyTicks sets the notification display duration.
func WithNotifyTicks(ticks int) Option {
	return func(l *Ledger) {
		if ticks > 0 {
			l.notifyTicks = ticks
		}
	}
}

// Ledger owns the CurrencyAccount.
type Ledger struct {
	acct        domain.Account
	tracker     domain.ExperienceTracker
	mirror      domain.MirrorStore
	sink        domain.NotificationSink
	profiles    map[string]domain.EnemyRewardProfile
	notifyTicks int

	// Single-slot callbacks: the last registration wins.
	onReward  func(domain.RewardResult)
	onLevelUp func(domain.LevelUpRecord)
	onHonor   func(amount, total int64)
}

// New creates a ledger with zero balances.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		profiles:    DefaultProfiles(),
		notifyTicks: DefaultNotifyTicks,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ─── Accessors ──────────────────────────────────────────────────────────────

// Balance returns the balance of c.
func (l *Ledger) Balance(c domain.Currency) int64 { return l.acct.Get(c) }

// Snapshot returns a copy of the account.
func (l *Ledger) Snapshot() domain.Account { return l.acct }

// HasTracker reports whether a leveling system is installed.
func (l *Ledger) HasTracker() bool { return l.tracker != nil }

// ─── Callbacks ──────────────────────────────────────────────────────────────

// OnRewardGained sets the callback fired after each processed event.
// It replaces any previously registered callback.
func (l *Ledger) OnRewardGained(fn func(domain.RewardResult)) { l.onReward = fn }

// OnLevelUp sets the callback fired when experience crosses a level.
// It replaces any previously registered callback.
func (l *Ledger) OnLevelUp(fn func(domain.LevelUpRecord)) { l.onLevelUp = fn }

// OnHonorGained sets the callback fired after honor is credited, with the
// amount credited and the new total. It replaces any previous callback.
func (l *Ledger) OnHonorGained(fn func(amount, total int64)) { l.onHonor = fn }

// ─── Credit Operations ──────────────────────────────────────────────────────

// CreditCurrency adds amount to the balance of c and returns the amount
// applied. Non-positive amounts and unknown currencies are a no-op: nothing
// changes, no callback fires and 0 is returned. Crediting honor fires the
// honor-gained callback before returning.
func (l *Ledger) CreditCurrency(c domain.Currency, amount int64) int64 {
	applied := l.credit(c, amount)
	if c == domain.Honor && applied > 0 && l.onHonor != nil {
		l.onHonor(applied, l.acct.Honor)
	}
	return applied
}

// credit updates one balance and the mirror store. It fires no callbacks.
func (l *Ledger) credit(c domain.Currency, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	bal := l.balancePtr(c)
	if bal == nil {
		return 0
	}

	// Saturate instead of wrapping; the applied amount reports the truth.
	if amount > math.MaxInt64-*bal {
		amount = math.MaxInt64 - *bal
		if amount == 0 {
			return 0
		}
	}
	*bal += amount

	if l.mirror != nil {
		switch c {
		case domain.Credits:
			l.mirror.AddCredits(amount)
		case domain.Uridium:
			l.mirror.AddUridium(amount)
		}
	}
	return amount
}

func (l *Ledger) balancePtr(c domain.Currency) *int64 {
	switch c {
	case domain.Credits:
		return &l.acct.Credits
	case domain.Uridium:
		return &l.acct.Uridium
	case domain.Honor:
		return &l.acct.Honor
	case domain.Experience:
		return &l.acct.Experience
	}
	return nil
}

// experienceReader is implemented by trackers that expose their total, so
// the result can report the experience actually applied.
type experienceReader interface {
	Experience() int64
}

// ApplyRewardBundle credits every currency of b in fixed order and reports
// what was applied. Experience goes to the tracker when one is installed;
// otherwise it accumulates on the raw balance with no level-up. The
// honor-gained and level-up callbacks fire once, after every balance of the
// bundle has been updated.
func (l *Ledger) ApplyRewardBundle(b domain.RewardBundle) domain.RewardResult {
	var res domain.RewardResult
	for _, c := range domain.Currencies {
		if c == domain.Experience && l.tracker != nil {
			res.Experience, res.LevelUp = l.addExperience(b.Amount(c))
			continue
		}
		res.Set(c, l.credit(c, b.Amount(c)))
	}

	if res.Honor > 0 && l.onHonor != nil {
		l.onHonor(res.Honor, l.acct.Honor)
	}
	if res.LevelUp != nil && l.onLevelUp != nil {
		l.onLevelUp(*res.LevelUp)
	}
	return res
}

func (l *Ledger) addExperience(amount int64) (int64, *domain.LevelUpRecord) {
	if amount <= 0 {
		return 0, nil
	}
	er, exact := l.tracker.(experienceReader)
	var before int64
	if exact {
		before = er.Experience()
	}
	rec := l.tracker.AddExperience(amount)
	if exact {
		amount = er.Experience() - before
	}
	return amount, rec
}

// NotifyResult emits one "+{amount} {Label}" notification per credited
// currency in fixed order, then the level-up, if a sink is installed.
func (l *Ledger) NotifyResult(res domain.RewardResult) {
	if l.sink == nil {
		return
	}
	for _, c := range domain.Currencies {
		if n := res.Amount(c); n > 0 {
			l.sink.Add(FormatReward(c, n), l.notifyTicks, NotifyCategory)
		}
	}
	if res.LevelUp != nil {
		l.sink.LevelUp(res.LevelUp.Level, res.LevelUp.Bonus)
	}
}

// FormatReward renders a reward line item.
func FormatReward(c domain.Currency, amount int64) string {
	return fmt.Sprintf("+%d %s", amount, c.Label())
}
