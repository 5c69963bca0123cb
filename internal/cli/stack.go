package cli

import (
	"github.com/starfront/starfront/internal/app/ledger"
	"github.com/starfront/starfront/internal/app/notify"
	"github.com/starfront/starfront/internal/app/progression"
	"github.com/starfront/starfront/internal/daemon"
	"github.com/starfront/starfront/internal/domain"
)

// stack is a ledger with its progression collaborators.
type stack struct {
	ledger  *ledger.Ledger
	tracker *progression.LevelTracker // nil when leveling is off
	ranks   *progression.Table
	queue   *notify.Queue

	applied    map[string]bool // event ids already in the ledger
	appliedIDs []string        // same ids, in apply order
}

// buildStack assembles the ledger the way cfg and tu describe it. extra
// options are applied last.
func buildStack(cfg daemon.Config, tu daemon.Tuning, extra ...ledger.Option) (*stack, error) {
	ranks, err := tu.RankTable()
	if err != nil {
		return nil, err
	}
	queue := notify.NewQueue(notify.Policy{
		MaxQueued:    cfg.Notify.MaxQueued,
		LevelUpTicks: cfg.Notify.LevelUpTicks,
	})

	s := &stack{ranks: ranks, queue: queue, applied: make(map[string]bool)}
	opts := []ledger.Option{
		ledger.WithSink(queue),
		ledger.WithNotifyTicks(cfg.Notify.Ticks),
		ledger.WithProfiles(tu.Enemies),
	}
	if cfg.Ledger.Leveling {
		tracker, err := tu.LevelTracker()
		if err != nil {
			return nil, err
		}
		s.tracker = tracker
		opts = append(opts, ledger.WithTracker(tracker))
	}
	s.ledger = ledger.New(append(opts, extra...)...)
	return s, nil
}

// restore loads an account and tracker experience without side effects.
func (s *stack) restore(acct domain.Account, levelXP int64) {
	ledger.Load(s.ledger, ledger.SnapshotOf(acct))
	if s.tracker != nil {
		s.tracker.Restore(levelXP)
	}
}

// levelXP returns the tracker experience, 0 without a tracker.
func (s *stack) levelXP() int64 {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.Experience()
}

// markApplied records id as applied. It reports false when id was seen
// before.
func (s *stack) markApplied(id string) bool {
	if s.applied[id] {
		return false
	}
	s.applied[id] = true
	s.appliedIDs = append(s.appliedIDs, id)
	return true
}
