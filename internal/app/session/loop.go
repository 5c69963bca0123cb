// Package session hosts a Ledger behind a single-writer event loop.
//
// Every mutation and every read of the ledger runs on the loop goroutine,
// one event to completion before the next:
//  1. Assign an event ID when the caller omitted one
//  2. Reject IDs already present in the journal
//  3. Apply the event through the ledger (balances, notifications, callbacks)
//  4. Journal the applied entry and snapshot the account in one commit,
//     rolling the ledger back when the commit fails
//  5. Broadcast the result to live subscribers
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starfront/starfront/internal/app/ledger"
	"github.com/starfront/starfront/internal/app/notify"
	"github.com/starfront/starfront/internal/domain"
	"github.com/starfront/starfront/internal/infra/dsa"
	"github.com/starfront/starfront/internal/infra/observability"
)

// Config controls the loop.
type Config struct {
	Profile      string        // account key used for snapshots
	QueueSize    int           // buffered submissions
	TickInterval time.Duration // notification tick period, 0 disables ticking
}

// DefaultConfig returns sensible defaults (60 notification ticks per second).
func DefaultConfig() Config {
	return Config{
		Profile:      "default",
		QueueSize:    256,
		TickInterval: time.Second / 60,
	}
}

// Option wires an optional collaborator into the loop.
type Option func(*Loop)

// WithJournal enables idempotent journaling and account snapshots.
func WithJournal(j domain.JournalStore) Option {
	return func(l *Loop) { l.journal = j }
}

// WithHub broadcasts every applied event.
func WithHub(h *notify.Hub) Option {
	return func(l *Loop) { l.hub = h }
}

// WithQueue ticks the notification queue on the loop.
func WithQueue(q *notify.Queue) Option {
	return func(l *Loop) { l.queue = q }
}

// WithRecorder keeps a record of every submitted event.
func WithRecorder(r *observability.Recorder) Option {
	return func(l *Loop) { l.recorder = r }
}

// WithSeenFilter skips the journal lookup for IDs the filter has never seen.
// The filter must already hold every journaled ID.
func WithSeenFilter(f *dsa.EventFilter) Option {
	return func(l *Loop) { l.seen = f }
}

// LevelState is the tracker experience persisted alongside the account.
type LevelState interface {
	Experience() int64
	Restore(xp int64)
}

// WithLevels persists the tracker's experience with every snapshot and
// restores it when a commit fails.
func WithLevels(ls LevelState) Option {
	return func(l *Loop) { l.levels = ls }
}

type submitReq struct {
	ev    domain.Event
	reply chan submitResp
}

type submitResp struct {
	res domain.RewardResult
	err error
}

type viewReq struct {
	fn   func(*ledger.Ledger)
	done chan struct{}
}

// Loop serializes access to a Ledger.
type Loop struct {
	cfg      Config
	ledger   *ledger.Ledger
	journal  domain.JournalStore
	hub      *notify.Hub
	queue    *notify.Queue
	recorder *observability.Recorder
	seen     *dsa.EventFilter
	levels   LevelState
	now      func() time.Time

	submits chan submitReq
	views   chan viewReq

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a loop around l. Call Run to start processing.
func New(cfg Config, l *ledger.Ledger, opts ...Option) *Loop {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultConfig().Profile
	}
	lp := &Loop{
		cfg:     cfg,
		ledger:  l,
		now:     time.Now,
		submits: make(chan submitReq, cfg.QueueSize),
		views:   make(chan viewReq),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(lp)
	}

	l.OnLevelUp(func(rec domain.LevelUpRecord) {
		log.Printf("[loop] %s reached level %d", cfg.Profile, rec.Level)
	})
	l.OnHonorGained(func(amount, total int64) {
		observability.HonorGained.Inc()
	})
	return lp
}

// Run processes events until ctx is cancelled or Stop is called. The final
// account snapshot is written before it returns.
func (lp *Loop) Run(ctx context.Context) error {
	defer close(lp.done)
	log.Printf("[loop] started (profile=%s)", lp.cfg.Profile)

	var tick <-chan time.Time
	if lp.queue != nil && lp.cfg.TickInterval > 0 {
		ticker := time.NewTicker(lp.cfg.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case <-lp.stop:
			break loop
		case req := <-lp.submits:
			observability.LoopQueueDepth.Set(float64(len(lp.submits)))
			res, perr := lp.process(req.ev)
			req.reply <- submitResp{res: res, err: perr}
		case req := <-lp.views:
			req.fn(lp.ledger)
			close(req.done)
		case <-tick:
			lp.queue.Tick()
		}
	}

	lp.drain()
	lp.saveAccount()
	log.Printf("[loop] stopped")
	return err
}

// drain fails submissions that were queued but never processed.
func (lp *Loop) drain() {
	for {
		select {
		case req := <-lp.submits:
			req.reply <- submitResp{err: domain.ErrLoopStopped}
		default:
			observability.LoopQueueDepth.Set(0)
			return
		}
	}
}

// Stop asks Run to return. It is safe to call more than once.
func (lp *Loop) Stop() {
	lp.stopOnce.Do(func() { close(lp.stop) })
}

// Done is closed once Run has returned.
func (lp *Loop) Done() <-chan struct{} { return lp.done }

// Submit hands ev to the loop and waits for its result.
func (lp *Loop) Submit(ctx context.Context, ev domain.Event) (domain.RewardResult, error) {
	select {
	case <-lp.done:
		return domain.RewardResult{}, domain.ErrLoopStopped
	default:
	}

	req := submitReq{ev: ev, reply: make(chan submitResp, 1)}
	select {
	case lp.submits <- req:
	case <-lp.done:
		return domain.RewardResult{}, domain.ErrLoopStopped
	case <-ctx.Done():
		return domain.RewardResult{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.res, resp.err
	case <-ctx.Done():
		return domain.RewardResult{}, ctx.Err()
	}
}

// View runs fn on the loop goroutine with exclusive access to the ledger.
// fn must not retain the ledger.
func (lp *Loop) View(ctx context.Context, fn func(*ledger.Ledger)) error {
	req := viewReq{fn: fn, done: make(chan struct{})}
	select {
	case lp.views <- req:
	case <-lp.done:
		return domain.ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ─── Processing ─────────────────────────────────────────────────────────────

func (lp *Loop) process(ev domain.Event) (domain.RewardResult, error) {
	start := lp.now()
	defer func() {
		observability.LoopLatency.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	var rec *observability.Record
	if lp.recorder != nil {
		rec = lp.recorder.Start(ev)
	}
	finish := func(status observability.RecordStatus, res domain.RewardResult, err error) {
		observability.EventsProcessed.WithLabelValues(string(ev.Category), status.String()).Inc()
		if lp.recorder != nil {
			lp.recorder.Finish(rec, status, res, err)
		}
	}

	if lp.journal != nil && lp.mayBeJournaled(ev.ID) {
		seen, err := lp.journal.HasEvent(ev.ID)
		if err != nil {
			observability.JournalErrors.Inc()
			err = fmt.Errorf("check journal: %w", err)
			finish(observability.RecordRejected, domain.RewardResult{}, err)
			return domain.RewardResult{}, err
		}
		if seen {
			err := fmt.Errorf("event %s: %w", ev.ID, domain.ErrEventDuplicate)
			finish(observability.RecordDuplicate, domain.RewardResult{}, err)
			return domain.RewardResult{}, err
		}
	}

	before, beforeXP := lp.ledger.Snapshot(), lp.levelXP()
	res, err := lp.ledger.ProcessEvent(ev)
	if err != nil {
		finish(observability.RecordRejected, domain.RewardResult{}, err)
		return domain.RewardResult{}, err
	}

	bal := lp.ledger.Snapshot()
	if lp.journal != nil {
		entry := domain.NewLedgerEntry(ev, res, start)
		if err := lp.journal.CommitEvent(lp.cfg.Profile, entry, bal, lp.levelXP()); err != nil {
			observability.JournalErrors.Inc()
			lp.rollback(before, beforeXP)
			err = fmt.Errorf("commit event %s: %w", ev.ID, err)
			log.Printf("[loop] %v", err)
			status := observability.RecordRejected
			if errors.Is(err, domain.ErrEventDuplicate) {
				status = observability.RecordDuplicate
			}
			finish(status, domain.RewardResult{}, err)
			return domain.RewardResult{}, err
		}
		if lp.seen != nil {
			lp.seen.Add(ev.ID)
		}
	}
	observability.ObserveResult(res, bal)
	if lp.hub != nil {
		lp.hub.Broadcast(notify.NewRewardEvent(ev, res, bal, start))
	}

	finish(observability.RecordApplied, res, nil)
	return res, nil
}

func (lp *Loop) mayBeJournaled(id string) bool {
	if lp.seen == nil {
		return true
	}
	if lp.seen.Contains(id) {
		return true
	}
	observability.JournalLookupsSkipped.Inc()
	return false
}

// rollback restores the balances and tracker experience held before an
// event whose commit failed. Mirror and notification side effects are
// best-effort and stay.
func (lp *Loop) rollback(acct domain.Account, xp int64) {
	lp.ledger.Restore(ledger.SnapshotOf(acct))
	if lp.levels != nil {
		lp.levels.Restore(xp)
	}
}

func (lp *Loop) levelXP() int64 {
	if lp.levels == nil {
		return 0
	}
	return lp.levels.Experience()
}

func (lp *Loop) saveAccount() {
	if lp.journal == nil {
		return
	}
	if err := lp.journal.SaveAccount(lp.cfg.Profile, lp.ledger.Snapshot(), lp.levelXP()); err != nil {
		observability.JournalErrors.Inc()
		log.Printf("[loop] save account %s: %v", lp.cfg.Profile, err)
	}
}
