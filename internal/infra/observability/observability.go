// Package observability records what the reward loop does.
//
// This provides:
//   - An in-memory ring of processed event records for inspection
//   - Prometheus metrics for credited rewards, events, level-ups and balances
package observability

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starfront/starfront/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Event Records
// ═══════════════════════════════════════════════════════════════════════════

// RecordStatus indicates how an event ended.
type RecordStatus int

const (
	RecordApplied RecordStatus = iota
	RecordRejected
	RecordDuplicate
)

func (s RecordStatus) String() string {
	switch s {
	case RecordApplied:
		return "applied"
	case RecordRejected:
		return "rejected"
	case RecordDuplicate:
		return "duplicate"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText renders the status by name in JSON output.
func (s RecordStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Record is one event as seen by the reward loop.
type Record struct {
	Seq       int64                `json:"seq"`
	EventID   string               `json:"event_id"`
	Category  domain.EventCategory `json:"category"`
	StartTime time.Time            `json:"start_time"`
	Duration  time.Duration        `json:"duration"`
	Status    RecordStatus         `json:"status"`
	Result    domain.RewardResult  `json:"result"`
	Error     string               `json:"error,omitempty"`
}

// ─── Recorder ───────────────────────────────────────────────────────────────

// Recorder keeps the most recent event records.
type Recorder struct {
	mu         sync.Mutex
	records    []Record
	maxRecords int
	enabled    bool
	seq        atomic.Int64
}

// RecorderConfig configures the recorder.
type RecorderConfig struct {
	Enabled    bool
	MaxRecords int // ring buffer size (default 1_000)
}

// DefaultRecorderConfig returns production defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Enabled:    true,
		MaxRecords: 1_000,
	}
}

// NewRecorder creates a recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultRecorderConfig().MaxRecords
	}
	return &Recorder{
		records:    make([]Record, 0, cfg.MaxRecords),
		maxRecords: cfg.MaxRecords,
		enabled:    cfg.Enabled,
	}
}

// Start opens a record for ev. The caller must pass it to Finish.
func (r *Recorder) Start(ev domain.Event) *Record {
	return &Record{
		EventID:   ev.ID,
		Category:  ev.Category,
		StartTime: time.Now(),
	}
}

// Finish completes rec and stores it.
func (r *Recorder) Finish(rec *Record, status RecordStatus, res domain.RewardResult, err error) {
	if !r.enabled || rec == nil {
		return
	}
	rec.Duration = time.Since(rec.StartTime)
	rec.Status = status
	rec.Result = res
	if err != nil {
		rec.Error = err.Error()
	}
	rec.Seq = r.seq.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Ring buffer: overwrite oldest if at capacity
	if len(r.records) >= r.maxRecords {
		r.records = r.records[1:]
	}
	r.records = append(r.records, *rec)
}

// Records returns a copy of up to limit most recent records, oldest first.
func (r *Recorder) Records(limit int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	start := len(r.records) - limit
	out := make([]Record, limit)
	copy(out, r.records[start:])
	return out
}

// Count returns the number of stored records.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Reset clears all stored records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = r.records[:0]
}

// ═══════════════════════════════════════════════════════════════════════════
// Prometheus Metrics
// ═══════════════════════════════════════════════════════════════════════════

// ─── Reward Metrics ─────────────────────────────────────────────────────────

// RewardsCredited tracks amounts credited per currency.
var RewardsCredited = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "starfront",
	Subsystem: "ledger",
	Name:      "credited_total",
	Help:      "Total amount credited, by currency.",
}, []string{"currency"})

// EventsProcessed tracks events by category and outcome.
var EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "starfront",
	Subsystem: "ledger",
	Name:      "events_total",
	Help:      "Total reward events, by category and status.",
}, []string{"category", "status"})

// LevelUps tracks level-ups reported by the tracker.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starfront",
	Subsystem: "ledger",
	Name:      "level_ups_total",
	Help:      "Total level-ups.",
})

// HonorGained tracks honor-gained callbacks.
var HonorGained = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starfront",
	Subsystem: "ledger",
	Name:      "honor_gains_total",
	Help:      "Total honor-gained notifications.",
})

// Balance tracks the current balance per currency.
var Balance = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "starfront",
	Subsystem: "ledger",
	Name:      "balance",
	Help:      "Current balance, by currency.",
}, []string{"currency"})

// ─── Loop Metrics ───────────────────────────────────────────────────────────

// LoopQueueDepth tracks pending submissions to the reward loop.
var LoopQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "starfront",
	Subsystem: "loop",
	Name:      "queue_depth",
	Help:      "Current number of events waiting for the reward loop.",
})

// LoopLatency tracks per-event processing time.
var LoopLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "starfront",
	Subsystem: "loop",
	Name:      "event_latency_ms",
	Help:      "Reward event processing latency in milliseconds.",
	Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
})

// JournalErrors tracks failed journal or snapshot writes.
var JournalErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starfront",
	Subsystem: "loop",
	Name:      "journal_errors_total",
	Help:      "Total failed journal or account snapshot writes.",
})

// JournalLookupsSkipped counts new events admitted by the seen filter alone.
var JournalLookupsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starfront",
	Subsystem: "loop",
	Name:      "journal_lookups_skipped_total",
	Help:      "Total events whose journal lookup was skipped by the seen filter.",
})

// ObserveResult updates the reward counters and balance gauges.
func ObserveResult(res domain.RewardResult, bal domain.Account) {
	for _, c := range domain.Currencies {
		if n := res.Amount(c); n > 0 {
			RewardsCredited.WithLabelValues(string(c)).Add(float64(n))
		}
		Balance.WithLabelValues(string(c)).Set(float64(bal.Get(c)))
	}
	if res.LevelUp != nil {
		LevelUps.Inc()
	}
}
