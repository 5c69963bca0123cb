package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starfront/starfront/internal/app/ledger"
	"github.com/starfront/starfront/internal/app/notify"
	"github.com/starfront/starfront/internal/domain"
)

// ─── Ledger API ─────────────────────────────────────────────────────────────
//
// GET  /api/ledger/balances                  four balances
// GET  /api/ledger/rank                      current rank, next rank, progress
// GET  /api/ledger/level                     level and experience
// POST /api/ledger/events                    apply one reward event
// GET  /api/ledger/notifications             live HUD notifications
// POST /api/ledger/notifications/{id}/shown  mark a notification shown
// GET  /api/ledger/journal                   journaled events and totals
// GET  /api/debug/events                     recent processed events

// eventRequest is the body of POST /api/ledger/events.
type eventRequest struct {
	ID        string                     `json:"id"`
	Category  domain.EventCategory       `json:"category"`
	EnemyType string                     `json:"enemy_type"`
	Profile   *domain.EnemyRewardProfile `json:"profile"`
	Credits   int64                      `json:"credits"`
	Uridium   int64                      `json:"uridium"`
	Honor     int64                      `json:"honor"`
	Rewards   map[string]any             `json:"rewards"` // quest bundle
}

// validate rejects reward keys that name no currency.
func (req eventRequest) validate() error {
	for k := range req.Rewards {
		if _, ok := domain.ParseCurrency(k); !ok {
			return fmt.Errorf("rewards %q: %w", k, domain.ErrUnknownCurrency)
		}
	}
	return nil
}

func (req eventRequest) event() domain.Event {
	ev := domain.Event{
		ID:        req.ID,
		Category:  req.Category,
		EnemyType: req.EnemyType,
		Profile:   req.Profile,
		Credits:   req.Credits,
		Uridium:   req.Uridium,
		Honor:     req.Honor,
	}
	if req.Rewards != nil {
		ev.Bundle = domain.ParseBundle(req.Rewards)
	}
	return ev
}

// handleBalances returns the four balances.
// GET /api/ledger/balances
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	var bal domain.Account
	if err := s.loop.View(r.Context(), func(l *ledger.Ledger) { bal = l.Snapshot() }); err != nil {
		writeLoopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

// handleRank returns rank standing for the current honor.
// GET /api/ledger/rank
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var honor int64
	if err := s.loop.View(r.Context(), func(l *ledger.Ledger) { honor = l.Balance(domain.Honor) }); err != nil {
		writeLoopError(w, err)
		return
	}

	resp := map[string]interface{}{
		"honor":    honor,
		"rank":     s.ranks.CurrentRank(honor),
		"progress": s.ranks.RankProgress(honor),
	}
	if next, ok := s.ranks.NextRank(honor); ok {
		resp["next"] = next
	} else {
		resp["next"] = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLevel returns level state. Without a tracker the raw experience
// balance is reported with leveling disabled.
// GET /api/ledger/level
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{}
	err := s.loop.View(r.Context(), func(l *ledger.Ledger) {
		if s.tracker == nil || !l.HasTracker() {
			resp["leveling"] = false
			resp["experience"] = l.Balance(domain.Experience)
			return
		}
		resp["leveling"] = true
		resp["level"] = s.tracker.Level()
		resp["max_level"] = s.tracker.MaxLevel()
		resp["experience"] = s.tracker.Experience()
		resp["xp_to_next"] = s.tracker.XPToNextLevel()
	})
	if err != nil {
		writeLoopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSubmitEvent applies one reward event.
// POST /api/ledger/events
func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, 64*1024)); err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var req eventRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.loop.Submit(r.Context(), req.event())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeLoopError(w, err)
	}
}

// handleNotifications returns live HUD notifications, oldest first.
// GET /api/ledger/notifications?limit=N
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	items := s.queue.Pending(limit)
	if items == nil {
		items = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"count":         len(items),
		"queued":        s.queue.Len(),
		"max_queued":    s.queue.Policy().MaxQueued,
	})
}

// handleNotificationShown marks a notification as displayed.
// POST /api/ledger/notifications/{id}/shown
func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.queue.MarkShown(id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleJournal returns the newest journaled events and the sum of every
// journaled amount.
// GET /api/ledger/journal?limit=N
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := s.journal.RecentEvents(limit)
	if err != nil {
		log.Printf("[api] journal: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totals, err := s.journal.JournalTotals()
	if err != nil {
		log.Printf("[api] journal totals: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"totals":  totals,
	})
}

// handleDebugEvents returns recently processed events.
// GET /api/debug/events?limit=N
func (s *Server) handleDebugEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": s.recorder.Records(limit),
		"total":  s.recorder.Count(),
	})
}

// writeLoopError maps reward loop failures to HTTP statuses.
func writeLoopError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLoopStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "reward loop busy: "+err.Error())
	default:
		log.Printf("[api] %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
