// Package api provides the HTTP server for starfront.
// It exposes the reward ledger, rank and level state, HUD notifications and
// live reward feeds.
package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starfront/starfront/internal/app/notify"
	"github.com/starfront/starfront/internal/app/progression"
	"github.com/starfront/starfront/internal/app/session"
	"github.com/starfront/starfront/internal/app/shop"
	"github.com/starfront/starfront/internal/domain"
	"github.com/starfront/starfront/internal/infra/observability"
)

// Server is the starfront HTTP API server.
type Server struct {
	loop           *session.Loop
	ranks          *progression.Table
	tracker        *progression.LevelTracker // nil when leveling is off
	queue          *notify.Queue             // nil = no notification routes
	hub            *notify.Hub               // nil = no live feeds
	recorder       *observability.Recorder   // nil = no debug route
	journal        JournalReader             // nil = no journal route
	wallet         *shop.Wallet              // nil = no shop routes
	metricsEnabled bool
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// JournalReader is the read side of the reward journal.
type JournalReader interface {
	RecentEvents(limit int) ([]domain.LedgerEntry, error)
	JournalTotals() (domain.Account, error)
}

// NewServer creates a new API server around a running reward loop.
func NewServer(loop *session.Loop, ranks *progression.Table) *Server {
	if ranks == nil {
		ranks = progression.DefaultTable()
	}
	s := &Server{
		loop:  loop,
		ranks: ranks,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return s.originAllowed(r.Header.Get("Origin")) },
	}
	return s
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetTracker exposes level state. The tracker must be the one installed in
// the loop's ledger; it is only read on the loop goroutine.
func (s *Server) SetTracker(t *progression.LevelTracker) { s.tracker = t }

// SetQueue sets the HUD notification queue.
func (s *Server) SetQueue(q *notify.Queue) { s.queue = q }

// SetHub sets the live reward hub.
func (s *Server) SetHub(h *notify.Hub) { s.hub = h }

// SetRecorder sets the event recorder served at /api/debug/events.
func (s *Server) SetRecorder(r *observability.Recorder) { s.recorder = r }

// SetJournal sets the journal served at /api/ledger/journal.
func (s *Server) SetJournal(j JournalReader) { s.journal = j }

// SetWallet sets the upgrade shop wallet served under /api/shop.
func (s *Server) SetWallet(w *shop.Wallet) { s.wallet = w }

// SetAllowedOrigins sets the browser origins allowed to call the API and
// open live feeds. An entry without a port matches any port on that host;
// "*" allows every origin. Requests without an Origin header are always
// allowed. The default is none.
func (s *Server) SetAllowedOrigins(origins []string) { s.allowedOrigins = origins }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	// Ledger state and event intake; requests time out, live feeds below do not.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Route("/api/ledger", func(r chi.Router) {
			r.Get("/balances", s.handleBalances)
			r.Get("/rank", s.handleRank)
			r.Get("/level", s.handleLevel)
			r.Post("/events", s.handleSubmitEvent)
			if s.queue != nil {
				r.Get("/notifications", s.handleNotifications)
				r.Post("/notifications/{id}/shown", s.handleNotificationShown)
			}
			if s.journal != nil {
				r.Get("/journal", s.handleJournal)
			}
		})
		if s.wallet != nil {
			r.Route("/api/shop", func(r chi.Router) {
				r.Get("/wallet", s.handleWallet)
				r.Post("/purchase", s.handlePurchase)
			})
		}
		if s.recorder != nil {
			r.Get("/api/debug/events", s.handleDebugEvents)
		}
	})

	if s.hub != nil {
		r.Get("/api/rewards/live", s.handleRewardsSSE)
		r.Get("/api/rewards/ws", s.handleRewardsWS)
	}

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware answers CORS for allowed origins and rejects requests from
// any other browser origin, so a foreign page cannot mint rewards.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.originAllowed(origin) {
			writeError(w, http.StatusForbidden, "origin not allowed: "+origin)
			return
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin || allowed == u.Scheme+"://"+u.Hostname() {
			return true
		}
	}
	return false
}
