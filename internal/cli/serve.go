package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starfront/starfront/internal/api"
	"github.com/starfront/starfront/internal/app/ledger"
	"github.com/starfront/starfront/internal/app/notify"
	"github.com/starfront/starfront/internal/app/session"
	"github.com/starfront/starfront/internal/app/shop"
	"github.com/starfront/starfront/internal/daemon"
	"github.com/starfront/starfront/internal/infra/dsa"
	"github.com/starfront/starfront/internal/infra/observability"
	"github.com/starfront/starfront/internal/infra/savefile"
	"github.com/starfront/starfront/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger service",
	Long: `Start the reward loop and HTTP API. The last account snapshot of the
configured profile is restored from SQLite on start and written back after
every event and on shutdown.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg)
}

// serve runs until ctx is cancelled.
func serve(ctx context.Context, cfg daemon.Config) error {
	tu, err := loadTuning(cfg)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer db.Close()

	wallet, err := shop.NewWallet(cfg.Ledger.Profile, db)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	st, err := buildStack(cfg, tu, ledger.WithMirror(wallet))
	if err != nil {
		return err
	}

	acct, xp, ok, err := db.LoadAccount(cfg.Ledger.Profile)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if ok {
		st.restore(acct, xp)
		log.Printf("[store] restored profile %s", cfg.Ledger.Profile)
	}

	seen, err := seedFilter(db)
	if err != nil {
		return fmt.Errorf("seed event filter: %w", err)
	}

	hub := notify.NewHub()
	rec := observability.NewRecorder(observability.RecorderConfig{
		Enabled:    cfg.Metrics.Enabled,
		MaxRecords: cfg.Metrics.RecordedEvent,
	})
	loopCfg := session.DefaultConfig()
	loopCfg.Profile = cfg.Ledger.Profile
	loopCfg.TickInterval = 0
	if cfg.Notify.TickRateHz > 0 {
		loopCfg.TickInterval = time.Second / time.Duration(cfg.Notify.TickRateHz)
	}
	opts := []session.Option{
		session.WithJournal(db),
		session.WithHub(hub),
		session.WithQueue(st.queue),
		session.WithRecorder(rec),
		session.WithSeenFilter(seen),
	}
	if st.tracker != nil {
		opts = append(opts, session.WithLevels(st.tracker))
	}
	loop := session.New(loopCfg, st.ledger, opts...)

	srv := api.NewServer(loop, st.ranks)
	if st.tracker != nil {
		srv.SetTracker(st.tracker)
	}
	srv.SetQueue(st.queue)
	srv.SetHub(hub)
	srv.SetRecorder(rec)
	srv.SetJournal(db)
	srv.SetWallet(wallet)
	srv.SetAllowedOrigins(cfg.API.AllowedOrigins)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	go loop.Run(loopCtx)

	errc := make(chan error, 1)
	go func() {
		log.Printf("[api] listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		log.Printf("[api] shutdown: %v", serr)
	}

	// Stop the loop, then snapshot outside it: nothing else touches the ledger now.
	loop.Stop()
	<-loop.Done()

	if cfg.Storage.SaveFile != "" {
		xp := st.levelXP()
		var levelXP *int64
		if st.tracker != nil {
			levelXP = &xp
		}
		if werr := savefile.Write(cfg.Storage.SaveFile, savefile.Capture(cfg.Ledger.Profile, st.ledger, levelXP)); werr != nil {
			log.Printf("[store] write save file: %v", werr)
		}
	}
	return err
}

// seedFilter loads every journaled event id into a filter sized with
// headroom for new events.
func seedFilter(db *sqlite.DB) (*dsa.EventFilter, error) {
	n, err := db.CountEvents()
	if err != nil {
		return nil, err
	}
	fc := dsa.DefaultFilterConfig()
	if 2*n > fc.ExpectedEvents {
		fc.ExpectedEvents = 2 * n
	}
	f := dsa.NewEventFilter(fc)
	if err := db.EachEventID(f.Add); err != nil {
		return nil, err
	}
	log.Printf("[store] %d journaled events loaded", f.Count())
	return f, nil
}
