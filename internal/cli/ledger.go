package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/starfront/starfront/internal/app/progression"
	"github.com/starfront/starfront/internal/daemon"
	"github.com/starfront/starfront/internal/domain"
	"github.com/starfront/starfront/internal/infra/savefile"
)

// ─── Offline Ledger Commands ────────────────────────────────────────────────
// These operate on a save file directly, without a running service.

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(rewardCmd)
	rootCmd.AddCommand(rankCmd)

	balanceCmd.Flags().String("save", "", "Save file to read (required)")

	rewardCmd.Flags().String("save", "", "Save file to update (created when missing)")
	rewardCmd.Flags().String("id", "", "Event ID; a repeated ID is rejected (random when empty)")
	rewardCmd.Flags().Int64("credits", 0, "Credits (mining, bonus_pickup, quest)")
	rewardCmd.Flags().Int64("uridium", 0, "Uridium (mining, bonus_pickup, quest)")
	rewardCmd.Flags().Int64("honor", 0, "Honor (mining, quest)")
	rewardCmd.Flags().Int64("experience", 0, "Experience (quest)")
}

// ─── balance ────────────────────────────────────────────────────────────────

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show balances, rank and level from a save file",
	Args:  cobra.NoArgs,
	RunE:  runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("save")
	if path == "" {
		return errors.New("--save is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openSave(cfg, path)
	if err != nil {
		return err
	}
	printBalance(cmd.OutOrStdout(), printer(cmd), st)
	return nil
}

func printBalance(w io.Writer, p *message.Printer, st *stack) {
	acct := st.ledger.Snapshot()
	for _, c := range domain.Currencies {
		if c == domain.Experience && st.tracker != nil {
			continue
		}
		p.Fprintf(w, "%-11s %d\n", c.Label()+":", acct.Get(c))
	}
	if st.tracker != nil {
		p.Fprintf(w, "%-11s %d (XP %d, %d to next)\n", "Level:",
			st.tracker.Level(), st.tracker.Experience(), st.tracker.XPToNextLevel())
	}
	printRank(w, p, st.ranks, acct.Honor)
}

// ─── reward ─────────────────────────────────────────────────────────────────

var rewardCmd = &cobra.Command{
	Use:   "reward CATEGORY [ENEMY_TYPE]",
	Short: "Apply one reward event to a save file",
	Long: `Apply one reward event and print the resulting notifications.
CATEGORY is one of enemy_kill, mining, bonus_pickup or quest.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runReward,
}

func runReward(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("save")
	if path == "" {
		return errors.New("--save is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openSave(cfg, path)
	if err != nil {
		return err
	}

	ev := domain.Event{Category: domain.EventCategory(args[0])}
	if len(args) == 2 {
		ev.EnemyType = args[1]
	}
	ev.ID, _ = cmd.Flags().GetString("id")
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.Credits, _ = cmd.Flags().GetInt64("credits")
	ev.Uridium, _ = cmd.Flags().GetInt64("uridium")
	ev.Honor, _ = cmd.Flags().GetInt64("honor")
	xp, _ := cmd.Flags().GetInt64("experience")
	ev.Bundle = domain.RewardBundle{
		domain.Credits:    ev.Credits,
		domain.Uridium:    ev.Uridium,
		domain.Honor:      ev.Honor,
		domain.Experience: xp,
	}

	if err := applyReward(cmd.OutOrStdout(), printer(cmd), st, ev); err != nil {
		return err
	}
	return writeSave(cfg, path, st)
}

// applyReward applies ev unless its id is already recorded in the save.
func applyReward(w io.Writer, p *message.Printer, st *stack, ev domain.Event) error {
	if ev.ID != "" && st.applied[ev.ID] {
		return fmt.Errorf("event %s: %w", ev.ID, domain.ErrEventDuplicate)
	}
	if _, err := st.ledger.ProcessEvent(ev); err != nil {
		return err
	}
	if ev.ID != "" {
		st.markApplied(ev.ID)
	}
	if ev.Category == domain.EventEnemyKill && ev.Profile == nil {
		if _, ok := st.ledger.Profile(ev.EnemyType); !ok {
			p.Fprintf(w, "unknown enemy type %q, generic reward applied\n", ev.EnemyType)
		}
	}
	for _, n := range st.queue.Pending(0) {
		p.Fprintf(w, "%s\n", n.Message)
	}
	return nil
}

// ─── rank ───────────────────────────────────────────────────────────────────

var rankCmd = &cobra.Command{
	Use:   "rank HONOR",
	Short: "Show the rank for an honor value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		honor, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("honor must be an integer: %w", err)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tu, err := loadTuning(cfg)
		if err != nil {
			return err
		}
		table, err := tu.RankTable()
		if err != nil {
			return err
		}
		printRank(cmd.OutOrStdout(), printer(cmd), table, honor)
		return nil
	},
}

func printRank(w io.Writer, p *message.Printer, table *progression.Table, honor int64) {
	cur := table.CurrentRank(honor)
	p.Fprintf(w, "%-11s %s (%s)\n", "Rank:", cur.Name, cur.Symbol)
	next, ok := table.NextRank(honor)
	if !ok {
		p.Fprintf(w, "%-11s top rank reached\n", "Next:")
		return
	}
	prog := table.RankProgress(honor)
	p.Fprintf(w, "%-11s %s at %d honor (%d to go, %.1f%%)\n", "Next:",
		next.Name, next.MinHonor, prog.Needed, prog.Progress*100)
}

// ─── Save files ─────────────────────────────────────────────────────────────

// openSave builds a stack and restores path into it. A missing file starts
// from zero balances.
func openSave(cfg daemon.Config, path string) (*stack, error) {
	tu, err := loadTuning(cfg)
	if err != nil {
		return nil, err
	}
	st, err := buildStack(cfg, tu)
	if err != nil {
		return nil, err
	}
	f, err := savefile.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	if xp, ok := savefile.Apply(f, st.ledger); ok && st.tracker != nil {
		st.tracker.Restore(xp)
	}
	for _, id := range f.Body.AppliedEvents {
		st.markApplied(id)
	}
	return st, nil
}

func writeSave(cfg daemon.Config, path string, st *stack) error {
	var levelXP *int64
	if st.tracker != nil {
		xp := st.tracker.Experience()
		levelXP = &xp
	}
	f := savefile.Capture(cfg.Ledger.Profile, st.ledger, levelXP)
	f.Body.AppliedEvents = st.appliedIDs
	return savefile.Write(path, f)
}
