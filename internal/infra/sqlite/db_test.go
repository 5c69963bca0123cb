package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starfront/starfront/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()
}

func TestOpen_EmptyDir(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}

func TestOpen_MigrationsAreRepeatable(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		db, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() #%d error: %v", i, err)
		}
		db.Close()
	}
}

// ─── Accounts ───────────────────────────────────────────────────────────────

func TestSaveLoadAccount(t *testing.T) {
	db := newTestDB(t)
	want := domain.Account{Credits: 1500, Uridium: 2, Honor: 3, Experience: 500}
	if err := db.SaveAccount("pilot", want, 42); err != nil {
		t.Fatalf("SaveAccount() error: %v", err)
	}

	got, xp, ok, err := db.LoadAccount("pilot")
	if err != nil {
		t.Fatalf("LoadAccount() error: %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if got != want {
		t.Errorf("account = %+v, want %+v", got, want)
	}
	if xp != 42 {
		t.Errorf("levelXP = %d, want 42", xp)
	}
}

func TestSaveAccount_Overwrites(t *testing.T) {
	db := newTestDB(t)
	db.SaveAccount("pilot", domain.Account{Credits: 1}, 0)
	db.SaveAccount("pilot", domain.Account{Credits: 2}, 0)

	got, _, _, err := db.LoadAccount("pilot")
	if err != nil {
		t.Fatal(err)
	}
	if got.Credits != 2 {
		t.Errorf("credits = %d, want 2", got.Credits)
	}
}

func TestLoadAccount_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, _, ok, err := db.LoadAccount("nobody")
	if err != nil {
		t.Fatalf("LoadAccount() error: %v", err)
	}
	if ok {
		t.Error("ok = true for an unknown profile")
	}
}

// ─── Journal ────────────────────────────────────────────────────────────────

func TestCommitEvent_JournalsAndSnapshots(t *testing.T) {
	db := newTestDB(t)
	e := domain.LedgerEntry{
		EventID:   "ev-1",
		Timestamp: time.Now(),
		Category:  domain.EventEnemyKill,
		Credits:   500,
		Honor:     3,
	}
	acct := domain.Account{Credits: 1500, Honor: 3}
	if err := db.CommitEvent("pilot", e, acct, 500); err != nil {
		t.Fatalf("CommitEvent() error: %v", err)
	}

	has, err := db.HasEvent("ev-1")
	if err != nil || !has {
		t.Errorf("HasEvent(ev-1) = %v, %v", has, err)
	}
	got, xp, ok, err := db.LoadAccount("pilot")
	if err != nil || !ok || got != acct || xp != 500 {
		t.Errorf("LoadAccount() = %+v, %d, %v, %v", got, xp, ok, err)
	}
}

func TestCommitEvent_DuplicateLeavesAccount(t *testing.T) {
	db := newTestDB(t)
	e := domain.LedgerEntry{EventID: "ev-1", Timestamp: time.Now(), Category: domain.EventMining, Credits: 40}
	if err := db.CommitEvent("pilot", e, domain.Account{Credits: 40}, 0); err != nil {
		t.Fatal(err)
	}

	err := db.CommitEvent("pilot", e, domain.Account{Credits: 80}, 0)
	if !errors.Is(err, domain.ErrEventDuplicate) {
		t.Fatalf("second CommitEvent() = %v, want ErrEventDuplicate", err)
	}
	got, _, _, _ := db.LoadAccount("pilot")
	if got.Credits != 40 {
		t.Errorf("credits = %d, want 40", got.Credits)
	}
	totals, err := db.JournalTotals()
	if err != nil {
		t.Fatal(err)
	}
	if totals.Credits != 40 {
		t.Errorf("totals = %+v, want one entry counted", totals)
	}
}

func TestCommitEvent_AccountFailureRollsBackJournal(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.db.Exec(`DROP TABLE ledger_accounts`); err != nil {
		t.Fatal(err)
	}

	e := domain.LedgerEntry{EventID: "ev-1", Timestamp: time.Now(), Category: domain.EventQuest, Credits: 10}
	if err := db.CommitEvent("pilot", e, domain.Account{Credits: 10}, 0); err == nil {
		t.Fatal("CommitEvent() should fail without the accounts table")
	}
	has, err := db.HasEvent("ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("journal row survived a failed commit")
	}
}

func TestHasEvent_Unknown(t *testing.T) {
	db := newTestDB(t)
	has, err := db.HasEvent("nope")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("HasEvent(nope) = true")
	}
}

func TestRecentEvents_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		e := domain.LedgerEntry{
			EventID:   id,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  domain.EventMining,
			Credits:   int64(i + 1),
			Level:     i,
		}
		if err := db.CommitEvent("pilot", e, domain.Account{}, 0); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].EventID != "c" || got[1].EventID != "b" {
		t.Errorf("order = %s, %s", got[0].EventID, got[1].EventID)
	}
	if got[0].Category != domain.EventMining || got[0].Level != 2 {
		t.Errorf("entry = %+v", got[0])
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("timestamp = %v", got[0].Timestamp)
	}
}

func TestEachEventID(t *testing.T) {
	db := newTestDB(t)
	for _, id := range []string{"x", "y"} {
		e := domain.LedgerEntry{EventID: id, Timestamp: time.Now(), Category: domain.EventQuest}
		if err := db.CommitEvent("pilot", e, domain.Account{}, 0); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[string]bool{}
	if err := db.EachEventID(func(id string) { seen[id] = true }); err != nil {
		t.Fatalf("EachEventID() error: %v", err)
	}
	if len(seen) != 2 || !seen["x"] || !seen["y"] {
		t.Errorf("ids = %v", seen)
	}
	if n, err := db.CountEvents(); err != nil || n != 2 {
		t.Errorf("CountEvents() = %d, %v", n, err)
	}
}

// ─── Wallet ─────────────────────────────────────────────────────────────────

func TestWallet_SaveLoad(t *testing.T) {
	db := newTestDB(t)
	c, u, err := db.LoadWallet("pilot")
	if err != nil || c != 0 || u != 0 {
		t.Fatalf("empty LoadWallet() = %d, %d, %v", c, u, err)
	}
	if err := db.SaveWallet("pilot", 900, 7); err != nil {
		t.Fatalf("SaveWallet() error: %v", err)
	}
	c, u, err = db.LoadWallet("pilot")
	if err != nil {
		t.Fatal(err)
	}
	if c != 900 || u != 7 {
		t.Errorf("wallet = %d, %d, want 900, 7", c, u)
	}
}
