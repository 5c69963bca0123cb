package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starfront/starfront/internal/domain"
)

var _ domain.JournalStore = (*DB)(nil)

// ─── Account Snapshots ──────────────────────────────────────────────────────

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SaveAccount upserts the account snapshot for profile.
func (db *DB) SaveAccount(profile string, acct domain.Account, levelXP int64) error {
	return saveAccount(db.db, profile, acct, levelXP)
}

func saveAccount(ex execer, profile string, acct domain.Account, levelXP int64) error {
	_, err := ex.Exec(`
		INSERT INTO ledger_accounts (profile, credits, uridium, honor, experience, level_experience, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(profile) DO UPDATE SET
			credits          = excluded.credits,
			uridium          = excluded.uridium,
			honor            = excluded.honor,
			experience       = excluded.experience,
			level_experience = excluded.level_experience,
			updated_at       = datetime('now')
	`, profile, acct.Credits, acct.Uridium, acct.Honor, acct.Experience, levelXP)
	return err
}

// LoadAccount returns the stored snapshot for profile. ok is false when the
// profile has never been saved.
func (db *DB) LoadAccount(profile string) (acct domain.Account, levelXP int64, ok bool, err error) {
	err = db.db.QueryRow(`
		SELECT credits, uridium, honor, experience, level_experience
		FROM ledger_accounts WHERE profile = ?
	`, profile).Scan(&acct.Credits, &acct.Uridium, &acct.Honor, &acct.Experience, &levelXP)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, 0, false, nil
	}
	if err != nil {
		return domain.Account{}, 0, false, err
	}
	return acct, levelXP, true, nil
}

// ─── Reward Journal ─────────────────────────────────────────────────────────

// HasEvent reports whether eventID is already journaled.
func (db *DB) HasEvent(eventID string) (bool, error) {
	var n int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM reward_journal WHERE event_id = ?`, eventID).Scan(&n)
	return n > 0, err
}

// CommitEvent journals e and upserts the account snapshot in one
// transaction. A journaled event id fails with domain.ErrEventDuplicate and
// leaves the account untouched.
func (db *DB) CommitEvent(profile string, e domain.LedgerEntry, acct domain.Account, levelXP int64) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	n, err := recordEvent(tx, e)
	if err != nil {
		return fmt.Errorf("journal event: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", e.EventID, domain.ErrEventDuplicate)
	}
	if err := saveAccount(tx, profile, acct, levelXP); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return tx.Commit()
}

// recordEvent inserts e and returns the number of rows written, 0 when the
// event id is already journaled.
func recordEvent(ex execer, e domain.LedgerEntry) (int64, error) {
	res, err := ex.Exec(`
		INSERT OR IGNORE INTO reward_journal
			(event_id, category, credits, uridium, honor, experience, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.EventID, string(e.Category), e.Credits, e.Uridium, e.Honor, e.Experience, e.Level,
		e.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EachEventID calls fn for every journaled event id.
func (db *DB) EachEventID(fn func(id string)) error {
	rows, err := db.db.Query(`SELECT event_id FROM reward_journal`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		fn(id)
	}
	return rows.Err()
}

// CountEvents returns the number of journaled events.
func (db *DB) CountEvents() (int, error) {
	var n int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM reward_journal`).Scan(&n)
	return n, err
}

// RecentEvents returns up to limit journal entries, newest first.
func (db *DB) RecentEvents(limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.db.Query(`
		SELECT event_id, category, credits, uridium, honor, experience, level, created_at
		FROM reward_journal ORDER BY created_at DESC, event_id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var category, created string
		if err := rows.Scan(&e.EventID, &category, &e.Credits, &e.Uridium, &e.Honor, &e.Experience, &e.Level, &created); err != nil {
			return nil, err
		}
		e.Category = domain.EventCategory(category)
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// JournalTotals sums every journaled amount.
func (db *DB) JournalTotals() (domain.Account, error) {
	var a domain.Account
	err := db.db.QueryRow(`
		SELECT COALESCE(SUM(credits), 0), COALESCE(SUM(uridium), 0),
		       COALESCE(SUM(honor), 0), COALESCE(SUM(experience), 0)
		FROM reward_journal
	`).Scan(&a.Credits, &a.Uridium, &a.Honor, &a.Experience)
	return a, err
}

// ─── Shop Wallet ────────────────────────────────────────────────────────────

// SaveWallet upserts the shop balances for profile.
func (db *DB) SaveWallet(profile string, credits, uridium int64) error {
	_, err := db.db.Exec(`
		INSERT INTO shop_wallet (profile, credits, uridium, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(profile) DO UPDATE SET
			credits    = excluded.credits,
			uridium    = excluded.uridium,
			updated_at = datetime('now')
	`, profile, credits, uridium)
	return err
}

// LoadWallet returns the shop balances for profile, zero when absent.
func (db *DB) LoadWallet(profile string) (credits, uridium int64, err error) {
	err = db.db.QueryRow(`
		SELECT credits, uridium FROM shop_wallet WHERE profile = ?
	`, profile).Scan(&credits, &uridium)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	return
}
