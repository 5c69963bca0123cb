package domain

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// The ledger consumes these. Every one is optional: a nil collaborator
// means "feature not installed" and the ledger takes its fallback path.

// ExperienceTracker owns the authoritative experience and level state.
type ExperienceTracker interface {
	// AddExperience accumulates amount and returns a record when a level
	// boundary was crossed, nil otherwise.
	AddExperience(amount int64) *LevelUpRecord
}

// MirrorStore is a secondary subsystem (e.g. the upgrade shop) that keeps
// its own copy of credits and uridium. Writes are best-effort.
type MirrorStore interface {
	AddCredits(amount int64)
	AddUridium(amount int64)
}

// NotificationSink renders transient messages. The ledger never queries it.
type NotificationSink interface {
	Add(message string, durationTicks int, category string)
	LevelUp(level int, bonus LevelBonus)
}

// JournalStore records applied events for idempotent persistence.
type JournalStore interface {
	// HasEvent reports whether eventID was already applied.
	HasEvent(eventID string) (bool, error)
	// CommitEvent journals an applied event and stores the resulting
	// account snapshot for profile in one atomic write. Either both are
	// persisted or neither is.
	CommitEvent(profile string, entry LedgerEntry, acct Account, levelXP int64) error
	// SaveAccount upserts the account snapshot for profile. levelXP is the
	// tracker's experience, 0 when no tracker is installed.
	SaveAccount(profile string, acct Account, levelXP int64) error
}
