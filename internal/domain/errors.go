package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.
// None of these are raised by the reward path for bad amounts; bad reward
// data degrades to a zero credit instead.

var (
	// Event errors
	ErrUnknownCategory = errors.New("unknown reward event category")
	ErrEventDuplicate  = errors.New("reward event already applied")

	// Currency errors
	ErrUnknownCurrency = errors.New("unknown currency")

	// Persistence errors
	ErrInvalidSnapshot = errors.New("invalid ledger snapshot")

	// Rank table errors
	ErrRankTableEmpty   = errors.New("rank table has no tiers")
	ErrRankTableInvalid = errors.New("rank tiers must partition [0, inf) in ascending order")

	// Loop errors
	ErrLoopStopped = errors.New("reward loop is not running")
)
