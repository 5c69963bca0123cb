// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring: it depends on nothing.
package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ─── Currency Types ─────────────────────────────────────────────────────────

// Currency names one of the four tracked player resources.
type Currency string

const (
	Credits    Currency = "credits"
	Uridium    Currency = "uridium"
	Honor      Currency = "honor"
	Experience Currency = "experience"
)

// Currencies is the fixed processing and notification order.
var Currencies = [4]Currency{Credits, Uridium, Honor, Experience}

// ParseCurrency maps a name to a Currency. Matching is case-insensitive.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(strings.ToLower(strings.TrimSpace(s))) {
	case Credits:
		return Credits, true
	case Uridium:
		return Uridium, true
	case Honor:
		return Honor, true
	case Experience:
		return Experience, true
	}
	return "", false
}

// Label returns the player-facing name used in notifications.
func (c Currency) Label() string {
	switch c {
	case Credits:
		return "Credits"
	case Uridium:
		return "Uridium"
	case Honor:
		return "Honor"
	case Experience:
		return "Experience"
	}
	return string(c)
}

// ─── Account ────────────────────────────────────────────────────────────────

// Account is the player's currency state. Balances are never negative.
type Account struct {
	Credits    int64 `json:"credits"`
	Uridium    int64 `json:"uridium"`
	Honor      int64 `json:"honor"`
	Experience int64 `json:"experience"`
}

// Get returns the balance of c, or 0 for an unknown currency.
func (a Account) Get(c Currency) int64 {
	switch c {
	case Credits:
		return a.Credits
	case Uridium:
		return a.Uridium
	case Honor:
		return a.Honor
	case Experience:
		return a.Experience
	}
	return 0
}

// ─── Reward Bundle ──────────────────────────────────────────────────────────

// RewardBundle requests a set of simultaneous gains. Absent keys mean zero.
type RewardBundle map[Currency]int64

// Amount returns the requested amount for c, 0 when absent.
func (b RewardBundle) Amount(c Currency) int64 {
	if b == nil {
		return 0
	}
	return b[c]
}

// ParseBundle builds a bundle from loosely typed input such as decoded JSON
// or YAML. Unknown currencies, non-numeric values, fractional values and
// non-positive amounts are dropped.
func ParseBundle(raw map[string]any) RewardBundle {
	b := make(RewardBundle, len(raw))
	for k, v := range raw {
		c, ok := ParseCurrency(k)
		if !ok {
			continue
		}
		n, ok := coerceAmount(v)
		if !ok || n <= 0 {
			continue
		}
		b[c] = n
	}
	return b
}

func coerceAmount(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// ─── Reward Result ──────────────────────────────────────────────────────────

// RewardResult reports what was actually applied. All four amounts are
// always present, zero when nothing was credited.
type RewardResult struct {
	Credits    int64          `json:"credits"`
	Uridium    int64          `json:"uridium"`
	Honor      int64          `json:"honor"`
	Experience int64          `json:"experience"`
	LevelUp    *LevelUpRecord `json:"level_up"`
}

// Amount returns the applied amount for c.
func (r RewardResult) Amount(c Currency) int64 {
	switch c {
	case Credits:
		return r.Credits
	case Uridium:
		return r.Uridium
	case Honor:
		return r.Honor
	case Experience:
		return r.Experience
	}
	return 0
}

// Set records the applied amount for c. Unknown currencies are ignored.
func (r *RewardResult) Set(c Currency, n int64) {
	switch c {
	case Credits:
		r.Credits = n
	case Uridium:
		r.Uridium = n
	case Honor:
		r.Honor = n
	case Experience:
		r.Experience = n
	}
}

// Empty reports whether nothing was applied.
func (r RewardResult) Empty() bool {
	return r.Credits == 0 && r.Uridium == 0 && r.Honor == 0 && r.Experience == 0 && r.LevelUp == nil
}
