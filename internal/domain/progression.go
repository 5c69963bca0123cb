package domain

import "math"

// ─── Progression Types ──────────────────────────────────────────────────────
// Ranks derive from cumulative honor; levels derive from cumulative
// experience. Neither is a currency.

// UnboundedHonor is the MaxHonor reported by the top rank tier.
const UnboundedHonor int64 = math.MaxInt64

// RankTier is one named band of honor values. Immutable once defined.
type RankTier struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	MinHonor int64  `json:"min_honor" yaml:"min_honor"`
	MaxHonor int64  `json:"max_honor" yaml:"max_honor"` // UnboundedHonor on the last tier
}

// Unbounded reports whether the tier has no upper limit.
func (t RankTier) Unbounded() bool { return t.MaxHonor == UnboundedHonor }

// Contains reports whether honor falls inside [MinHonor, MaxHonor].
func (t RankTier) Contains(honor int64) bool {
	return honor >= t.MinHonor && honor <= t.MaxHonor
}

// LevelBonus is whatever the experience subsystem attaches to a level-up.
// The ledger passes it through without interpreting it.
type LevelBonus struct {
	Credits int64  `json:"credits,omitempty" yaml:"credits"`
	Uridium int64  `json:"uridium,omitempty" yaml:"uridium"`
	Label   string `json:"label,omitempty" yaml:"label"`
}

// LevelUpRecord reports that a level boundary was crossed.
type LevelUpRecord struct {
	Level int        `json:"level"`
	Bonus LevelBonus `json:"bonus"`
}

// ─── Enemy Rewards ──────────────────────────────────────────────────────────

// GenericEnemy is the fallback key of the enemy reward table.
const GenericEnemy = "generic"

// EnemyRewardProfile is the fixed reward for destroying one enemy type.
type EnemyRewardProfile struct {
	Credits    int64 `json:"credits" yaml:"credits"`
	Uridium    int64 `json:"uridium" yaml:"uridium"`
	Honor      int64 `json:"honor" yaml:"honor"`
	Experience int64 `json:"experience" yaml:"experience"`
}

// Bundle converts the profile into a reward request.
func (p EnemyRewardProfile) Bundle() RewardBundle {
	return RewardBundle{
		Credits:    p.Credits,
		Uridium:    p.Uridium,
		Honor:      p.Honor,
		Experience: p.Experience,
	}
}

// ─── Gameplay Events ────────────────────────────────────────────────────────

// EventCategory names the gameplay source of a reward.
type EventCategory string

const (
	EventEnemyKill   EventCategory = "enemy_kill"
	EventMining      EventCategory = "mining"
	EventBonusPickup EventCategory = "bonus_pickup"
	EventQuest       EventCategory = "quest"
)

// Valid reports whether c is a known category.
func (c EventCategory) Valid() bool {
	switch c {
	case EventEnemyKill, EventMining, EventBonusPickup, EventQuest:
		return true
	}
	return false
}

// Event is one gameplay occurrence to be turned into a reward.
//
// Which fields matter depends on Category:
//   - enemy_kill: EnemyType, optionally Profile
//   - mining: Credits, Uridium, Honor
//   - bonus_pickup: Credits, Uridium
//   - quest: Bundle
type Event struct {
	ID        string              `json:"id,omitempty"`
	Category  EventCategory       `json:"category"`
	EnemyType string              `json:"enemy_type,omitempty"`
	Profile   *EnemyRewardProfile `json:"profile,omitempty"`
	Credits   int64               `json:"credits,omitempty"`
	Uridium   int64               `json:"uridium,omitempty"`
	Honor     int64               `json:"honor,omitempty"`
	Bundle    RewardBundle        `json:"bundle,omitempty"`
}
