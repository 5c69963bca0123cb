package progression

import (
	"fmt"
	"math"

	"github.com/starfront/starfront/internal/domain"
)

// ─── Levels ─────────────────────────────────────────────────────────────────
// Level n is reached once cumulative experience hits thresholds[n-1].
// Level 1 starts at 0 XP; the table doubles from level 2 onwards.

// DefaultLevelThresholds is the cumulative XP required for levels 1..20.
var DefaultLevelThresholds = []int64{
	0,             // 1
	10_000,        // 2
	20_000,        // 3
	40_000,        // 4
	80_000,        // 5
	160_000,       // 6
	320_000,       // 7
	640_000,       // 8
	1_280_000,     // 9
	2_560_000,     // 10
	5_120_000,     // 11
	10_240_000,    // 12
	20_480_000,    // 13
	40_960_000,    // 14
	81_920_000,    // 15
	163_840_000,   // 16
	327_680_000,   // 17
	655_360_000,   // 18
	1_310_720_000, // 19
	2_621_440_000, // 20
}

// LevelTracker converts cumulative experience into a level and reports
// level-up crossings. It implements domain.ExperienceTracker.
//
// Not safe for concurrent use; it lives on the reward loop with the ledger.
type LevelTracker struct {
	thresholds []int64
	bonus      func(level int) domain.LevelBonus
	xp         int64
	level      int
}

// NewLevelTracker creates a tracker at 0 XP. A nil or empty thresholds slice
// selects DefaultLevelThresholds.
func NewLevelTracker(thresholds []int64) (*LevelTracker, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultLevelThresholds
	}
	if thresholds[0] != 0 {
		return nil, fmt.Errorf("level 1 threshold must be 0, got %d", thresholds[0])
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("level %d threshold %d not above level %d (%d)",
				i+1, thresholds[i], i, thresholds[i-1])
		}
	}
	t := make([]int64, len(thresholds))
	copy(t, thresholds)
	return &LevelTracker{
		thresholds: t,
		bonus:      DefaultLevelBonus,
		level:      1,
	}, nil
}

// SetBonusFunc replaces the per-level bonus generator.
func (lt *LevelTracker) SetBonusFunc(fn func(level int) domain.LevelBonus) {
	if fn == nil {
		fn = DefaultLevelBonus
	}
	lt.bonus = fn
}

// DefaultLevelBonus grants credits and uridium scaled by the new level.
func DefaultLevelBonus(level int) domain.LevelBonus {
	return domain.LevelBonus{
		Credits: int64(level) * 1_000,
		Uridium: int64(level) * 10,
		Label:   fmt.Sprintf("Level %d reached", level),
	}
}

// AddExperience accumulates amount, saturating at math.MaxInt64. It returns
// a record for the highest level crossed, or nil when the level did not
// change or amount <= 0.
func (lt *LevelTracker) AddExperience(amount int64) *domain.LevelUpRecord {
	if amount <= 0 {
		return nil
	}
	if amount > math.MaxInt64-lt.xp {
		amount = math.MaxInt64 - lt.xp
	}
	lt.xp += amount
	next := lt.levelFor(lt.xp)
	if next <= lt.level {
		return nil
	}
	lt.level = next
	return &domain.LevelUpRecord{Level: next, Bonus: lt.bonus(next)}
}

// Experience returns cumulative XP.
func (lt *LevelTracker) Experience() int64 { return lt.xp }

// Level returns the current level (1-based).
func (lt *LevelTracker) Level() int { return lt.level }

// MaxLevel returns the highest reachable level.
func (lt *LevelTracker) MaxLevel() int { return len(lt.thresholds) }

// XPToNextLevel returns the XP still missing for the next level, 0 at max.
func (lt *LevelTracker) XPToNextLevel() int64 {
	if lt.level >= len(lt.thresholds) {
		return 0
	}
	return lt.thresholds[lt.level] - lt.xp
}

// Restore sets cumulative XP from saved data without reporting level-ups.
// Negative values are clamped to 0.
func (lt *LevelTracker) Restore(xp int64) {
	if xp < 0 {
		xp = 0
	}
	lt.xp = xp
	lt.level = lt.levelFor(xp)
}

func (lt *LevelTracker) levelFor(xp int64) int {
	lvl := 1
	for i, need := range lt.thresholds {
		if xp < need {
			break
		}
		lvl = i + 1
	}
	return lvl
}
