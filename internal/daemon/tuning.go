package daemon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starfront/starfront/internal/app/progression"
	"github.com/starfront/starfront/internal/domain"
)

// Tuning overrides the built-in reward and progression tables. Every
// section is optional.
type Tuning struct {
	Enemies         map[string]domain.EnemyRewardProfile `yaml:"enemies"`
	Ranks           []domain.RankTier                    `yaml:"ranks"`
	LevelThresholds []int64                              `yaml:"level_thresholds"`
	LevelBonuses    map[int]domain.LevelBonus            `yaml:"level_bonuses"` // per level, others use the default
}

// LoadTuning reads a YAML tuning file.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// RankTable builds the rank table, falling back to the built-in one.
func (t Tuning) RankTable() (*progression.Table, error) {
	if len(t.Ranks) == 0 {
		return progression.DefaultTable(), nil
	}
	return progression.NewTable(t.Ranks)
}

// LevelTracker builds a level tracker, falling back to the built-in
// thresholds and bonuses.
func (t Tuning) LevelTracker() (*progression.LevelTracker, error) {
	lt, err := progression.NewLevelTracker(t.LevelThresholds)
	if err != nil {
		return nil, err
	}
	if len(t.LevelBonuses) > 0 {
		bonuses := t.LevelBonuses
		lt.SetBonusFunc(func(level int) domain.LevelBonus {
			b, ok := bonuses[level]
			if !ok {
				return progression.DefaultLevelBonus(level)
			}
			if b.Label == "" {
				b.Label = fmt.Sprintf("Level %d reached", level)
			}
			return b
		})
	}
	return lt, nil
}
