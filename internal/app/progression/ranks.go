// Package progression derives player rank and level from cumulative honor
// and experience.
//
// Ranks are a pure lookup over a fixed, ascending table of honor thresholds.
// The last tier is open-ended. Levels are tracked by LevelTracker, which
// implements domain.ExperienceTracker for the ledger.
package progression

import (
	"fmt"
	"sort"

	"github.com/starfront/starfront/internal/domain"
)

// ─── Rank Table ─────────────────────────────────────────────────────────────

// defaultTiers lists min honor per rank; MaxHonor is filled in by NewTable.
var defaultTiers = []domain.RankTier{
	{Name: "Recluta", Symbol: "rank_01", MinHonor: 0},
	{Name: "Cadetto", Symbol: "rank_02", MinHonor: 1_000},
	{Name: "Soldato", Symbol: "rank_03", MinHonor: 5_000},
	{Name: "Caporale", Symbol: "rank_04", MinHonor: 15_000},
	{Name: "Caporal Maggiore", Symbol: "rank_05", MinHonor: 35_000},
	{Name: "Sergente", Symbol: "rank_06", MinHonor: 75_000},
	{Name: "Sergente Maggiore", Symbol: "rank_07", MinHonor: 150_000},
	{Name: "Maresciallo", Symbol: "rank_08", MinHonor: 300_000},
	{Name: "Sottotenente", Symbol: "rank_09", MinHonor: 500_000},
	{Name: "Tenente", Symbol: "rank_10", MinHonor: 800_000},
	{Name: "Capitano", Symbol: "rank_11", MinHonor: 1_200_000},
	{Name: "Maggiore", Symbol: "rank_12", MinHonor: 1_800_000},
	{Name: "Tenente Colonnello", Symbol: "rank_13", MinHonor: 2_600_000},
	{Name: "Colonnello", Symbol: "rank_14", MinHonor: 3_600_000},
	{Name: "Generale di Brigata", Symbol: "rank_15", MinHonor: 5_000_000},
	{Name: "Generale", Symbol: "rank_16", MinHonor: 7_000_000},
	{Name: "Leggenda", Symbol: "rank_17", MinHonor: 9_000_000},
}

// Table is an immutable, ascending rank table. Share it by pointer.
type Table struct {
	tiers []domain.RankTier
}

// NewTable validates tiers and derives each MaxHonor from the next tier's
// MinHonor. The first tier must start at 0 and thresholds must be strictly
// increasing.
func NewTable(tiers []domain.RankTier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, domain.ErrRankTableEmpty
	}
	if tiers[0].MinHonor != 0 {
		return nil, fmt.Errorf("first tier %q starts at %d: %w", tiers[0].Name, tiers[0].MinHonor, domain.ErrRankTableInvalid)
	}

	out := make([]domain.RankTier, len(tiers))
	copy(out, tiers)
	for i := range out {
		if i+1 < len(out) {
			if out[i+1].MinHonor <= out[i].MinHonor {
				return nil, fmt.Errorf("tier %q (%d) not above %q (%d): %w",
					out[i+1].Name, out[i+1].MinHonor, out[i].Name, out[i].MinHonor, domain.ErrRankTableInvalid)
			}
			out[i].MaxHonor = out[i+1].MinHonor - 1
		} else {
			out[i].MaxHonor = domain.UnboundedHonor
		}
	}
	return &Table{tiers: out}, nil
}

// DefaultTable returns the built-in rank table.
func DefaultTable() *Table {
	t, err := NewTable(defaultTiers)
	if err != nil {
		panic(err) // static data
	}
	return t
}

// Tiers returns a copy of the table in ascending order.
func (t *Table) Tiers() []domain.RankTier {
	out := make([]domain.RankTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// index returns the position of the highest tier with MinHonor <= honor.
// Negative honor and lookups that somehow miss resolve to the lowest tier.
func (t *Table) index(honor int64) int {
	if honor < 0 || len(t.tiers) == 0 {
		return 0
	}
	// First tier whose MinHonor exceeds honor; the one before it contains honor.
	i := sort.Search(len(t.tiers), func(i int) bool { return t.tiers[i].MinHonor > honor })
	if i == 0 {
		return 0
	}
	return i - 1
}

// CurrentRank returns the tier containing honor.
func (t *Table) CurrentRank(honor int64) domain.RankTier {
	if len(t.tiers) == 0 {
		return domain.RankTier{}
	}
	return t.tiers[t.index(honor)]
}

// NextRank returns the tier above the current one, or false at the top.
func (t *Table) NextRank(honor int64) (domain.RankTier, bool) {
	i := t.index(honor)
	if i+1 >= len(t.tiers) {
		return domain.RankTier{}, false
	}
	return t.tiers[i+1], true
}

// Progress describes how far a player is toward the next rank.
type Progress struct {
	Progress float64 `json:"progress"` // 0..1
	Current  int64   `json:"current"`  // honor earned inside the current tier
	Needed   int64   `json:"needed"`   // honor still missing for the next tier
	Total    int64   `json:"total"`    // width of the current tier
}

// RankProgress reports progress toward the next rank. At the top tier
// progress is 1 with zero needed and total.
func (t *Table) RankProgress(honor int64) Progress {
	next, ok := t.NextRank(honor)
	if !ok {
		return Progress{Progress: 1.0}
	}
	cur := t.CurrentRank(honor)

	// Clamp so negative honor reads as "start of the lowest tier".
	if honor < cur.MinHonor {
		honor = cur.MinHonor
	}
	p := Progress{
		Current: honor - cur.MinHonor,
		Total:   next.MinHonor - cur.MinHonor,
		Needed:  next.MinHonor - honor,
	}
	p.Progress = float64(p.Current) / float64(p.Total)
	if p.Progress > 1.0 {
		p.Progress = 1.0
	}
	return p
}

// RankByName finds a tier by its display name.
func (t *Table) RankByName(name string) (domain.RankTier, bool) {
	for _, tier := range t.tiers {
		if tier.Name == name {
			return tier, true
		}
	}
	return domain.RankTier{}, false
}

// RankBySymbol finds a tier by its icon symbol.
func (t *Table) RankBySymbol(symbol string) (domain.RankTier, bool) {
	for _, tier := range t.tiers {
		if tier.Symbol == symbol {
			return tier, true
		}
	}
	return domain.RankTier{}, false
}
