package progression

import (
	"errors"
	"testing"

	"github.com/starfront/starfront/internal/domain"
)

// ─── Rank Lookup ────────────────────────────────────────────────────────────

func TestCurrentRank_Boundaries(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		honor int64
		want  string
	}{
		{0, "Recluta"},
		{999, "Recluta"},
		{1000, "Cadetto"},
		{4999, "Cadetto"},
		{5000, "Soldato"},
		{8_999_999, "Generale"},
		{9_000_000, "Leggenda"},
		{10_000_000, "Leggenda"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := table.CurrentRank(tt.honor)
			if got.Name != tt.want {
				t.Errorf("CurrentRank(%d) = %q, want %q", tt.honor, got.Name, tt.want)
			}
			if !got.Contains(tt.honor) {
				t.Errorf("CurrentRank(%d) = [%d, %d], does not contain honor", tt.honor, got.MinHonor, got.MaxHonor)
			}
		})
	}
}

func TestCurrentRank_NegativeHonor(t *testing.T) {
	table := DefaultTable()
	if got := table.CurrentRank(-50); got.Name != "Recluta" {
		t.Errorf("CurrentRank(-50) = %q, want lowest tier", got.Name)
	}
}

func TestCurrentRank_Monotonic(t *testing.T) {
	table := DefaultTable()
	prev := table.CurrentRank(0)
	for honor := int64(0); honor <= 10_000_000; honor += 997 {
		cur := table.CurrentRank(honor)
		if cur.MinHonor < prev.MinHonor {
			t.Fatalf("rank decreased at honor %d: %q -> %q", honor, prev.Name, cur.Name)
		}
		prev = cur
	}
}

func TestTopTierSaturation(t *testing.T) {
	table := DefaultTable()
	const honor = 10_000_000

	if got := table.CurrentRank(honor); got.Name != "Leggenda" {
		t.Errorf("CurrentRank = %q, want Leggenda", got.Name)
	}
	if !table.CurrentRank(honor).Unbounded() {
		t.Error("top tier should be unbounded")
	}
	if next, ok := table.NextRank(honor); ok {
		t.Errorf("NextRank = %q, want none", next.Name)
	}
	got := table.RankProgress(honor)
	if got != (Progress{Progress: 1.0}) {
		t.Errorf("RankProgress = %+v, want {1 0 0 0}", got)
	}
}

func TestNextRank(t *testing.T) {
	table := DefaultTable()
	next, ok := table.NextRank(999)
	if !ok || next.Name != "Cadetto" {
		t.Errorf("NextRank(999) = %q, %v; want Cadetto", next.Name, ok)
	}
}

func TestRankProgress_MidTier(t *testing.T) {
	table := DefaultTable()

	got := table.RankProgress(3000) // Cadetto: 1000..4999, next Soldato at 5000
	want := Progress{Progress: 0.5, Current: 2000, Needed: 2000, Total: 4000}
	if got != want {
		t.Errorf("RankProgress(3000) = %+v, want %+v", got, want)
	}
}

func TestRankProgress_NegativeHonor(t *testing.T) {
	table := DefaultTable()
	got := table.RankProgress(-10)
	if got.Current != 0 || got.Progress != 0 || got.Needed != 1000 || got.Total != 1000 {
		t.Errorf("RankProgress(-10) = %+v", got)
	}
}

func TestRankByNameAndSymbol(t *testing.T) {
	table := DefaultTable()

	tier, ok := table.RankByName("Capitano")
	if !ok || tier.MinHonor != 1_200_000 {
		t.Errorf("RankByName(Capitano) = %+v, %v", tier, ok)
	}
	tier, ok = table.RankBySymbol("rank_02")
	if !ok || tier.Name != "Cadetto" {
		t.Errorf("RankBySymbol(rank_02) = %+v, %v", tier, ok)
	}
	if _, ok := table.RankByName("Ammiraglio"); ok {
		t.Error("RankByName(unknown) should not match")
	}
}

// ─── Table Validation ───────────────────────────────────────────────────────

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		tiers []domain.RankTier
		want  error
	}{
		{"empty", nil, domain.ErrRankTableEmpty},
		{"not starting at zero", []domain.RankTier{{Name: "a", MinHonor: 10}}, domain.ErrRankTableInvalid},
		{"not increasing", []domain.RankTier{{Name: "a"}, {Name: "b", MinHonor: 5}, {Name: "c", MinHonor: 5}}, domain.ErrRankTableInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.tiers)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewTable() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewTable_DerivesMaxHonor(t *testing.T) {
	table, err := NewTable([]domain.RankTier{{Name: "a"}, {Name: "b", MinHonor: 100}})
	if err != nil {
		t.Fatal(err)
	}
	tiers := table.Tiers()
	if tiers[0].MaxHonor != 99 {
		t.Errorf("tier a MaxHonor = %d, want 99", tiers[0].MaxHonor)
	}
	if !tiers[1].Unbounded() {
		t.Error("last tier should be unbounded")
	}
}
