package ledger

import (
	"fmt"

	"github.com/starfront/starfront/internal/domain"
)

// ─── Enemy Reward Table ─────────────────────────────────────────────────────

// DefaultProfiles returns the built-in enemy reward table. It always holds a
// domain.GenericEnemy entry.
func DefaultProfiles() map[string]domain.EnemyRewardProfile {
	return map[string]domain.EnemyRewardProfile{
		domain.GenericEnemy: {Credits: 100, Uridium: 1, Honor: 2, Experience: 100},
		"npc_x1":            {Credits: 400, Uridium: 1, Honor: 2, Experience: 400},
		"npc_x2":            {Credits: 500, Uridium: 2, Honor: 3, Experience: 500},
		"npc_x3":            {Credits: 800, Uridium: 4, Honor: 4, Experience: 800},
		"npc_x4":            {Credits: 1_600, Uridium: 8, Honor: 8, Experience: 1_600},
		"npc_x5":            {Credits: 3_200, Uridium: 16, Honor: 16, Experience: 3_200},
		"boss_x1":           {Credits: 1_600, Uridium: 4, Honor: 8, Experience: 1_600},
		"boss_x2":           {Credits: 2_000, Uridium: 8, Honor: 12, Experience: 2_000},
		"boss_x3":           {Credits: 3_200, Uridium: 16, Honor: 16, Experience: 3_200},
	}
}

// Profile returns the table entry for enemyType and whether it was found.
func (l *Ledger) Profile(enemyType string) (domain.EnemyRewardProfile, bool) {
	p, ok := l.profiles[enemyType]
	return p, ok
}

// ComputeEnemyReward builds the reward for destroying enemyType. An explicit
// profile is used verbatim; otherwise the table entry; otherwise the generic
// entry. It never fails.
func (l *Ledger) ComputeEnemyReward(enemyType string, explicit *domain.EnemyRewardProfile) domain.RewardBundle {
	if explicit != nil {
		return explicit.Bundle()
	}
	if p, ok := l.profiles[enemyType]; ok {
		return p.Bundle()
	}
	return l.profiles[domain.GenericEnemy].Bundle()
}

// ─── Event Processing ───────────────────────────────────────────────────────

// BundleFor derives the reward request for ev.
func (l *Ledger) BundleFor(ev domain.Event) (domain.RewardBundle, error) {
	switch ev.Category {
	case domain.EventEnemyKill:
		return l.ComputeEnemyReward(ev.EnemyType, ev.Profile), nil
	case domain.EventMining:
		return domain.RewardBundle{
			domain.Credits: ev.Credits,
			domain.Uridium: ev.Uridium,
			domain.Honor:   ev.Honor,
		}, nil
	case domain.EventBonusPickup:
		return domain.RewardBundle{
			domain.Credits: ev.Credits,
			domain.Uridium: ev.Uridium,
		}, nil
	case domain.EventQuest:
		return ev.Bundle, nil
	}
	return nil, fmt.Errorf("%q: %w", ev.Category, domain.ErrUnknownCategory)
}

// ProcessEvent applies ev, notifies the sink, then fires the reward-gained
// callback. An unknown category changes nothing.
func (l *Ledger) ProcessEvent(ev domain.Event) (domain.RewardResult, error) {
	b, err := l.BundleFor(ev)
	if err != nil {
		return domain.RewardResult{}, err
	}
	return l.process(b), nil
}

func (l *Ledger) process(b domain.RewardBundle) domain.RewardResult {
	res := l.ApplyRewardBundle(b)
	l.NotifyResult(res)
	if l.onReward != nil {
		l.onReward(res)
	}
	return res
}

// ProcessEnemyKill rewards an enemy kill. explicit may be nil.
func (l *Ledger) ProcessEnemyKill(enemyType string, explicit *domain.EnemyRewardProfile) domain.RewardResult {
	return l.process(l.ComputeEnemyReward(enemyType, explicit))
}

// ProcessMining rewards a mining tick.
func (l *Ledger) ProcessMining(credits, uridium, honor int64) domain.RewardResult {
	return l.process(domain.RewardBundle{
		domain.Credits: credits,
		domain.Uridium: uridium,
		domain.Honor:   honor,
	})
}

// ProcessBonusPickup rewards a bonus box pickup.
func (l *Ledger) ProcessBonusPickup(credits, uridium int64) domain.RewardResult {
	return l.process(domain.RewardBundle{
		domain.Credits: credits,
		domain.Uridium: uridium,
	})
}

// ProcessQuest rewards a completed quest with an arbitrary bundle.
func (l *Ledger) ProcessQuest(b domain.RewardBundle) domain.RewardResult {
	return l.process(b)
}
