package world

import (
	"math"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

// Success-probability model for Explore/Survey, plus the clamped linear
// models for Gather and Fight. All functions here are pure: both the engine
// and the evaluator price actions through them, which is what keeps the two
// modes from drifting.

func clampChance(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// exploreChance prices one discovery attempt from the given area.
//
//	chance = base + levelBonus - distancePenalty + knowledgeBonus
//
// The formula is applied as written: town's distance 0 makes the penalty term
// a bonus, and deep areas may price at or below zero, where discovery simply
// cannot land. Players without the exploration skill roll a flat unskilled
// chance with no bonuses (and earn no XP).
func (e *Engine) exploreChance(st *WorldState, from protocol.AreaID) float64 {
	if !st.Player.enrolled(protocol.SkillExploration) {
		return e.tun.ExploreUnskilledChance
	}
	level := st.Player.skillLevel(protocol.SkillExploration)

	chance := e.tun.ExploreBaseChance
	chance += float64(level-1) * e.tun.ExploreLevelBonus
	chance -= float64(from.Distance-1) * e.tun.ExploreDistancePenalty
	chance += e.knowledgeBonus(st, from)
	return chance
}

// knowledgeBonus rewards how much of the surrounding graph is already known:
// a flat bonus per known neighbour, plus a proportional bonus for known
// non-adjacent areas in the frontier tier.
func (e *Engine) knowledgeBonus(st *WorldState, from protocol.AreaID) float64 {
	adjacent := map[protocol.AreaID]bool{}
	knownConnected := 0
	for _, c := range st.connectionsOf(from) {
		other, _ := c.ID.Other(from)
		adjacent[other] = true
		if st.knowsConnection(c.ID) && st.knowsArea(other) {
			knownConnected++
		}
	}

	bonus := float64(knownConnected) * e.tun.ExploreKnownAreaBonus

	frontierDistance := from.Distance + 1
	total := e.areaCount(frontierDistance)
	if total > 0 {
		knownAtDistance := 0
		for id := range st.Exploration.KnownAreas {
			if id.Distance == frontierDistance && !adjacent[id] {
				knownAtDistance++
			}
		}
		bonus += e.tun.ExploreFrontierBonus * float64(knownAtDistance) / float64(total)
	}
	return bonus
}

// exploreCadence is the tick spacing between attempts:
// max(1, 2 - floor(level/10) * 0.1). Unskilled players pace at the base.
func (e *Engine) exploreCadence(st *WorldState) float64 {
	level := 0
	if st.Player.enrolled(protocol.SkillExploration) {
		level = st.Player.skillLevel(protocol.SkillExploration)
	}
	cadence := 2.0 - float64(level/10)*0.1
	return math.Max(1, cadence)
}

// expectedDiscoveryTicks is the mean ticks to first success at the given
// per-attempt chance.
func expectedDiscoveryTicks(cadence, chance float64) float64 {
	if chance <= 0 {
		return math.Inf(1)
	}
	return cadence / chance
}

// gatherChance prices one extraction attempt against the easiest eligible
// material's requirement.
func (e *Engine) gatherChance(skillLevel, requiredLevel int) float64 {
	chance := e.tun.GatherBaseChance + float64(skillLevel-requiredLevel)*e.tun.LevelStepChance
	return clampChance(chance, e.tun.MinChance, e.tun.MaxChance)
}

// fightChance prices one fight against a mob of the given level.
func (e *Engine) fightChance(combatLevel, mobLevel int) float64 {
	chance := e.tun.FightBaseChance + float64(combatLevel-mobLevel)*e.tun.LevelStepChance
	return clampChance(chance, e.tun.MinChance, e.tun.MaxChance)
}

// recordLuck books the delta between expected and actual ticks for a
// completed discovery, and moves the signed streak counter.
func (s *WorldState) recordLuck(delta float64) {
	s.Exploration.TotalLuckDelta += delta
	switch {
	case delta > 0:
		if s.Exploration.CurrentStreak < 0 {
			s.Exploration.CurrentStreak = 0
		}
		s.Exploration.CurrentStreak++
	case delta < 0:
		if s.Exploration.CurrentStreak > 0 {
			s.Exploration.CurrentStreak = 0
		}
		s.Exploration.CurrentStreak--
	}
}
