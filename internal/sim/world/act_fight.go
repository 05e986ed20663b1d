package world

import (
	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
)

func (e *Engine) resolveFight(st *WorldState, a protocol.Fight) (resolution, protocol.FailureType) {
	loc := st.mobCampFor(a.MobID)
	if loc == nil {
		return resolution{}, protocol.FailEnemyNotFound
	}
	if !st.knowsLocation(loc.ID) {
		return resolution{}, protocol.FailLocationNotDiscovered
	}
	if st.Exploration.CurrentArea != loc.Area || st.Exploration.CurrentLocation != loc.ID {
		return resolution{}, protocol.FailWrongLocation
	}
	if !st.Player.enrolled(protocol.SkillCombat) {
		return resolution{}, protocol.FailNotEnrolled
	}
	if st.Player.EquippedWeapon == "" {
		return resolution{}, protocol.FailMissingWeapon
	}

	mob, ok := e.cats.Mobs.ByID[a.MobID]
	if !ok {
		return resolution{}, protocol.FailEnemyNotFound
	}
	// Any loot outcome must fit: reserve room for the largest drop so a
	// successful fight never half-commits.
	maxDrop := 0
	for _, l := range mob.Loot {
		if l.Count > maxDrop {
			maxDrop = l.Count
		}
	}
	if st.Player.freeSlots() < maxDrop {
		return resolution{}, protocol.FailInventoryFull
	}

	chance := e.fightChance(st.Player.skillLevel(protocol.SkillCombat), mob.Level)

	return resolution{
		mode:        modeSingleRoll,
		cost:        e.tun.FightTicks,
		chance:      chance,
		rollLabel:   "fight:" + string(a.MobID),
		rollFailure: protocol.FailCombat,
		xpSkill:     protocol.SkillCombat,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			drop := mob.Loot[0]
			if !ctx.assume {
				entries := make([]rng.Weighted, len(mob.Loot))
				for i, l := range mob.Loot {
					entries[i] = rng.Weighted{Label: "loot:" + string(l.Item), Weight: l.Weight}
				}
				winner, recs := st.RNG.RollWeighted(entries)
				ctx.log.RngRolls = append(ctx.log.RngRolls, recs...)
				if winner >= 0 {
					drop = mob.Loot[winner]
				}
			}
			st.Player.addItem(drop.Item, drop.Count)
			addDelta(&ctx.log.StateDelta.ItemsGained, drop.Item, drop.Count)
		},
	}, ""
}

// mobCampFor finds the materialized camp hosting the given mob template.
func (s *WorldState) mobCampFor(mob protocol.MobID) *Location {
	// Check the current area first so fights resolve against the camp the
	// player is standing at, then fall back to any materialized camp.
	if cur := s.currentArea(); cur != nil {
		for _, l := range cur.Locations {
			if l.Kind == protocol.LocationMobCamp && l.Mob == mob {
				return l
			}
		}
	}
	for _, id := range s.sortedAreaIDs() {
		for _, l := range s.Exploration.Areas[id].Locations {
			if l.Kind == protocol.LocationMobCamp && l.Mob == mob {
				return l
			}
		}
	}
	return nil
}
