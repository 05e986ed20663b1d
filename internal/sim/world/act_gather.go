package world

import (
	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
)

func (e *Engine) resolveGather(st *WorldState, a protocol.Gather) (resolution, protocol.FailureType) {
	loc, node := st.findNode(a.NodeID)
	if node == nil {
		return resolution{}, protocol.FailNodeNotFound
	}
	// Undiscovered locations fail regardless of skill.
	if !st.knowsLocation(loc.ID) {
		return resolution{}, protocol.FailLocationNotDiscovered
	}
	if st.Exploration.CurrentArea != loc.Area || st.Exploration.CurrentLocation != loc.ID {
		return resolution{}, protocol.FailWrongLocation
	}

	skill := st.nodeSkill(node)
	if !st.Player.enrolled(skill) {
		return resolution{}, protocol.FailNotEnrolled
	}
	level := st.Player.skillLevel(skill)

	eligible := eligibleMaterials(node, level)
	if len(eligible) == 0 {
		if nodeExhausted(node) {
			return resolution{}, protocol.FailNodeDepleted
		}
		return resolution{}, protocol.FailSkillTooLow
	}
	if st.Player.freeSlots() < 1 {
		return resolution{}, protocol.FailInventoryFull
	}

	// Success is priced against the easiest eligible material.
	easiest := eligible[0]
	for _, i := range eligible {
		if node.Materials[i].RequiredLevel < node.Materials[easiest].RequiredLevel {
			easiest = i
		}
	}
	chance := e.gatherChance(level, node.Materials[easiest].RequiredLevel)

	return resolution{
		mode:        modeSingleRoll,
		cost:        e.tun.GatherTicks,
		chance:      chance,
		rollLabel:   "gather:" + string(a.NodeID),
		rollFailure: protocol.FailGather,
		xpSkill:     skill,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			// Re-resolve against the state being mutated: the evaluator
			// applies to a clone, so pointers from resolve time would
			// alias the original.
			_, node := st.findNode(a.NodeID)
			level := st.Player.skillLevel(st.nodeSkill(node))
			eligible := eligibleMaterials(node, level)
			if len(eligible) == 0 {
				return
			}

			pick := eligible[0]
			if !ctx.assume {
				entries := make([]rng.Weighted, len(eligible))
				for i, mi := range eligible {
					m := &node.Materials[mi]
					entries[i] = rng.Weighted{
						Label:  "material:" + string(m.Item),
						Weight: float64(m.RemainingUnits),
					}
				}
				winner, recs := st.RNG.RollWeighted(entries)
				ctx.log.RngRolls = append(ctx.log.RngRolls, recs...)
				if winner >= 0 {
					pick = eligible[winner]
				}
			}

			m := &node.Materials[pick]
			m.RemainingUnits--
			st.Player.addItem(m.Item, 1)
			addDelta(&ctx.log.StateDelta.ItemsGained, m.Item, 1)
		},
	}, ""
}

// eligibleMaterials lists indices of reserves the player can work: units
// remaining and requirement within their level.
func eligibleMaterials(node *Node, level int) []int {
	var out []int
	for i := range node.Materials {
		m := &node.Materials[i]
		if m.RemainingUnits > 0 && m.RequiredLevel <= level {
			out = append(out, i)
		}
	}
	return out
}

func nodeExhausted(node *Node) bool {
	for i := range node.Materials {
		if node.Materials[i].RemainingUnits > 0 {
			return false
		}
	}
	return true
}

func addDelta(m *map[protocol.ItemID]int, item protocol.ItemID, n int) {
	if *m == nil {
		*m = map[protocol.ItemID]int{}
	}
	(*m)[item] += n
}
