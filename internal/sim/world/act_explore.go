package world

import (
	"math"
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
)

// Explore probes the current area's frontier: connections whose far side is
// still unknown. Attempts repeat at the skill's cadence until one succeeds or
// the session cannot afford another try.
func (e *Engine) resolveExplore(st *WorldState) (resolution, protocol.FailureType) {
	candidates := st.frontierConnections(st.Exploration.CurrentArea)
	if len(candidates) == 0 {
		return resolution{}, protocol.FailNothingToExplore
	}

	chance := e.exploreChance(st, st.Exploration.CurrentArea)
	cadence := e.exploreCadence(st)

	return resolution{
		mode:          modeRepeated,
		cost:          int(math.Ceil(cadence)),
		chance:        chance,
		cadence:       cadence,
		expectedTicks: expectedDiscoveryTicks(cadence, chance),
		rollLabel:     "explore:" + st.Exploration.CurrentArea.String(),
		xpSkill:       exploreXPSkill(st),
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			candidates := st.frontierConnections(st.Exploration.CurrentArea)
			if len(candidates) == 0 {
				return
			}
			pick := candidates[0]
			if !ctx.assume {
				entries := make([]rng.Weighted, len(candidates))
				for i, c := range candidates {
					entries[i] = rng.Weighted{Label: "frontier:" + c.String(), Weight: 1}
				}
				winner, recs := st.RNG.RollWeighted(entries)
				ctx.log.RngRolls = append(ctx.log.RngRolls, recs...)
				if winner >= 0 {
					pick = candidates[winner]
				}
			}

			target, _ := pick.Other(st.Exploration.CurrentArea)
			e.ensureArea(st, target)
			st.learnConnection(pick)
			st.learnArea(target)
			ctx.log.StateDelta.ConnectionsDiscovered = append(ctx.log.StateDelta.ConnectionsDiscovered, pick)
			ctx.log.StateDelta.AreasDiscovered = append(ctx.log.StateDelta.AreasDiscovered, target)
		},
	}, ""
}

// Survey probes the current area itself, turning up one of its undiscovered
// locations.
func (e *Engine) resolveSurvey(st *WorldState) (resolution, protocol.FailureType) {
	candidates := st.unknownLocations(st.Exploration.CurrentArea)
	if len(candidates) == 0 {
		return resolution{}, protocol.FailNothingToSurvey
	}

	chance := e.exploreChance(st, st.Exploration.CurrentArea)
	cadence := e.exploreCadence(st)

	return resolution{
		mode:          modeRepeated,
		cost:          int(math.Ceil(cadence)),
		chance:        chance,
		cadence:       cadence,
		expectedTicks: expectedDiscoveryTicks(cadence, chance),
		rollLabel:     "survey:" + st.Exploration.CurrentArea.String(),
		xpSkill:       exploreXPSkill(st),
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			candidates := st.unknownLocations(st.Exploration.CurrentArea)
			if len(candidates) == 0 {
				return
			}
			pick := candidates[0]
			if !ctx.assume {
				entries := make([]rng.Weighted, len(candidates))
				for i, id := range candidates {
					entries[i] = rng.Weighted{Label: "site:" + string(id), Weight: 1}
				}
				winner, recs := st.RNG.RollWeighted(entries)
				ctx.log.RngRolls = append(ctx.log.RngRolls, recs...)
				if winner >= 0 {
					pick = candidates[winner]
				}
			}
			st.learnLocation(pick)
			ctx.log.StateDelta.LocationsDiscovered = append(ctx.log.StateDelta.LocationsDiscovered, pick)
		},
	}, ""
}

// exploreXPSkill credits Exploration only when the player actually has the
// skill; unskilled wanderers roll the flat chance and earn nothing.
func exploreXPSkill(st *WorldState) protocol.SkillID {
	if st.Player.enrolled(protocol.SkillExploration) {
		return protocol.SkillExploration
	}
	return ""
}

// runRepeated drives Explore/Survey: each attempt costs one cadence, failures
// accumulate time, and the first success applies the discovery and books the
// luck delta. Returns false when the session ran out before a success.
func (e *Engine) runRepeated(st *WorldState, res resolution, log *protocol.ActionLog) bool {
	consumed := 0.0
	for {
		if int(math.Ceil(consumed+res.cadence)) > st.Time.SessionRemainingTicks {
			e.consumeTime(st, int(math.Ceil(consumed)), log)
			log.FailureType = protocol.FailSessionEnded
			return false
		}
		ok, rec := st.RNG.Roll(res.chance, res.rollLabel)
		log.RngRolls = append(log.RngRolls, rec)
		consumed += res.cadence
		if !ok {
			continue
		}

		actual := math.Ceil(consumed)
		e.consumeTime(st, int(actual), log)
		delta := res.expectedTicks - actual
		st.recordLuck(delta)
		log.StateDelta.LuckDelta = &delta
		res.apply(e, st, applyCtx{log: log, assume: false})
		return true
	}
}

// frontierConnections lists, in canonical order, edges of the area whose far
// endpoint is undiscovered.
func (s *WorldState) frontierConnections(from protocol.AreaID) []protocol.ConnectionID {
	var out []protocol.ConnectionID
	for _, c := range s.connectionsOf(from) {
		other, _ := c.ID.Other(from)
		if !s.knowsArea(other) {
			out = append(out, c.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// unknownLocations lists, in generation order, the area's undiscovered
// locations.
func (s *WorldState) unknownLocations(areaID protocol.AreaID) []protocol.LocationID {
	a := s.area(areaID)
	if a == nil {
		return nil
	}
	var out []protocol.LocationID
	for _, l := range a.Locations {
		if !s.knowsLocation(l.ID) {
			out = append(out, l.ID)
		}
	}
	return out
}
