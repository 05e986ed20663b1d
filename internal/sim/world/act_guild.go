package world

import (
	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
)

// Enrol joins a guild, granting its skill at level 1. Enrolment is the gate
// for every skill-bearing action and for seeing node contents at all.
func (e *Engine) resolveEnrol(st *WorldState, a protocol.Enrol) (resolution, protocol.FailureType) {
	guildLoc, ok := st.World.GuildLocations[a.Skill]
	if !ok {
		return resolution{}, protocol.FailWrongLocation
	}
	if st.Exploration.CurrentLocation != guildLoc {
		return resolution{}, protocol.FailWrongLocation
	}
	if st.Player.enrolled(a.Skill) {
		return resolution{}, protocol.FailAlreadyEnrolled
	}

	return resolution{
		mode:   modeDeterministic,
		cost:   0,
		chance: 1,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.Player.Skills[a.Skill] = 1
			ctx.log.SkillGained = &protocol.SkillGain{Skill: a.Skill, XP: 1}
		},
	}, ""
}

// AcceptContract takes a template active. Completion is checked immediately
// afterwards like after any successful action, so a pre-stocked requirement
// completes in the same turn.
func (e *Engine) resolveAcceptContract(st *WorldState, a protocol.AcceptContract) (resolution, protocol.FailureType) {
	def, ok := e.cats.Contracts.ByID[a.ContractID]
	if !ok {
		return resolution{}, protocol.FailContractNotFound
	}
	guildLoc := st.World.GuildLocations[def.Guild]
	if st.Exploration.CurrentLocation != guildLoc {
		return resolution{}, protocol.FailWrongLocation
	}
	for _, active := range st.Player.ActiveContracts {
		if active.ContractID == a.ContractID {
			return resolution{}, protocol.FailAlreadyHasContract
		}
	}

	return resolution{
		mode:   modeDeterministic,
		cost:   0,
		chance: 1,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.Player.ActiveContracts = append(st.Player.ActiveContracts, ActiveContract{
				ContractID:   a.ContractID,
				AcceptedTick: st.Time.CurrentTick,
			})
		},
	}, ""
}

// TurnInCombatTokens trades tokens for guild reputation at the combat guild.
func (e *Engine) resolveTurnInTokens(st *WorldState, a protocol.TurnInCombatTokens) (resolution, protocol.FailureType) {
	if st.Exploration.CurrentLocation != st.World.GuildLocations[protocol.SkillCombat] {
		return resolution{}, protocol.FailWrongLocation
	}
	if a.Quantity <= 0 || st.Player.Inventory[catalogs.CombatTokenItem] < a.Quantity {
		return resolution{}, protocol.FailMissingItems
	}

	return resolution{
		mode:    modeDeterministic,
		cost:    0,
		chance:  1,
		xpSkill: protocol.SkillCombat,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.Player.removeItem(catalogs.CombatTokenItem, a.Quantity)
			st.Player.GuildReputation += a.Quantity
			addDelta(&ctx.log.StateDelta.ItemsLost, catalogs.CombatTokenItem, a.Quantity)
			ctx.log.StateDelta.ReputationGained += a.Quantity
		},
	}, ""
}
