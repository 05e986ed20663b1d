package world

import (
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
)

// checkContracts runs after every successful action: every active contract
// whose cumulative item requirements are already covered by inventory plus
// storage completes atomically — requirements consumed, rewards and
// reputation granted, the instance removed from the active set. A completed
// contract may be re-accepted, but it will not pay out again until its
// requirements are independently replenished; that is the whole defence
// against reputation farming.
func (e *Engine) checkContracts(st *WorldState, log *protocol.ActionLog) {
	// Rewards can stock the requirements of another active contract, so
	// scan until a pass completes nothing.
	for {
		completed := false
		for i := 0; i < len(st.Player.ActiveContracts); i++ {
			active := st.Player.ActiveContracts[i]
			def, ok := e.cats.Contracts.ByID[active.ContractID]
			if !ok {
				continue
			}
			if !e.requirementsMet(st, def) {
				continue
			}

			entry := e.completeContract(st, def)
			log.ContractsCompleted = append(log.ContractsCompleted, entry)
			st.Player.ActiveContracts = append(
				st.Player.ActiveContracts[:i],
				st.Player.ActiveContracts[i+1:]...,
			)
			i--
			completed = true
		}
		if !completed {
			return
		}
	}
}

func (e *Engine) requirementsMet(st *WorldState, def catalogs.ContractDef) bool {
	for item, n := range def.Requirements {
		if st.Player.heldAndStored(item) < n {
			return false
		}
	}
	return true
}

// completeContract consumes requirements (inventory first, then storage) and
// grants rewards. Reward items land in inventory while it has room and
// overflow to storage, so completion can never break the inventory bound.
func (e *Engine) completeContract(st *WorldState, def catalogs.ContractDef) protocol.ContractCompletion {
	entry := protocol.ContractCompletion{
		ContractID:       def.ContractID,
		ItemsConsumed:    map[protocol.ItemID]int{},
		ReputationGained: def.ReputationReward,
	}

	for _, item := range sortedItemKeys(def.Requirements) {
		n := def.Requirements[item]
		fromInv := min(n, st.Player.Inventory[item])
		if fromInv > 0 {
			st.Player.removeItem(item, fromInv)
		}
		if rest := n - fromInv; rest > 0 {
			st.Player.Storage[item] -= rest
			if st.Player.Storage[item] == 0 {
				delete(st.Player.Storage, item)
			}
		}
		entry.ItemsConsumed[item] = n
	}

	if len(def.RewardItems) > 0 {
		entry.RewardsGranted = map[protocol.ItemID]int{}
		for _, item := range sortedItemKeys(def.RewardItems) {
			n := def.RewardItems[item]
			toInv := min(n, st.Player.freeSlots())
			if toInv > 0 {
				st.Player.addItem(item, toInv)
			}
			if rest := n - toInv; rest > 0 {
				st.Player.Storage[item] += rest
			}
			entry.RewardsGranted[item] = n
		}
	}

	st.Player.GuildReputation += def.ReputationReward

	if def.XPRewardSkill != "" && st.Player.enrolled(def.XPRewardSkill) {
		st.Player.Skills[def.XPRewardSkill]++
		entry.XPGranted = &protocol.SkillGain{Skill: def.XPRewardSkill, XP: 1}
	}
	return entry
}

func sortedItemKeys(m map[protocol.ItemID]int) []protocol.ItemID {
	keys := make([]protocol.ItemID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
