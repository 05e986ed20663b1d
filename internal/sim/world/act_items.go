package world

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

// Store moves items into the town warehouse. It is free and the only action
// that feeds storage, which contracts also draw on.
func (e *Engine) resolveStore(st *WorldState, a protocol.Store) (resolution, protocol.FailureType) {
	if a.Quantity <= 0 {
		return resolution{}, protocol.FailMissingItems
	}
	if st.Exploration.CurrentArea != st.World.StorageArea ||
		st.Exploration.CurrentLocation != st.World.WarehouseLocation {
		return resolution{}, protocol.FailWrongLocation
	}
	if st.Player.Inventory[a.Item] < a.Quantity {
		return resolution{}, protocol.FailMissingItems
	}

	return resolution{
		mode:    modeDeterministic,
		cost:    0,
		chance:  1,
		xpSkill: protocol.SkillLogistics,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.Player.removeItem(a.Item, a.Quantity)
			st.Player.Storage[a.Item] += a.Quantity
			addDelta(&ctx.log.StateDelta.ItemsStored, a.Item, a.Quantity)
		},
	}, ""
}

// Drop destroys items for a small fixed cost and never grants XP.
func (e *Engine) resolveDrop(st *WorldState, a protocol.Drop) (resolution, protocol.FailureType) {
	if a.Quantity <= 0 || st.Player.Inventory[a.Item] < a.Quantity {
		return resolution{}, protocol.FailMissingItems
	}

	return resolution{
		mode:   modeDeterministic,
		cost:   e.tun.DropTicks,
		chance: 1,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.Player.removeItem(a.Item, a.Quantity)
			addDelta(&ctx.log.StateDelta.ItemsLost, a.Item, a.Quantity)
		},
	}, ""
}
