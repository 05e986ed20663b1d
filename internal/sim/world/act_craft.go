package world

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

func (e *Engine) resolveCraft(st *WorldState, a protocol.Craft) (resolution, protocol.FailureType) {
	recipe, ok := e.cats.Recipes.ByID[a.RecipeID]
	if !ok {
		return resolution{}, protocol.FailRecipeNotFound
	}
	if st.Exploration.CurrentLocation != st.World.ForgeLocation {
		return resolution{}, protocol.FailWrongLocation
	}
	if !st.Player.enrolled(protocol.SkillSmithing) {
		return resolution{}, protocol.FailNotEnrolled
	}
	if st.Player.skillLevel(protocol.SkillSmithing) < recipe.MinSmithing {
		return resolution{}, protocol.FailSkillTooLow
	}
	for _, in := range recipe.Inputs {
		if st.Player.Inventory[in.Item] < in.Count {
			return resolution{}, protocol.FailMissingItems
		}
	}
	// Slot check on the net change: inputs leave, outputs arrive.
	consumed, produced := 0, 0
	for _, in := range recipe.Inputs {
		consumed += in.Count
	}
	for _, out := range recipe.Outputs {
		produced += out.Count
	}
	if produced-consumed > st.Player.freeSlots() {
		return resolution{}, protocol.FailInventoryFull
	}

	return resolution{
		mode:    modeDeterministic,
		cost:    recipe.TimeTicks,
		chance:  1,
		xpSkill: protocol.SkillSmithing,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			for _, in := range recipe.Inputs {
				st.Player.removeItem(in.Item, in.Count)
				addDelta(&ctx.log.StateDelta.ItemsLost, in.Item, in.Count)
			}
			for _, out := range recipe.Outputs {
				// A first weapon goes straight to the equipment slot.
				if e.cats.IsWeapon(out.Item) && st.Player.EquippedWeapon == "" {
					st.Player.EquippedWeapon = out.Item
					if out.Count > 1 {
						st.Player.addItem(out.Item, out.Count-1)
					}
				} else {
					st.Player.addItem(out.Item, out.Count)
				}
				addDelta(&ctx.log.StateDelta.ItemsGained, out.Item, out.Count)
			}
		},
	}, ""
}
