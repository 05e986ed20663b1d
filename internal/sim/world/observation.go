package world

import (
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
)

// Observation builds the discovery-filtered projection for policies. Nothing
// undiscovered leaks: unknown areas and connections are absent, unknown
// locations are absent from known areas, and node detail is cut down to the
// player's visibility tier.
func (e *Engine) Observation(st *WorldState) protocol.PolicyObservation {
	obs := protocol.PolicyObservation{
		ProtocolVersion:       protocol.Version,
		CurrentTick:           st.Time.CurrentTick,
		SessionRemainingTicks: st.Time.SessionRemainingTicks,
		CurrentArea:           st.Exploration.CurrentArea,
		CurrentLocation:       st.Exploration.CurrentLocation,
		InventoryCapacity:     st.Player.InventoryCapacity,
		GuildReputation:       st.Player.GuildReputation,
		EquippedWeapon:        st.Player.EquippedWeapon,
		TotalLuckDelta:        st.Exploration.TotalLuckDelta,
		CurrentStreak:         st.Exploration.CurrentStreak,
	}

	obs.Inventory = itemStacks(st.Player.Inventory)
	obs.Storage = itemStacks(st.Player.Storage)

	obs.Skills = make(map[protocol.SkillID]int, len(st.Player.Skills))
	for k, v := range st.Player.Skills {
		obs.Skills[k] = v
	}

	for _, id := range st.sortedAreaIDs() {
		if !st.knowsArea(id) {
			continue
		}
		a := st.Exploration.Areas[id]
		areaObs := protocol.AreaObs{ID: id, Distance: id.Distance}
		for _, l := range a.Locations {
			if !st.knowsLocation(l.ID) {
				continue
			}
			areaObs.Locations = append(areaObs.Locations, e.locationObs(st, l))
		}
		obs.KnownAreas = append(obs.KnownAreas, areaObs)
	}

	conns := make([]protocol.ConnectionID, 0, len(st.Exploration.KnownConnections))
	for id := range st.Exploration.KnownConnections {
		conns = append(conns, id)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].String() < conns[j].String() })
	for _, id := range conns {
		c := st.Exploration.Connections[id]
		if c == nil {
			continue
		}
		obs.KnownConnections = append(obs.KnownConnections, protocol.ConnectionObs{
			ID:         id,
			Multiplier: c.Multiplier,
			TravelCost: e.travelCost(c),
		})
	}

	for _, active := range st.Player.ActiveContracts {
		if def, ok := e.cats.Contracts.ByID[active.ContractID]; ok {
			obs.ActiveContracts = append(obs.ActiveContracts, e.contractObs(st, def))
		}
	}
	// Templates posted at the guild the player is standing at, minus the
	// already-active ones.
	if loc := st.currentArea().location(st.Exploration.CurrentLocation); loc != nil && loc.Kind == protocol.LocationGuild {
		for _, def := range e.cats.ContractsForGuild(loc.Guild) {
			if st.contractActive(def.ContractID) {
				continue
			}
			obs.AvailableContracts = append(obs.AvailableContracts, e.contractObs(st, def))
		}
	}

	return obs
}

func (e *Engine) locationObs(st *WorldState, l *Location) protocol.LocationObs {
	out := protocol.LocationObs{ID: l.ID, Kind: l.Kind, Guild: l.Guild}
	switch {
	case l.Node != nil:
		tier := st.nodeVisibility(l.Node)
		out.Node = &protocol.NodeObs{
			ID:         l.Node.ID,
			Visibility: tier,
			Materials:  st.visibleMaterials(l.Node, tier),
		}
	case l.Kind == protocol.LocationMobCamp:
		if mob, ok := e.cats.Mobs.ByID[l.Mob]; ok {
			out.Mob = &protocol.MobObs{ID: mob.MobID, Name: mob.Name, Level: mob.Level}
		}
	}
	return out
}

func (e *Engine) contractObs(st *WorldState, def catalogs.ContractDef) protocol.ContractObs {
	// Copies, not aliases: observations hand these maps to policies, and the
	// catalog definitions behind them are shared by every run on the engine.
	return protocol.ContractObs{
		ID:               def.ContractID,
		Location:         st.World.GuildLocations[def.Guild],
		Requirements:     copyMap(def.Requirements),
		RewardItems:      copyMap(def.RewardItems),
		ReputationReward: def.ReputationReward,
		XPRewardSkill:    def.XPRewardSkill,
	}
}

func (s *WorldState) contractActive(id protocol.ContractID) bool {
	for _, c := range s.Player.ActiveContracts {
		if c.ContractID == id {
			return true
		}
	}
	return false
}

func itemStacks(m map[protocol.ItemID]int) []protocol.ItemStack {
	keys := make([]protocol.ItemID, 0, len(m))
	for k := range m {
		if m[k] > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]protocol.ItemStack, 0, len(keys))
	for _, k := range keys {
		out = append(out, protocol.ItemStack{Item: k, Count: m[k]})
	}
	return out
}
