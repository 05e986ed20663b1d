package world

import (
	"fmt"
	"strings"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
)

// Generation derives every roll from (seed, entityID, role) so area contents
// are reproducible regardless of the order discovery reaches them. The
// gameplay RNG stream is never consumed here.

// areaCount follows a Fibonacci sequence over distance: 5, 8, 13, 21, ...
// Distance 0 is town alone.
func (e *Engine) areaCount(distance int) int {
	switch {
	case distance <= 0:
		return 1
	case distance > e.tun.MaxDistance:
		return 0
	}
	a, b := e.tun.AreaCountBase, e.tun.AreaCountSecond
	for d := 1; d < distance; d++ {
		a, b = b, a+b
	}
	return a
}

// pickCount maps one derived value through the 15/35/35/15 distribution onto
// {0,1,2,3}.
func (e *Engine) pickCount(v float64) int {
	total := 0
	for _, w := range e.tun.CountDistribution {
		total += w
	}
	target := v * float64(total)
	acc := 0.0
	for i, w := range e.tun.CountDistribution {
		acc += float64(w)
		if target < acc {
			return i
		}
	}
	return len(e.tun.CountDistribution) - 1
}

// materializeTown creates the fixed town content: one guild per skill, the
// forge, the warehouse, and a connection to every distance-1 area.
func (e *Engine) materializeTown(st *WorldState) {
	town := &Area{ID: protocol.TownID}
	for _, skill := range protocol.AllSkills {
		id := protocol.LocationID("town/guild-" + strings.ToLower(string(skill)))
		town.Locations = append(town.Locations, &Location{
			ID:    id,
			Kind:  protocol.LocationGuild,
			Area:  protocol.TownID,
			Guild: skill,
		})
		st.World.GuildLocations[skill] = id
	}
	forge := &Location{ID: "town/forge", Kind: protocol.LocationForge, Area: protocol.TownID}
	warehouse := &Location{ID: "town/warehouse", Kind: protocol.LocationWarehouse, Area: protocol.TownID}
	town.Locations = append(town.Locations, forge, warehouse)
	st.World.ForgeLocation = forge.ID
	st.World.WarehouseLocation = warehouse.ID
	st.Exploration.Areas[protocol.TownID] = town

	// Town is connected to all distance-1 areas unconditionally.
	for i := 0; i < e.areaCount(1); i++ {
		e.ensureConnection(st, protocol.TownID, protocol.AreaID{Distance: 1, Index: i})
	}
}

// ensureArea materializes an area the first time anything needs it. Contents
// never change once generated; calling this again is a no-op.
func (e *Engine) ensureArea(st *WorldState, id protocol.AreaID) *Area {
	if a := st.Exploration.Areas[id]; a != nil {
		return a
	}
	if id.IsTown() {
		// Town is built at world creation.
		return st.Exploration.Areas[id]
	}

	a := &Area{ID: id}
	e.generateLocations(st, a)
	st.Exploration.Areas[id] = a
	e.generateConnections(st, id)
	return a
}

// generateLocations rolls each candidate location type independently; there
// is no cap, and most areas come out sparse.
func (e *Engine) generateLocations(st *WorldState, a *Area) {
	entity := a.ID.String()

	type gatherKind struct {
		kind  protocol.LocationKind
		role  string
		skill protocol.SkillID
	}
	for _, gk := range []gatherKind{
		{protocol.LocationOreVein, "ore_vein", protocol.SkillMining},
		{protocol.LocationTreeStand, "tree_stand", protocol.SkillWoodcutting},
	} {
		if rng.Derive(st.Seed, entity, "loc_"+gk.role) >= e.tun.LocationChance {
			continue
		}
		locID := protocol.LocationID(entity + "/" + gk.role)
		loc := &Location{ID: locID, Kind: gk.kind, Area: a.ID}
		loc.Node = e.generateNode(st, locID, gk.skill, a.ID.Distance)
		if loc.Node != nil {
			a.Locations = append(a.Locations, loc)
		}
	}

	if rng.Derive(st.Seed, entity, "loc_mob_camp") < e.tun.LocationChance {
		mobs := e.cats.MobsFor(a.ID.Distance)
		if len(mobs) > 0 {
			pick := rng.DeriveUint(st.Seed, entity, "mob_pick") % uint64(len(mobs))
			a.Locations = append(a.Locations, &Location{
				ID:   protocol.LocationID(entity + "/mob_camp"),
				Kind: protocol.LocationMobCamp,
				Area: a.ID,
				Mob:  mobs[pick].MobID,
			})
		}
	}
}

// generateNode picks 1-3 materials eligible at this distance, highest tiers
// rarest simply because deeper materials need deeper areas, and rolls each
// reserve size.
func (e *Engine) generateNode(st *WorldState, locID protocol.LocationID, skill protocol.SkillID, distance int) *Node {
	eligible := e.cats.MaterialsFor(skill, distance)
	if len(eligible) == 0 {
		return nil
	}
	entity := string(locID)

	span := e.tun.NodeMaterialMax - e.tun.NodeMaterialMin + 1
	count := e.tun.NodeMaterialMin + int(rng.DeriveUint(st.Seed, entity, "material_count")%uint64(span))
	if count > len(eligible) {
		count = len(eligible)
	}

	// Rotate the eligible list by a derived offset, then take a prefix:
	// a stable pick of `count` distinct materials.
	offset := int(rng.DeriveUint(st.Seed, entity, "material_offset") % uint64(len(eligible)))
	node := &Node{ID: protocol.NodeID(entity + "#node")}
	reserveSpan := e.tun.ReserveMax - e.tun.ReserveMin + 1
	for i := 0; i < count; i++ {
		m := eligible[(offset+i)%len(eligible)]
		units := e.tun.ReserveMin + int(rng.DeriveUint(st.Seed, entity, fmt.Sprintf("reserve_%d", i))%uint64(reserveSpan))
		node.Materials = append(node.Materials, MaterialReserve{
			Item:            m.Item,
			Tier:            m.Tier,
			RequiresSkill:   m.Skill,
			RequiredLevel:   m.RequiredLevel,
			RemainingUnits:  units,
			MaxUnitsInitial: units,
		})
	}
	return node
}

// generateConnections rolls this area's edges: 0-3 to the same distance, 0-3
// one tier down, 0-3 one tier up. Canonical edge identity dedupes whatever
// the neighbouring area rolls for itself.
func (e *Engine) generateConnections(st *WorldState, id protocol.AreaID) {
	entity := id.String()

	type band struct {
		role     string
		distance int
	}
	bands := []band{
		{"conn_same", id.Distance},
		{"conn_down", id.Distance - 1},
		{"conn_up", id.Distance + 1},
	}
	for _, b := range bands {
		total := e.areaCount(b.distance)
		if total == 0 {
			continue
		}
		count := e.pickCount(rng.Derive(st.Seed, entity, b.role))
		for i := 0; i < count; i++ {
			idx := int(rng.DeriveUint(st.Seed, entity, fmt.Sprintf("%s_target_%d", b.role, i)) % uint64(total))
			target := protocol.AreaID{Distance: b.distance, Index: idx}
			if target == id {
				continue
			}
			e.ensureConnection(st, id, target)
		}
	}
}

// ensureConnection inserts the canonical edge if absent. The travel
// multiplier derives from the edge's own identity, so both endpoints agree on
// it no matter which side generated the edge first.
func (e *Engine) ensureConnection(st *WorldState, a, b protocol.AreaID) {
	id := protocol.NewConnectionID(a, b)
	if _, ok := st.Exploration.Connections[id]; ok {
		return
	}
	mult := 1 + e.pickCount(rng.Derive(st.Seed, id.String(), "multiplier"))
	st.Exploration.Connections[id] = &Connection{ID: id, Multiplier: mult}
}

// travelCost is the tick price of crossing a connection.
func (e *Engine) travelCost(c *Connection) int {
	return e.tun.TravelBaseTicks * c.Multiplier
}

// connectionsOf lists canonical edges incident to an area.
func (s *WorldState) connectionsOf(id protocol.AreaID) []*Connection {
	var out []*Connection
	for _, c := range s.Exploration.Connections {
		if _, ok := c.ID.Other(id); ok {
			out = append(out, c)
		}
	}
	return out
}
