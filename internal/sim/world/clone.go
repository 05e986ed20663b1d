package world

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

// Clone deep-copies the whole state. Evaluation and any other speculative
// work happens on clones; the engine's state is never shared with them.
func (s *WorldState) Clone() *WorldState {
	out := &WorldState{
		SeedText: s.SeedText,
		Seed:     s.Seed,
		Time:     s.Time,
		World: WorldContent{
			StorageArea:       s.World.StorageArea,
			GuildLocations:    copyMap(s.World.GuildLocations),
			ForgeLocation:     s.World.ForgeLocation,
			WarehouseLocation: s.World.WarehouseLocation,
			CatalogsDigest:    s.World.CatalogsDigest,
		},
	}

	out.Player = PlayerState{
		Inventory:         copyMap(s.Player.Inventory),
		InventoryCapacity: s.Player.InventoryCapacity,
		Storage:           copyMap(s.Player.Storage),
		Skills:            copyMap(s.Player.Skills),
		GuildReputation:   s.Player.GuildReputation,
		ActiveContracts:   append([]ActiveContract(nil), s.Player.ActiveContracts...),
		EquippedWeapon:    s.Player.EquippedWeapon,
	}

	out.Exploration = ExplorationState{
		Areas:            make(map[protocol.AreaID]*Area, len(s.Exploration.Areas)),
		Connections:      make(map[protocol.ConnectionID]*Connection, len(s.Exploration.Connections)),
		CurrentArea:      s.Exploration.CurrentArea,
		CurrentLocation:  s.Exploration.CurrentLocation,
		KnownAreas:       copySet(s.Exploration.KnownAreas),
		KnownLocations:   copySet(s.Exploration.KnownLocations),
		KnownConnections: copySet(s.Exploration.KnownConnections),
		AppraisedNodes:   copySet(s.Exploration.AppraisedNodes),
		TotalLuckDelta:   s.Exploration.TotalLuckDelta,
		CurrentStreak:    s.Exploration.CurrentStreak,
	}
	for id, a := range s.Exploration.Areas {
		out.Exploration.Areas[id] = a.clone()
	}
	for id, c := range s.Exploration.Connections {
		cc := *c
		out.Exploration.Connections[id] = &cc
	}

	if s.RNG != nil {
		r := *s.RNG
		out.RNG = &r
	}
	return out
}

func (a *Area) clone() *Area {
	out := &Area{ID: a.ID, Locations: make([]*Location, len(a.Locations))}
	for i, l := range a.Locations {
		ll := *l
		if l.Node != nil {
			node := Node{
				ID:        l.Node.ID,
				Materials: append([]MaterialReserve(nil), l.Node.Materials...),
			}
			ll.Node = &node
		}
		out.Locations[i] = &ll
	}
	return out
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySet[K comparable](m map[K]struct{}) map[K]struct{} {
	out := make(map[K]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}
