package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

// Digest hashes the full state in canonical order. Two runs of the same seed
// and action sequence must produce equal digests at every step; the replay
// and batch tools lean on this.
func (s *WorldState) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	writeStr(h, s.SeedText)
	writeI64(h, &tmp, s.Seed)
	writeI64(h, &tmp, int64(s.Time.CurrentTick))
	writeI64(h, &tmp, int64(s.Time.SessionRemainingTicks))
	if s.RNG != nil {
		writeI64(h, &tmp, s.RNG.Seed)
		writeU64(h, &tmp, s.RNG.Counter)
	}

	s.digestPlayer(h, &tmp)
	s.digestArena(h, &tmp)
	s.digestKnowledge(h, &tmp)

	return hex.EncodeToString(h.Sum(nil))
}

func (s *WorldState) digestPlayer(h hash.Hash, tmp *[8]byte) {
	writeItemMap(h, tmp, s.Player.Inventory)
	writeI64(h, tmp, int64(s.Player.InventoryCapacity))
	writeItemMap(h, tmp, s.Player.Storage)

	skills := make([]protocol.SkillID, 0, len(s.Player.Skills))
	for k := range s.Player.Skills {
		skills = append(skills, k)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i] < skills[j] })
	for _, k := range skills {
		writeStr(h, string(k))
		writeI64(h, tmp, int64(s.Player.Skills[k]))
	}

	writeI64(h, tmp, int64(s.Player.GuildReputation))
	writeStr(h, string(s.Player.EquippedWeapon))
	for _, c := range s.Player.ActiveContracts {
		writeStr(h, string(c.ContractID))
		writeI64(h, tmp, int64(c.AcceptedTick))
	}
}

func (s *WorldState) digestArena(h hash.Hash, tmp *[8]byte) {
	for _, id := range s.sortedAreaIDs() {
		a := s.Exploration.Areas[id]
		writeStr(h, id.String())
		for _, l := range a.Locations {
			writeStr(h, string(l.ID))
			writeStr(h, string(l.Kind))
			writeStr(h, string(l.Mob))
			writeStr(h, string(l.Guild))
			if l.Node != nil {
				writeStr(h, string(l.Node.ID))
				for _, m := range l.Node.Materials {
					writeStr(h, string(m.Item))
					writeI64(h, tmp, int64(m.Tier))
					writeStr(h, string(m.RequiresSkill))
					writeI64(h, tmp, int64(m.RequiredLevel))
					writeI64(h, tmp, int64(m.RemainingUnits))
					writeI64(h, tmp, int64(m.MaxUnitsInitial))
				}
			}
		}
	}

	conns := make([]protocol.ConnectionID, 0, len(s.Exploration.Connections))
	for id := range s.Exploration.Connections {
		conns = append(conns, id)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].String() < conns[j].String() })
	for _, id := range conns {
		writeStr(h, id.String())
		writeI64(h, tmp, int64(s.Exploration.Connections[id].Multiplier))
	}
}

func (s *WorldState) digestKnowledge(h hash.Hash, tmp *[8]byte) {
	writeStr(h, s.Exploration.CurrentArea.String())
	writeStr(h, string(s.Exploration.CurrentLocation))

	areas := make([]string, 0, len(s.Exploration.KnownAreas))
	for id := range s.Exploration.KnownAreas {
		areas = append(areas, id.String())
	}
	writeSorted(h, areas)

	locs := make([]string, 0, len(s.Exploration.KnownLocations))
	for id := range s.Exploration.KnownLocations {
		locs = append(locs, string(id))
	}
	writeSorted(h, locs)

	conns := make([]string, 0, len(s.Exploration.KnownConnections))
	for id := range s.Exploration.KnownConnections {
		conns = append(conns, id.String())
	}
	writeSorted(h, conns)

	nodes := make([]string, 0, len(s.Exploration.AppraisedNodes))
	for id := range s.Exploration.AppraisedNodes {
		nodes = append(nodes, string(id))
	}
	writeSorted(h, nodes)

	writeU64(h, tmp, math.Float64bits(s.Exploration.TotalLuckDelta))
	writeI64(h, tmp, int64(s.Exploration.CurrentStreak))
}

func writeU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func writeI64(h hash.Hash, tmp *[8]byte, v int64) {
	writeU64(h, tmp, uint64(v))
}

func writeStr(h hash.Hash, s string) {
	var tmp [8]byte
	writeU64(h, &tmp, uint64(len(s)))
	h.Write([]byte(s))
}

func writeSorted(h hash.Hash, vals []string) {
	sort.Strings(vals)
	for _, v := range vals {
		writeStr(h, v)
	}
}

func writeItemMap(h hash.Hash, tmp *[8]byte, m map[protocol.ItemID]int) {
	keys := make([]protocol.ItemID, 0, len(m))
	for k := range m {
		if m[k] != 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		writeStr(h, string(k))
		writeI64(h, tmp, int64(m[k]))
	}
}
