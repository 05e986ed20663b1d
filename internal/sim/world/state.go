// Package world implements the deterministic simulation core: the lazily
// materialized exploration graph, the discovery ledger, the success
// probability model, the action execution engine, the contract ledger and the
// non-mutating plan evaluator.
//
// A WorldState is exclusively owned by one simulation instance. The engine is
// its only writer; everything else (evaluator, observation builder, digest)
// reads clones or treats the state as immutable.
package world

import (
	"hash/fnv"
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
)

// WorldState is the root aggregate. Every field is plain data so the whole
// state is serializable and clonable; there is no hidden runtime state.
type WorldState struct {
	SeedText string `json:"seed_text"`
	Seed     int64  `json:"seed"`

	Time        TimeState        `json:"time"`
	Player      PlayerState      `json:"player"`
	World       WorldContent     `json:"world"`
	Exploration ExplorationState `json:"exploration"`
	RNG         *rng.Stream      `json:"rng"`
}

type TimeState struct {
	CurrentTick           int `json:"current_tick"`
	SessionRemainingTicks int `json:"session_remaining_ticks"`
}

type PlayerState struct {
	// Inventory counts units per item; every unit occupies one slot.
	Inventory         map[protocol.ItemID]int `json:"inventory"`
	InventoryCapacity int                     `json:"inventory_capacity"`
	Storage           map[protocol.ItemID]int `json:"storage"`

	Skills          map[protocol.SkillID]int `json:"skills"`
	GuildReputation int                      `json:"guild_reputation"`

	ActiveContracts []ActiveContract `json:"active_contracts"`

	EquippedWeapon protocol.ItemID `json:"equipped_weapon,omitempty"`
}

type ActiveContract struct {
	ContractID   protocol.ContractID `json:"contract_id"`
	AcceptedTick int                 `json:"accepted_tick"`
}

type WorldContent struct {
	StorageArea    protocol.AreaID     `json:"storage_area"`
	GuildLocations map[protocol.SkillID]protocol.LocationID `json:"guild_locations"`
	ForgeLocation  protocol.LocationID `json:"forge_location"`
	WarehouseLocation protocol.LocationID `json:"warehouse_location"`

	// CatalogsDigest pins the content definitions this state was built
	// against, so a resumed session cannot silently run different content.
	CatalogsDigest string `json:"catalogs_digest"`
}

// ExplorationState is the arena of materialized areas and connections plus the
// player's position and monotonically growing knowledge.
type ExplorationState struct {
	Areas       map[protocol.AreaID]*Area            `json:"areas"`
	Connections map[protocol.ConnectionID]*Connection `json:"connections"`

	CurrentArea     protocol.AreaID     `json:"current_area"`
	CurrentLocation protocol.LocationID `json:"current_location,omitempty"`

	KnownAreas       map[protocol.AreaID]struct{}       `json:"-"`
	KnownLocations   map[protocol.LocationID]struct{}   `json:"-"`
	KnownConnections map[protocol.ConnectionID]struct{} `json:"-"`
	AppraisedNodes   map[protocol.NodeID]struct{}       `json:"-"`

	TotalLuckDelta float64 `json:"total_luck_delta"`
	CurrentStreak  int     `json:"current_streak"`
}

// Area contents are generated exactly once per id and immutable afterwards,
// except for node reserves which deplete monotonically.
type Area struct {
	ID        protocol.AreaID `json:"id"`
	Locations []*Location     `json:"locations"`
}

type Location struct {
	ID   protocol.LocationID   `json:"id"`
	Kind protocol.LocationKind `json:"kind"`
	Area protocol.AreaID       `json:"area"`

	// Exactly one of the following is set, by kind.
	Node  *Node            `json:"node,omitempty"`
	Mob   protocol.MobID   `json:"mob,omitempty"`
	Guild protocol.SkillID `json:"guild,omitempty"`
}

type Node struct {
	ID        protocol.NodeID    `json:"id"`
	Materials []MaterialReserve  `json:"materials"`
}

// MaterialReserve depletes monotonically and never replenishes in-session.
type MaterialReserve struct {
	Item            protocol.ItemID  `json:"item"`
	Tier            int              `json:"tier"`
	RequiresSkill   protocol.SkillID `json:"requires_skill"`
	RequiredLevel   int              `json:"required_level"`
	RemainingUnits  int              `json:"remaining_units"`
	MaxUnitsInitial int              `json:"max_units_initial"`
}

// Connection is an undirected edge; identity is canonicalized so one edge is
// never stored twice. Travel cost is base ticks times the multiplier.
type Connection struct {
	ID         protocol.ConnectionID `json:"id"`
	Multiplier int                   `json:"multiplier"`
}

// SeedValue maps a textual seed to the 64-bit seed every derivation uses.
func SeedValue(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

func (s *WorldState) area(id protocol.AreaID) *Area {
	return s.Exploration.Areas[id]
}

func (s *WorldState) currentArea() *Area {
	return s.area(s.Exploration.CurrentArea)
}

// locationIn finds a location by id inside an area.
func (a *Area) location(id protocol.LocationID) *Location {
	if a == nil {
		return nil
	}
	for _, l := range a.Locations {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// findNode locates a node and its location anywhere in the arena.
func (s *WorldState) findNode(id protocol.NodeID) (*Location, *Node) {
	for _, a := range s.Exploration.Areas {
		for _, l := range a.Locations {
			if l.Node != nil && l.Node.ID == id {
				return l, l.Node
			}
		}
	}
	return nil, nil
}

// sortedAreaIDs returns the materialized area ids in canonical order, for
// callers that must scan the arena deterministically.
func (s *WorldState) sortedAreaIDs() []protocol.AreaID {
	ids := make([]protocol.AreaID, 0, len(s.Exploration.Areas))
	for id := range s.Exploration.Areas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Distance != ids[j].Distance {
			return ids[i].Distance < ids[j].Distance
		}
		return ids[i].Index < ids[j].Index
	})
	return ids
}

func (s *WorldState) knowsArea(id protocol.AreaID) bool {
	_, ok := s.Exploration.KnownAreas[id]
	return ok
}

func (s *WorldState) knowsLocation(id protocol.LocationID) bool {
	_, ok := s.Exploration.KnownLocations[id]
	return ok
}

func (s *WorldState) knowsConnection(id protocol.ConnectionID) bool {
	_, ok := s.Exploration.KnownConnections[id]
	return ok
}

func (s *WorldState) appraised(id protocol.NodeID) bool {
	_, ok := s.Exploration.AppraisedNodes[id]
	return ok
}

// Knowledge sets only ever grow; these are the sole mutation paths.

func (s *WorldState) learnArea(id protocol.AreaID) {
	s.Exploration.KnownAreas[id] = struct{}{}
}

func (s *WorldState) learnLocation(id protocol.LocationID) {
	s.Exploration.KnownLocations[id] = struct{}{}
}

func (s *WorldState) learnConnection(id protocol.ConnectionID) {
	s.Exploration.KnownConnections[id] = struct{}{}
}

func (s *WorldState) appraiseNode(id protocol.NodeID) {
	s.Exploration.AppraisedNodes[id] = struct{}{}
}

// inventoryUnits is the number of occupied slots.
func (p *PlayerState) inventoryUnits() int {
	n := 0
	for _, c := range p.Inventory {
		n += c
	}
	return n
}

func (p *PlayerState) freeSlots() int {
	return p.InventoryCapacity - p.inventoryUnits()
}

func (p *PlayerState) addItem(item protocol.ItemID, n int) {
	if n <= 0 {
		return
	}
	p.Inventory[item] += n
}

func (p *PlayerState) removeItem(item protocol.ItemID, n int) bool {
	if p.Inventory[item] < n {
		return false
	}
	p.Inventory[item] -= n
	if p.Inventory[item] == 0 {
		delete(p.Inventory, item)
	}
	return true
}

func (p *PlayerState) heldAndStored(item protocol.ItemID) int {
	return p.Inventory[item] + p.Storage[item]
}

func (p *PlayerState) enrolled(skill protocol.SkillID) bool {
	_, ok := p.Skills[skill]
	return ok
}

func (p *PlayerState) skillLevel(skill protocol.SkillID) int {
	return p.Skills[skill]
}
