// Package snapshot persists a full world state as a versioned, compressed
// file. The on-disk schema (the V1 types) is decoupled from the runtime state
// so the engine can evolve without breaking old captures.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
	"github.com/daveslutzkin/grind-sub004/internal/sim/world"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	Seed    string `json:"seed"`
	Tick    int    `json:"tick"`
}

// SnapshotV1 is the complete serialized form of one run's state. Every slice
// is written in canonical order so equal states capture byte-identically.
type SnapshotV1 struct {
	Header Header `json:"header"`

	SeedText string `json:"seed_text"`
	Seed     int64  `json:"seed"`

	CurrentTick           int `json:"current_tick"`
	SessionRemainingTicks int `json:"session_remaining_ticks"`

	Player PlayerV1 `json:"player"`

	StorageArea       protocol.AreaID                          `json:"storage_area"`
	GuildLocations    map[protocol.SkillID]protocol.LocationID `json:"guild_locations"`
	ForgeLocation     protocol.LocationID                      `json:"forge_location"`
	WarehouseLocation protocol.LocationID                      `json:"warehouse_location"`
	CatalogsDigest    string                                   `json:"catalogs_digest"`

	Areas       []AreaV1       `json:"areas"`
	Connections []ConnectionV1 `json:"connections"`

	CurrentArea     protocol.AreaID     `json:"current_area"`
	CurrentLocation protocol.LocationID `json:"current_location"`

	KnownAreas       []protocol.AreaID       `json:"known_areas"`
	KnownLocations   []protocol.LocationID   `json:"known_locations"`
	KnownConnections []protocol.ConnectionID `json:"known_connections"`
	AppraisedNodes   []protocol.NodeID       `json:"appraised_nodes"`

	TotalLuckDelta float64 `json:"total_luck_delta"`
	CurrentStreak  int     `json:"current_streak"`

	RNGSeed    int64  `json:"rng_seed"`
	RNGCounter uint64 `json:"rng_counter"`

	// Digest of the captured state, verified on restore.
	Digest string `json:"digest"`
}

type PlayerV1 struct {
	Inventory         []ItemCountV1        `json:"inventory"`
	InventoryCapacity int                  `json:"inventory_capacity"`
	Storage           []ItemCountV1        `json:"storage"`
	Skills            []SkillV1            `json:"skills"`
	GuildReputation   int                  `json:"guild_reputation"`
	ActiveContracts   []ActiveContractV1   `json:"active_contracts"`
	EquippedWeapon    protocol.ItemID      `json:"equipped_weapon"`
}

type ItemCountV1 struct {
	Item  protocol.ItemID `json:"item"`
	Count int             `json:"count"`
}

type SkillV1 struct {
	Skill protocol.SkillID `json:"skill"`
	Level int              `json:"level"`
}

type ActiveContractV1 struct {
	ContractID   protocol.ContractID `json:"contract_id"`
	AcceptedTick int                 `json:"accepted_tick"`
}

type AreaV1 struct {
	ID        protocol.AreaID `json:"id"`
	Locations []LocationV1    `json:"locations"`
}

type LocationV1 struct {
	ID    protocol.LocationID   `json:"id"`
	Kind  protocol.LocationKind `json:"kind"`
	Mob   protocol.MobID        `json:"mob,omitempty"`
	Guild protocol.SkillID      `json:"guild,omitempty"`
	Node  *NodeV1               `json:"node,omitempty"`
}

type NodeV1 struct {
	ID        protocol.NodeID `json:"id"`
	Materials []MaterialV1    `json:"materials"`
}

type MaterialV1 struct {
	Item            protocol.ItemID  `json:"item"`
	Tier            int              `json:"tier"`
	RequiresSkill   protocol.SkillID `json:"requires_skill"`
	RequiredLevel   int              `json:"required_level"`
	RemainingUnits  int              `json:"remaining_units"`
	MaxUnitsInitial int              `json:"max_units_initial"`
}

type ConnectionV1 struct {
	ID         protocol.ConnectionID `json:"id"`
	Multiplier int                   `json:"multiplier"`
}

// Capture serializes the state. The state is only read.
func Capture(st *world.WorldState) SnapshotV1 {
	snap := SnapshotV1{
		Header: Header{Version: Version, Seed: st.SeedText, Tick: st.Time.CurrentTick},

		SeedText:              st.SeedText,
		Seed:                  st.Seed,
		CurrentTick:           st.Time.CurrentTick,
		SessionRemainingTicks: st.Time.SessionRemainingTicks,

		StorageArea:       st.World.StorageArea,
		GuildLocations:    st.World.GuildLocations,
		ForgeLocation:     st.World.ForgeLocation,
		WarehouseLocation: st.World.WarehouseLocation,
		CatalogsDigest:    st.World.CatalogsDigest,

		CurrentArea:     st.Exploration.CurrentArea,
		CurrentLocation: st.Exploration.CurrentLocation,

		TotalLuckDelta: st.Exploration.TotalLuckDelta,
		CurrentStreak:  st.Exploration.CurrentStreak,

		Digest: st.Digest(),
	}
	if st.RNG != nil {
		snap.RNGSeed = st.RNG.Seed
		snap.RNGCounter = st.RNG.Counter
	}

	snap.Player = PlayerV1{
		Inventory:         itemCounts(st.Player.Inventory),
		InventoryCapacity: st.Player.InventoryCapacity,
		Storage:           itemCounts(st.Player.Storage),
		GuildReputation:   st.Player.GuildReputation,
		EquippedWeapon:    st.Player.EquippedWeapon,
	}
	skills := make([]SkillV1, 0, len(st.Player.Skills))
	for k, v := range st.Player.Skills {
		skills = append(skills, SkillV1{Skill: k, Level: v})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Skill < skills[j].Skill })
	snap.Player.Skills = skills
	for _, c := range st.Player.ActiveContracts {
		snap.Player.ActiveContracts = append(snap.Player.ActiveContracts, ActiveContractV1(c))
	}

	for _, id := range sortedAreaIDs(st.Exploration.Areas) {
		a := st.Exploration.Areas[id]
		av := AreaV1{ID: id}
		for _, l := range a.Locations {
			lv := LocationV1{ID: l.ID, Kind: l.Kind, Mob: l.Mob, Guild: l.Guild}
			if l.Node != nil {
				nv := &NodeV1{ID: l.Node.ID}
				for _, m := range l.Node.Materials {
					nv.Materials = append(nv.Materials, MaterialV1(m))
				}
				lv.Node = nv
			}
			av.Locations = append(av.Locations, lv)
		}
		snap.Areas = append(snap.Areas, av)
	}

	conns := make([]ConnectionV1, 0, len(st.Exploration.Connections))
	for id, c := range st.Exploration.Connections {
		conns = append(conns, ConnectionV1{ID: id, Multiplier: c.Multiplier})
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID.String() < conns[j].ID.String() })
	snap.Connections = conns

	snap.KnownAreas = sortedAreaIDs(st.Exploration.KnownAreas)
	snap.KnownLocations = sortedKeys(st.Exploration.KnownLocations)
	snap.AppraisedNodes = sortedKeys(st.Exploration.AppraisedNodes)
	kc := make([]protocol.ConnectionID, 0, len(st.Exploration.KnownConnections))
	for id := range st.Exploration.KnownConnections {
		kc = append(kc, id)
	}
	sort.Slice(kc, func(i, j int) bool { return kc[i].String() < kc[j].String() })
	snap.KnownConnections = kc

	return snap
}

// Restore rebuilds a runtime state and verifies it digests to the captured
// value, catching schema drift and corrupt files early.
func (snap SnapshotV1) Restore() (*world.WorldState, error) {
	if snap.Header.Version != Version {
		return nil, fmt.Errorf("snapshot version %d not supported", snap.Header.Version)
	}

	st := &world.WorldState{
		SeedText: snap.SeedText,
		Seed:     snap.Seed,
		Time: world.TimeState{
			CurrentTick:           snap.CurrentTick,
			SessionRemainingTicks: snap.SessionRemainingTicks,
		},
		Player: world.PlayerState{
			Inventory:         itemMap(snap.Player.Inventory),
			InventoryCapacity: snap.Player.InventoryCapacity,
			Storage:           itemMap(snap.Player.Storage),
			Skills:            map[protocol.SkillID]int{},
			GuildReputation:   snap.Player.GuildReputation,
			EquippedWeapon:    snap.Player.EquippedWeapon,
		},
		World: world.WorldContent{
			StorageArea:       snap.StorageArea,
			GuildLocations:    snap.GuildLocations,
			ForgeLocation:     snap.ForgeLocation,
			WarehouseLocation: snap.WarehouseLocation,
			CatalogsDigest:    snap.CatalogsDigest,
		},
		Exploration: world.ExplorationState{
			Areas:            map[protocol.AreaID]*world.Area{},
			Connections:      map[protocol.ConnectionID]*world.Connection{},
			CurrentArea:      snap.CurrentArea,
			CurrentLocation:  snap.CurrentLocation,
			KnownAreas:       map[protocol.AreaID]struct{}{},
			KnownLocations:   map[protocol.LocationID]struct{}{},
			KnownConnections: map[protocol.ConnectionID]struct{}{},
			AppraisedNodes:   map[protocol.NodeID]struct{}{},
			TotalLuckDelta:   snap.TotalLuckDelta,
			CurrentStreak:    snap.CurrentStreak,
		},
		RNG: &rng.Stream{Seed: snap.RNGSeed, Counter: snap.RNGCounter},
	}
	if st.World.GuildLocations == nil {
		st.World.GuildLocations = map[protocol.SkillID]protocol.LocationID{}
	}

	for _, s := range snap.Player.Skills {
		st.Player.Skills[s.Skill] = s.Level
	}
	for _, c := range snap.Player.ActiveContracts {
		st.Player.ActiveContracts = append(st.Player.ActiveContracts, world.ActiveContract(c))
	}

	for _, av := range snap.Areas {
		a := &world.Area{ID: av.ID}
		for _, lv := range av.Locations {
			l := &world.Location{ID: lv.ID, Kind: lv.Kind, Area: av.ID, Mob: lv.Mob, Guild: lv.Guild}
			if lv.Node != nil {
				n := &world.Node{ID: lv.Node.ID}
				for _, m := range lv.Node.Materials {
					n.Materials = append(n.Materials, world.MaterialReserve(m))
				}
				l.Node = n
			}
			a.Locations = append(a.Locations, l)
		}
		st.Exploration.Areas[av.ID] = a
	}
	for _, cv := range snap.Connections {
		st.Exploration.Connections[cv.ID] = &world.Connection{ID: cv.ID, Multiplier: cv.Multiplier}
	}

	for _, id := range snap.KnownAreas {
		st.Exploration.KnownAreas[id] = struct{}{}
	}
	for _, id := range snap.KnownLocations {
		st.Exploration.KnownLocations[id] = struct{}{}
	}
	for _, id := range snap.KnownConnections {
		st.Exploration.KnownConnections[id] = struct{}{}
	}
	for _, id := range snap.AppraisedNodes {
		st.Exploration.AppraisedNodes[id] = struct{}{}
	}

	if snap.Digest != "" {
		if got := st.Digest(); got != snap.Digest {
			return nil, fmt.Errorf("restored digest %s does not match captured %s", got, snap.Digest)
		}
	}
	return st, nil
}

// Write stores the snapshot compressed, with a plain JSON header line in
// front so tools can identify a file without decoding the body.
func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line; the gob body carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

func itemCounts(m map[protocol.ItemID]int) []ItemCountV1 {
	out := make([]ItemCountV1, 0, len(m))
	for k, v := range m {
		if v != 0 {
			out = append(out, ItemCountV1{Item: k, Count: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

func itemMap(in []ItemCountV1) map[protocol.ItemID]int {
	out := make(map[protocol.ItemID]int, len(in))
	for _, ic := range in {
		out[ic.Item] = ic.Count
	}
	return out
}

func sortedAreaIDs[V any](m map[protocol.AreaID]V) []protocol.AreaID {
	out := make([]protocol.AreaID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func sortedKeys[K ~string](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
