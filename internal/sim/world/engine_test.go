package world

import (
	"testing"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
)

func TestCreateWorldTownLayout(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("layout")

	town := st.area(protocol.TownID)
	if town == nil {
		t.Fatal("town not materialized")
	}
	// One guild per skill, plus forge and warehouse.
	want := len(protocol.AllSkills) + 2
	if got := len(town.Locations); got != want {
		t.Fatalf("town has %d locations, want %d", got, want)
	}
	for _, l := range town.Locations {
		if !st.knowsLocation(l.ID) {
			t.Errorf("town location %s not known at start", l.ID)
		}
	}
	if !st.knowsArea(protocol.TownID) {
		t.Error("town area not known at start")
	}

	// Town connects to every distance-1 area, but none of them is known yet.
	conns := st.connectionsOf(protocol.TownID)
	if got := len(conns); got != e.areaCount(1) {
		t.Fatalf("town has %d connections, want %d", got, e.areaCount(1))
	}
	for _, c := range conns {
		other, _ := c.ID.Other(protocol.TownID)
		if st.knowsArea(other) {
			t.Errorf("distance-1 area %s known at start", other)
		}
	}

	if st.Time.SessionRemainingTicks != e.tun.SessionTicks {
		t.Fatalf("session = %d, want %d", st.Time.SessionRemainingTicks, e.tun.SessionTicks)
	}
	if st.World.CatalogsDigest != e.cats.Digest {
		t.Fatal("state not pinned to catalogs digest")
	}
}

// A spent session rejects everything, including zero-cost actions, before any
// other precondition can produce a friendlier failure.
func TestSpentSessionRejectsFreeActions(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("spent")
	st.Time.SessionRemainingTicks = 0
	before := st.Digest()

	for _, action := range []protocol.Action{
		protocol.Enrol{Skill: protocol.SkillMining},
		protocol.Store{Item: "IRON_ORE", Quantity: 1},
		protocol.Move{ToLocation: st.World.ForgeLocation},
		protocol.Explore{},
	} {
		log := mustFail(t, e.ExecuteAction(st, action), protocol.FailSessionEnded)
		if log.TimeConsumed != 0 {
			t.Errorf("%s consumed %d ticks on a spent session", log.ActionType, log.TimeConsumed)
		}
	}
	if st.Digest() != before {
		t.Fatal("spent-session rejection mutated state")
	}
}

func TestUnaffordableActionFailsWithoutEffect(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("unaffordable")
	st.Time.SessionRemainingTicks = 1 // Move costs 2
	before := st.Digest()

	log := mustFail(t, e.ExecuteAction(st, protocol.Move{ToLocation: st.World.ForgeLocation}), protocol.FailSessionEnded)
	if log.TimeConsumed != 0 {
		t.Fatalf("unaffordable move consumed %d ticks", log.TimeConsumed)
	}
	if st.Digest() != before {
		t.Fatal("unaffordable move mutated state")
	}
	if st.Time.SessionRemainingTicks != 1 {
		t.Fatalf("remaining = %d after rejected move", st.Time.SessionRemainingTicks)
	}
}

func TestPreconditionFailureIsFree(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("precondition")
	before := st.Digest()

	cases := []struct {
		action protocol.Action
		want   protocol.FailureType
	}{
		{protocol.Gather{NodeID: "nowhere#node"}, protocol.FailNodeNotFound},
		{protocol.Fight{MobID: "DRAGON"}, protocol.FailEnemyNotFound},
		{protocol.Craft{RecipeID: "UNKNOWN"}, protocol.FailRecipeNotFound},
		{protocol.Move{ToArea: &protocol.AreaID{Distance: 1, Index: 0}}, protocol.FailAreaNotKnown},
		{protocol.Drop{Item: "IRON_ORE", Quantity: 1}, protocol.FailMissingItems},
		{protocol.AcceptContract{ContractID: "no-such"}, protocol.FailContractNotFound},
	}
	for _, tc := range cases {
		log := mustFail(t, e.ExecuteAction(st, tc.action), tc.want)
		if log.TimeConsumed != 0 {
			t.Errorf("%s precondition failure consumed %d ticks", log.ActionType, log.TimeConsumed)
		}
		if len(log.RngRolls) != 0 {
			t.Errorf("%s precondition failure drew from the RNG", log.ActionType)
		}
	}
	if st.Digest() != before {
		t.Fatal("precondition failures mutated state")
	}
}

func TestMoveWithinArea(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("move")

	log := mustSucceed(t, e.ExecuteAction(st, protocol.Move{ToLocation: st.World.ForgeLocation}))
	if log.TimeConsumed != e.tun.MoveLocationTicks {
		t.Fatalf("move consumed %d ticks, want %d", log.TimeConsumed, e.tun.MoveLocationTicks)
	}
	if st.Exploration.CurrentLocation != st.World.ForgeLocation {
		t.Fatalf("at %s after move", st.Exploration.CurrentLocation)
	}
	if log.SkillGained != nil {
		t.Fatal("move granted XP")
	}
}

func TestMoveAcrossConnection(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("travel")
	target := protocol.AreaID{Distance: 1, Index: 0}
	connID := protocol.NewConnectionID(protocol.TownID, target)

	// Known area but unknown connection still refuses.
	st.learnArea(target)
	mustFail(t, e.ExecuteAction(st, protocol.Move{ToArea: &target}), protocol.FailNoConnection)

	st.learnConnection(connID)
	wantCost := e.travelCost(st.Exploration.Connections[connID])
	log := mustSucceed(t, e.ExecuteAction(st, protocol.Move{ToArea: &target}))
	if log.TimeConsumed != wantCost {
		t.Fatalf("travel consumed %d ticks, want %d", log.TimeConsumed, wantCost)
	}
	if st.Exploration.CurrentArea != target {
		t.Fatalf("in %s after travel", st.Exploration.CurrentArea)
	}
	if st.Exploration.CurrentLocation != "" {
		t.Fatal("location not cleared after area travel")
	}
	if st.area(target) == nil {
		t.Fatal("travel did not materialize the target area")
	}
}

func TestEnrolment(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("enrol")

	// Must stand at the guild.
	mustFail(t, e.ExecuteAction(st, protocol.Enrol{Skill: protocol.SkillMining}), protocol.FailWrongLocation)

	moveTo(t, e, st, st.World.GuildLocations[protocol.SkillMining])
	log := mustSucceed(t, e.ExecuteAction(st, protocol.Enrol{Skill: protocol.SkillMining}))
	if log.TimeConsumed != 0 {
		t.Fatalf("enrolment consumed %d ticks", log.TimeConsumed)
	}
	if st.Player.skillLevel(protocol.SkillMining) != 1 {
		t.Fatalf("mining level = %d after enrolment", st.Player.skillLevel(protocol.SkillMining))
	}

	mustFail(t, e.ExecuteAction(st, protocol.Enrol{Skill: protocol.SkillMining}), protocol.FailAlreadyEnrolled)
}

// XP goes only to enrolled skills: the same successful action that would
// credit a skill credits nothing when the player never joined its guild.
func TestXPRequiresEnrolment(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("xp-gate")
	st.Player.Inventory["IRON_ORE"] = 2
	moveTo(t, e, st, st.World.WarehouseLocation)

	log := mustSucceed(t, e.ExecuteAction(st, protocol.Store{Item: "IRON_ORE", Quantity: 1}))
	if log.SkillGained != nil {
		t.Fatal("store granted XP without logistics enrolment")
	}

	st.Player.Skills[protocol.SkillLogistics] = 1
	log = mustSucceed(t, e.ExecuteAction(st, protocol.Store{Item: "IRON_ORE", Quantity: 1}))
	if log.SkillGained == nil || log.SkillGained.Skill != protocol.SkillLogistics {
		t.Fatalf("store XP = %+v, want logistics", log.SkillGained)
	}
	if st.Player.skillLevel(protocol.SkillLogistics) != 2 {
		t.Fatalf("logistics = %d", st.Player.skillLevel(protocol.SkillLogistics))
	}
}

func TestStoreAndDrop(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("items")
	st.Player.Inventory["IRON_ORE"] = 3

	// Store requires the warehouse.
	mustFail(t, e.ExecuteAction(st, protocol.Store{Item: "IRON_ORE", Quantity: 1}), protocol.FailWrongLocation)

	moveTo(t, e, st, st.World.WarehouseLocation)
	mustSucceed(t, e.ExecuteAction(st, protocol.Store{Item: "IRON_ORE", Quantity: 2}))
	if st.Player.Inventory["IRON_ORE"] != 1 || st.Player.Storage["IRON_ORE"] != 2 {
		t.Fatalf("inventory %d / storage %d after store", st.Player.Inventory["IRON_ORE"], st.Player.Storage["IRON_ORE"])
	}

	mustFail(t, e.ExecuteAction(st, protocol.Store{Item: "IRON_ORE", Quantity: 5}), protocol.FailMissingItems)

	log := mustSucceed(t, e.ExecuteAction(st, protocol.Drop{Item: "IRON_ORE", Quantity: 1}))
	if log.TimeConsumed != e.tun.DropTicks {
		t.Fatalf("drop consumed %d ticks", log.TimeConsumed)
	}
	if log.SkillGained != nil {
		t.Fatal("drop granted XP")
	}
	if st.Player.Inventory["IRON_ORE"] != 0 {
		t.Fatalf("inventory %d after drop", st.Player.Inventory["IRON_ORE"])
	}
}

func TestTurnInCombatTokens(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("tokens")
	st.Player.Skills[protocol.SkillCombat] = 1
	st.Player.Inventory[catalogs.CombatTokenItem] = 3

	mustFail(t, e.ExecuteAction(st, protocol.TurnInCombatTokens{Quantity: 1}), protocol.FailWrongLocation)

	moveTo(t, e, st, st.World.GuildLocations[protocol.SkillCombat])
	mustFail(t, e.ExecuteAction(st, protocol.TurnInCombatTokens{Quantity: 5}), protocol.FailMissingItems)

	log := mustSucceed(t, e.ExecuteAction(st, protocol.TurnInCombatTokens{Quantity: 3}))
	if st.Player.GuildReputation != 3 {
		t.Fatalf("reputation = %d, want 3", st.Player.GuildReputation)
	}
	if st.Player.Inventory[catalogs.CombatTokenItem] != 0 {
		t.Fatal("tokens not consumed")
	}
	if log.SkillGained == nil || log.SkillGained.Skill != protocol.SkillCombat {
		t.Fatal("turn-in did not credit combat XP")
	}
}

// The inventory never exceeds its capacity, whatever sequence of actions runs.
func TestInventoryBound(t *testing.T) {
	tun := tuning.Default()
	tun.MaxChance = 1 // force gather success
	e := NewEngine(tun, catalogs.Default())
	st := e.CreateWorld("bound")
	_, nodeID := addTestMine(t, e, st)
	st.Player.Skills[protocol.SkillMining] = 20

	for i := 0; i < st.Player.InventoryCapacity; i++ {
		mustSucceed(t, e.ExecuteAction(st, protocol.Gather{NodeID: nodeID}))
		if st.Player.inventoryUnits() > st.Player.InventoryCapacity {
			t.Fatalf("inventory %d exceeds capacity", st.Player.inventoryUnits())
		}
	}
	if st.Player.freeSlots() != 0 {
		t.Fatalf("free slots = %d after filling", st.Player.freeSlots())
	}
	mustFail(t, e.ExecuteAction(st, protocol.Gather{NodeID: nodeID}), protocol.FailInventoryFull)
}
