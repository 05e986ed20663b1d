package world

import (
	"math"
	"testing"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
)

// Unskilled exploration rolls a flat chance with no bonuses and earns no XP;
// pinning that chance to 1 makes discovery deterministic for effect tests.
func sureExploreEngine(t *testing.T) *Engine {
	t.Helper()
	tun := tuning.Default()
	tun.ExploreUnskilledChance = 1
	return NewEngine(tun, catalogs.Default())
}

func TestExploreDiscoversConnectionAndArea(t *testing.T) {
	e := sureExploreEngine(t)
	st := e.CreateWorld("explore")

	log := mustSucceed(t, e.ExecuteAction(st, protocol.Explore{}))

	if len(log.StateDelta.ConnectionsDiscovered) != 1 || len(log.StateDelta.AreasDiscovered) != 1 {
		t.Fatalf("delta = %+v, want one connection and one area", log.StateDelta)
	}
	found := log.StateDelta.AreasDiscovered[0]
	if !st.knowsArea(found) {
		t.Fatalf("discovered area %s not known", found)
	}
	if !st.knowsConnection(log.StateDelta.ConnectionsDiscovered[0]) {
		t.Fatal("discovered connection not known")
	}
	if st.area(found) == nil {
		t.Fatal("discovered area not materialized")
	}
	if found.Distance != 1 {
		t.Fatalf("town frontier discovered distance-%d area", found.Distance)
	}

	// First attempt landed: one cadence of ticks, zero luck delta.
	if log.TimeConsumed != 2 {
		t.Fatalf("discovery consumed %d ticks, want 2", log.TimeConsumed)
	}
	if log.StateDelta.LuckDelta == nil || *log.StateDelta.LuckDelta != 0 {
		t.Fatalf("luck delta = %v, want 0 for an on-expectation discovery", log.StateDelta.LuckDelta)
	}
	if log.SkillGained != nil {
		t.Fatal("unskilled exploration granted XP")
	}

	// The player has not moved.
	if st.Exploration.CurrentArea != protocol.TownID {
		t.Fatal("explore moved the player")
	}
}

func TestExploreExhaustsFrontier(t *testing.T) {
	e := sureExploreEngine(t)
	st := e.CreateWorld("frontier")

	n := len(st.frontierConnections(protocol.TownID))
	for i := 0; i < n; i++ {
		mustSucceed(t, e.ExecuteAction(st, protocol.Explore{}))
	}
	mustFail(t, e.ExecuteAction(st, protocol.Explore{}), protocol.FailNothingToExplore)
}

// When the session cannot afford the next attempt, the action fails having
// consumed the attempts it did make.
func TestExploreSessionExhaustion(t *testing.T) {
	tun := tuning.Default()
	tun.ExploreUnskilledChance = 0 // attempts never land
	e := NewEngine(tun, catalogs.Default())
	st := e.CreateWorld("explore-exhaust")
	st.Time.SessionRemainingTicks = 3 // cadence 2: one attempt fits, a second would need 4

	log := mustFail(t, e.ExecuteAction(st, protocol.Explore{}), protocol.FailSessionEnded)
	if log.TimeConsumed != 2 {
		t.Fatalf("consumed %d ticks, want the one failed attempt", log.TimeConsumed)
	}
	if len(log.RngRolls) != 1 {
		t.Fatalf("logged %d rolls, want 1", len(log.RngRolls))
	}
	if st.Time.SessionRemainingTicks != 1 {
		t.Fatalf("remaining = %d, want 1", st.Time.SessionRemainingTicks)
	}
	if len(st.Exploration.KnownAreas) != 1 {
		t.Fatal("failed exploration still discovered something")
	}
}

func TestSurveyDiscoversLocation(t *testing.T) {
	e := sureExploreEngine(t)
	st := e.CreateWorld("survey")

	// Town starts fully surveyed.
	mustFail(t, e.ExecuteAction(st, protocol.Survey{}), protocol.FailNothingToSurvey)

	// Graft an undiscovered site into town.
	hidden := protocol.LocationID("town/hidden_cellar")
	town := st.area(protocol.TownID)
	town.Locations = append(town.Locations, &Location{
		ID: hidden, Kind: protocol.LocationOreVein, Area: protocol.TownID,
		Node: &Node{ID: "town/hidden_cellar#node", Materials: []MaterialReserve{
			{Item: "COPPER_ORE", Tier: 1, RequiresSkill: protocol.SkillMining, RequiredLevel: 1, RemainingUnits: 5, MaxUnitsInitial: 5},
		}},
	})

	log := mustSucceed(t, e.ExecuteAction(st, protocol.Survey{}))
	if len(log.StateDelta.LocationsDiscovered) != 1 || log.StateDelta.LocationsDiscovered[0] != hidden {
		t.Fatalf("delta = %+v, want %s discovered", log.StateDelta, hidden)
	}
	if !st.knowsLocation(hidden) {
		t.Fatal("surveyed location not known")
	}

	mustFail(t, e.ExecuteAction(st, protocol.Survey{}), protocol.FailNothingToSurvey)
}

// Exploration XP flows only through the exploration skill, and skilled
// explorers use the bonus model rather than the flat unskilled chance.
func TestExploreSkilledChanceModel(t *testing.T) {
	e := newTestEngine(t)
	st := e.CreateWorld("explore-chance")

	if got := e.exploreChance(st, protocol.TownID); got != e.tun.ExploreUnskilledChance {
		t.Fatalf("unskilled chance = %v, want %v", got, e.tun.ExploreUnskilledChance)
	}

	st.Player.Skills[protocol.SkillExploration] = 1
	// Level 1 at town, nothing known beyond town: the distance term is
	// (0 - 1) x penalty, so town explores easier than distance 1.
	if got, want := e.exploreChance(st, protocol.TownID), e.tun.ExploreBaseChance+e.tun.ExploreDistancePenalty; !almostEqual(got, want) {
		t.Fatalf("skilled chance at town = %v, want %v", got, want)
	}

	// Knowing a connected neighbour raises the chance.
	conns := st.connectionsOf(protocol.TownID)
	other, _ := conns[0].ID.Other(protocol.TownID)
	st.learnConnection(conns[0].ID)
	st.learnArea(other)
	if got, want := e.exploreChance(st, protocol.TownID), e.tun.ExploreBaseChance+e.tun.ExploreDistancePenalty+e.tun.ExploreKnownAreaBonus; !almostEqual(got, want) {
		t.Fatalf("chance with known neighbour = %v, want %v", got, want)
	}

	// Deep in the graph the penalty dominates: at distance 4 a level-1
	// explorer prices at or below zero and discovery cannot land there.
	deep := protocol.AreaID{Distance: 4, Index: 0}
	if got := e.exploreChance(st, deep); got > 0 {
		t.Fatalf("distance-4 chance = %v, want <= 0 at level 1", got)
	}
	if got := expectedDiscoveryTicks(e.exploreCadence(st), e.exploreChance(st, deep)); !math.IsInf(got, 1) {
		t.Fatalf("expected ticks at impossible chance = %v, want +Inf", got)
	}

	// Higher level narrows the cadence, never below 1 tick.
	st.Player.Skills[protocol.SkillExploration] = 10
	if got := e.exploreCadence(st); got != 1.9 {
		t.Fatalf("cadence at level 10 = %v, want 1.9", got)
	}
	st.Player.Skills[protocol.SkillExploration] = 200
	if got := e.exploreCadence(st); got != 1 {
		t.Fatalf("cadence floor = %v, want 1", got)
	}
}

// Knowledge only ever grows, whatever mix of actions runs.
func TestKnowledgeIsMonotonic(t *testing.T) {
	e := sureExploreEngine(t)
	st := e.CreateWorld("monotonic")

	areas, locs, conns := len(st.Exploration.KnownAreas), len(st.Exploration.KnownLocations), len(st.Exploration.KnownConnections)
	check := func(step string) {
		t.Helper()
		if len(st.Exploration.KnownAreas) < areas || len(st.Exploration.KnownLocations) < locs || len(st.Exploration.KnownConnections) < conns {
			t.Fatalf("knowledge shrank after %s", step)
		}
		areas, locs, conns = len(st.Exploration.KnownAreas), len(st.Exploration.KnownLocations), len(st.Exploration.KnownConnections)
	}

	e.ExecuteAction(st, protocol.Explore{})
	check("explore")
	found := st.sortedAreaIDs()[1] // first non-town materialized area
	e.ExecuteAction(st, protocol.Move{ToArea: &found})
	check("travel")
	for i := 0; i < 10; i++ {
		e.ExecuteAction(st, protocol.Survey{})
		check("survey")
		e.ExecuteAction(st, protocol.Explore{})
		check("explore")
	}
}

func TestLuckLedgerStreaks(t *testing.T) {
	st := &WorldState{}
	st.recordLuck(1.5)
	st.recordLuck(0.5)
	if st.Exploration.CurrentStreak != 2 {
		t.Fatalf("streak = %d after two lucky finds, want 2", st.Exploration.CurrentStreak)
	}
	st.recordLuck(-3)
	if st.Exploration.CurrentStreak != -1 {
		t.Fatalf("streak = %d after reversal, want -1", st.Exploration.CurrentStreak)
	}
	if st.Exploration.TotalLuckDelta != -1 {
		t.Fatalf("total luck = %v, want -1", st.Exploration.TotalLuckDelta)
	}
	st.recordLuck(0)
	if st.Exploration.CurrentStreak != -1 {
		t.Fatal("zero delta moved the streak")
	}
}
