package world

import (
	"testing"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(tuning.Default(), catalogs.Default())
}

// addTestMine grafts a hand-built area with a discovered iron/copper node
// onto the state, one known connection away from town, and walks the player
// there. Tests that need a workable node use this instead of hunting the
// generated graph.
func addTestMine(t *testing.T, e *Engine, st *WorldState) (protocol.LocationID, protocol.NodeID) {
	t.Helper()

	areaID := protocol.AreaID{Distance: 1, Index: 0}
	locID := protocol.LocationID("A1.0/test_mine")
	nodeID := protocol.NodeID("A1.0/test_mine#node")

	area := &Area{ID: areaID}
	area.Locations = append(area.Locations, &Location{
		ID:   locID,
		Kind: protocol.LocationOreVein,
		Area: areaID,
		Node: &Node{
			ID: nodeID,
			Materials: []MaterialReserve{
				{Item: "COPPER_ORE", Tier: 1, RequiresSkill: protocol.SkillMining, RequiredLevel: 1, RemainingUnits: 10, MaxUnitsInitial: 10},
				{Item: "IRON_ORE", Tier: 2, RequiresSkill: protocol.SkillMining, RequiredLevel: 2, RemainingUnits: 8, MaxUnitsInitial: 8},
			},
		},
	})
	st.Exploration.Areas[areaID] = area

	connID := protocol.NewConnectionID(protocol.TownID, areaID)
	st.Exploration.Connections[connID] = &Connection{ID: connID, Multiplier: 1}
	st.learnConnection(connID)
	st.learnArea(areaID)
	st.learnLocation(locID)

	st.Exploration.CurrentArea = areaID
	st.Exploration.CurrentLocation = locID
	return locID, nodeID
}

// addTestCamp grafts a discovered rat camp into the player's current area.
func addTestCamp(t *testing.T, st *WorldState) protocol.LocationID {
	t.Helper()
	areaID := st.Exploration.CurrentArea
	locID := protocol.LocationID(areaID.String() + "/test_camp")
	area := st.area(areaID)
	area.Locations = append(area.Locations, &Location{
		ID:   locID,
		Kind: protocol.LocationMobCamp,
		Area: areaID,
		Mob:  "RAT",
	})
	st.learnLocation(locID)
	st.Exploration.CurrentLocation = locID
	return locID
}

func moveTo(t *testing.T, e *Engine, st *WorldState, loc protocol.LocationID) {
	t.Helper()
	log := e.ExecuteAction(st, protocol.Move{ToLocation: loc})
	if !log.Success {
		t.Fatalf("move to %s failed: %s", loc, log.FailureType)
	}
}

func mustSucceed(t *testing.T, log protocol.ActionLog) protocol.ActionLog {
	t.Helper()
	if !log.Success {
		t.Fatalf("%s failed: %s", log.ActionType, log.FailureType)
	}
	return log
}

func mustFail(t *testing.T, log protocol.ActionLog, want protocol.FailureType) protocol.ActionLog {
	t.Helper()
	if log.Success {
		t.Fatalf("%s succeeded, wanted %s", log.ActionType, want)
	}
	if log.FailureType != want {
		t.Fatalf("%s failed with %s, wanted %s", log.ActionType, log.FailureType, want)
	}
	return log
}
