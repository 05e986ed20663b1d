package batch

import (
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

// Policy chooses the next action from the discovery-filtered observation.
// Policies never see engine internals; everything they know arrived through
// a PolicyObservation.
type Policy interface {
	Name() string
	// Next returns the action to execute, or false to end the run.
	Next(obs protocol.PolicyObservation) (protocol.Action, bool)
}

// NewPolicy builds a registered policy by name.
func NewPolicy(name string) (Policy, bool) {
	switch name {
	case "explorer":
		return &explorerPolicy{}, true
	case "miner":
		return &minerPolicy{}, true
	}
	return nil, false
}

// explorerPolicy enrols in exploration and maps the world: explore and survey
// from every reachable area, walking outward as connections appear.
type explorerPolicy struct {
	exhaustedExplore map[protocol.AreaID]bool
	exhaustedSurvey  map[protocol.AreaID]bool
}

func (p *explorerPolicy) Name() string { return "explorer" }

func (p *explorerPolicy) Next(obs protocol.PolicyObservation) (protocol.Action, bool) {
	if p.exhaustedExplore == nil {
		p.exhaustedExplore = map[protocol.AreaID]bool{}
		p.exhaustedSurvey = map[protocol.AreaID]bool{}
	}

	if _, ok := obs.Skills[protocol.SkillExploration]; !ok {
		if loc := findGuild(obs, protocol.SkillExploration); loc != "" {
			if obs.CurrentLocation != loc {
				return protocol.Move{ToLocation: loc}, true
			}
			return protocol.Enrol{Skill: protocol.SkillExploration}, true
		}
	}

	if !p.exhaustedSurvey[obs.CurrentArea] {
		return protocol.Survey{}, true
	}
	if !p.exhaustedExplore[obs.CurrentArea] {
		return protocol.Explore{}, true
	}

	// Walk to the nearest known area that still has work.
	for _, c := range obs.KnownConnections {
		if next, ok := c.ID.Other(obs.CurrentArea); ok {
			if !p.exhaustedExplore[next] || !p.exhaustedSurvey[next] {
				return protocol.Move{ToArea: &next}, true
			}
		}
	}
	return nil, false
}

// Observe lets the runner feed failures back so the policy can mark dead
// ends; NOTHING_TO_EXPLORE from an area means stop asking there.
func (p *explorerPolicy) Observe(obs protocol.PolicyObservation, log protocol.ActionLog) {
	if log.Success {
		return
	}
	switch log.FailureType {
	case protocol.FailNothingToExplore:
		p.exhaustedExplore[obs.CurrentArea] = true
	case protocol.FailNothingToSurvey:
		p.exhaustedSurvey[obs.CurrentArea] = true
	}
}

// minerPolicy grinds the mining loop: enrol, find an ore vein, gather until
// the session fades, banking at the warehouse when full.
type minerPolicy struct {
	explorer explorerPolicy
	banking  bool
}

func (p *minerPolicy) Name() string { return "miner" }

func (p *minerPolicy) Next(obs protocol.PolicyObservation) (protocol.Action, bool) {
	if _, ok := obs.Skills[protocol.SkillMining]; !ok {
		if loc := findGuild(obs, protocol.SkillMining); loc != "" {
			if obs.CurrentLocation != loc {
				return protocol.Move{ToLocation: loc}, true
			}
			return protocol.Enrol{Skill: protocol.SkillMining}, true
		}
	}

	used := 0
	for _, s := range obs.Inventory {
		used += s.Count
	}
	if used >= obs.InventoryCapacity {
		p.banking = true
	}
	if p.banking {
		if action, ok := p.bank(obs, used); ok {
			return action, true
		}
		p.banking = false
	}

	if loc, node := nearestWorkableVein(obs); node != "" {
		if obs.CurrentLocation != loc {
			if area, ok := areaOfLocation(obs, loc); ok && area != obs.CurrentArea {
				return moveToward(obs, area)
			}
			return protocol.Move{ToLocation: loc}, true
		}
		return protocol.Gather{NodeID: node}, true
	}

	// No vein in sight: fall back to mapping until one appears.
	return p.explorer.Next(obs)
}

func (p *minerPolicy) Observe(obs protocol.PolicyObservation, log protocol.ActionLog) {
	p.explorer.Observe(obs, log)
}

// bank walks home and stores everything held.
func (p *minerPolicy) bank(obs protocol.PolicyObservation, used int) (protocol.Action, bool) {
	if used == 0 {
		return nil, false
	}
	warehouse := findKind(obs, protocol.LocationWarehouse)
	if warehouse == "" {
		return nil, false
	}
	if !obs.CurrentArea.IsTown() {
		return townward(obs)
	}
	if obs.CurrentLocation != warehouse {
		return protocol.Move{ToLocation: warehouse}, true
	}
	return protocol.Store{Item: obs.Inventory[0].Item, Quantity: obs.Inventory[0].Count}, true
}

func findGuild(obs protocol.PolicyObservation, skill protocol.SkillID) protocol.LocationID {
	for _, a := range obs.KnownAreas {
		for _, l := range a.Locations {
			if l.Kind == protocol.LocationGuild && l.Guild == skill {
				return l.ID
			}
		}
	}
	return ""
}

func findKind(obs protocol.PolicyObservation, kind protocol.LocationKind) protocol.LocationID {
	for _, a := range obs.KnownAreas {
		for _, l := range a.Locations {
			if l.Kind == kind {
				return l.ID
			}
		}
	}
	return ""
}

// nearestWorkableVein picks the first known ore vein whose easiest visible
// material the player can attempt.
func nearestWorkableVein(obs protocol.PolicyObservation) (protocol.LocationID, protocol.NodeID) {
	level := obs.Skills[protocol.SkillMining]
	for _, a := range obs.KnownAreas {
		for _, l := range a.Locations {
			if l.Kind != protocol.LocationOreVein || l.Node == nil {
				continue
			}
			for _, m := range l.Node.Materials {
				if m.RequiredLevel <= level && (m.Remaining == nil || *m.Remaining > 0) {
					return l.ID, l.Node.ID
				}
			}
		}
	}
	return "", ""
}

func areaOfLocation(obs protocol.PolicyObservation, loc protocol.LocationID) (protocol.AreaID, bool) {
	for _, a := range obs.KnownAreas {
		for _, l := range a.Locations {
			if l.ID == loc {
				return a.ID, true
			}
		}
	}
	return protocol.AreaID{}, false
}

// moveToward takes one known hop in the target's direction; with the sparse
// graphs this simulation generates, a direct edge is the common case.
func moveToward(obs protocol.PolicyObservation, target protocol.AreaID) (protocol.Action, bool) {
	for _, c := range obs.KnownConnections {
		if next, ok := c.ID.Other(obs.CurrentArea); ok && next == target {
			return protocol.Move{ToArea: &next}, true
		}
	}
	// No direct edge known: hop to the cheapest known neighbour.
	conns := append([]protocol.ConnectionObs(nil), obs.KnownConnections...)
	sort.Slice(conns, func(i, j int) bool { return conns[i].TravelCost < conns[j].TravelCost })
	for _, c := range conns {
		if next, ok := c.ID.Other(obs.CurrentArea); ok {
			return protocol.Move{ToArea: &next}, true
		}
	}
	return nil, false
}

// townward heads back to town, directly when possible.
func townward(obs protocol.PolicyObservation) (protocol.Action, bool) {
	return moveToward(obs, protocol.TownID)
}
