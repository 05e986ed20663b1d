package world

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

func (e *Engine) resolveMove(st *WorldState, a protocol.Move) (resolution, protocol.FailureType) {
	switch {
	case a.ToArea != nil:
		return e.resolveMoveArea(st, *a.ToArea)
	case a.ToLocation != "":
		return e.resolveMoveLocation(st, a.ToLocation)
	}
	return resolution{}, protocol.FailWrongLocation
}

// resolveMoveLocation walks to a point of interest inside the current area.
func (e *Engine) resolveMoveLocation(st *WorldState, target protocol.LocationID) (resolution, protocol.FailureType) {
	loc := st.currentArea().location(target)
	if loc == nil {
		return resolution{}, protocol.FailWrongLocation
	}
	if !st.knowsLocation(target) {
		return resolution{}, protocol.FailLocationNotDiscovered
	}

	return resolution{
		mode:   modeDeterministic,
		cost:   e.tun.MoveLocationTicks,
		chance: 1,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.Exploration.CurrentLocation = target
			ctx.log.StateDelta.MovedTo = string(target)
		},
	}, ""
}

// resolveMoveArea crosses a known connection to an adjacent area.
func (e *Engine) resolveMoveArea(st *WorldState, target protocol.AreaID) (resolution, protocol.FailureType) {
	if !st.knowsArea(target) {
		return resolution{}, protocol.FailAreaNotKnown
	}
	connID := protocol.NewConnectionID(st.Exploration.CurrentArea, target)
	conn := st.Exploration.Connections[connID]
	if conn == nil || !st.knowsConnection(connID) {
		return resolution{}, protocol.FailNoConnection
	}

	return resolution{
		mode:   modeDeterministic,
		cost:   e.travelCost(conn),
		chance: 1,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			e.ensureArea(st, target)
			st.Exploration.CurrentArea = target
			st.Exploration.CurrentLocation = ""
			ctx.log.StateDelta.MovedTo = target.String()
		},
	}, ""
}
