package world

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

// Appraise inspects a node up close, unlocking FULL visibility (exact
// remaining quantities). The flag is per-node and one-way.
func (e *Engine) resolveAppraise(st *WorldState, a protocol.Appraise) (resolution, protocol.FailureType) {
	loc, node := st.findNode(a.NodeID)
	if node == nil {
		return resolution{}, protocol.FailNodeNotFound
	}
	if !st.knowsLocation(loc.ID) {
		return resolution{}, protocol.FailLocationNotDiscovered
	}
	if st.Exploration.CurrentArea != loc.Area || st.Exploration.CurrentLocation != loc.ID {
		return resolution{}, protocol.FailWrongLocation
	}
	skill := st.nodeSkill(node)
	if !st.Player.enrolled(skill) {
		return resolution{}, protocol.FailNotEnrolled
	}
	if st.appraised(node.ID) {
		return resolution{}, protocol.FailAlreadyAppraised
	}

	return resolution{
		mode:    modeDeterministic,
		cost:    e.tun.AppraiseTicks,
		chance:  1,
		xpSkill: skill,
		apply: func(e *Engine, st *WorldState, ctx applyCtx) {
			st.appraiseNode(a.NodeID)
			ctx.log.StateDelta.NodesAppraised = append(ctx.log.StateDelta.NodesAppraised, a.NodeID)
		},
	}, ""
}
