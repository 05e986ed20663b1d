package world

import (
	"math"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

// ActionEvaluation projects a single action without mutating anything.
type ActionEvaluation struct {
	ExpectedTime       float64 `json:"expected_time"`
	ExpectedXP         float64 `json:"expected_xp"`
	SuccessProbability float64 `json:"success_probability"`
}

// PlanEvaluation projects a whole plan, accumulating a violation for every
// precondition that would fail instead of stopping at the first one.
type PlanEvaluation struct {
	ExpectedTime float64     `json:"expected_time"`
	ExpectedXP   float64     `json:"expected_xp"`
	Violations   []Violation `json:"violations,omitempty"`
}

type Violation struct {
	ActionIndex int                  `json:"action_index"`
	Reason      protocol.FailureType `json:"reason"`
}

// EvaluateAction prices one action against the current state. It shares the
// engine's resolve path, so a precondition the engine would reject prices to
// zero here rather than to an optimistic guess.
func (e *Engine) EvaluateAction(st *WorldState, action protocol.Action) ActionEvaluation {
	if st.Time.SessionRemainingTicks <= 0 {
		return ActionEvaluation{}
	}
	res, failure := e.resolve(st, action)
	if failure != "" {
		return ActionEvaluation{}
	}
	if res.cost > st.Time.SessionRemainingTicks {
		return ActionEvaluation{}
	}
	return e.evaluateResolved(st, res)
}

func (e *Engine) evaluateResolved(st *WorldState, res resolution) ActionEvaluation {
	ev := ActionEvaluation{SuccessProbability: res.chance}
	xpEligible := res.xpSkill != "" && st.Player.enrolled(res.xpSkill)

	switch res.mode {
	case modeDeterministic:
		ev.ExpectedTime = float64(res.cost)
		if xpEligible {
			ev.ExpectedXP = 1
		}
	case modeSingleRoll:
		// Full planned time is charged whether the roll lands or not.
		ev.ExpectedTime = float64(res.cost)
		if xpEligible {
			ev.ExpectedXP = res.chance
		}
	case modeRepeated:
		ev.ExpectedTime = res.expectedTicks
		if xpEligible {
			ev.ExpectedXP = 1
		}
	}
	return ev
}

// EvaluatePlan replays the plan's rule checks against a clone, assuming RNG
// success, so a multi-step plan can be fully diagnosed in one pass. The
// passed-in state is never touched.
func (e *Engine) EvaluatePlan(st *WorldState, actions []protocol.Action) PlanEvaluation {
	clone := st.Clone()
	var out PlanEvaluation

	for i, action := range actions {
		if clone.Time.SessionRemainingTicks <= 0 {
			out.Violations = append(out.Violations, Violation{ActionIndex: i, Reason: protocol.FailSessionEnded})
			continue
		}
		res, failure := e.resolve(clone, action)
		if failure != "" {
			out.Violations = append(out.Violations, Violation{ActionIndex: i, Reason: failure})
			continue
		}

		ev := e.evaluateResolved(clone, res)
		needed := int(math.Ceil(ev.ExpectedTime))
		if needed > clone.Time.SessionRemainingTicks {
			out.Violations = append(out.Violations, Violation{ActionIndex: i, Reason: protocol.FailSessionEnded})
			continue
		}

		// Advance the clone as if the action had succeeded, through the
		// same effect functions the engine commits with.
		scratch := protocol.ActionLog{}
		e.consumeTime(clone, needed, &scratch)
		res.apply(e, clone, applyCtx{log: &scratch, assume: true})
		if res.xpSkill != "" && clone.Player.enrolled(res.xpSkill) {
			clone.Player.Skills[res.xpSkill]++
		}
		e.checkContracts(clone, &scratch)

		out.ExpectedTime += ev.ExpectedTime
		out.ExpectedXP += ev.ExpectedXP
	}
	return out
}
