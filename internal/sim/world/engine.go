package world

import (
	"fmt"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/rng"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
)

// Engine evaluates and executes actions against a WorldState. It holds only
// immutable configuration; all mutable simulation state lives in the
// WorldState, so one Engine may serve many independent states.
type Engine struct {
	tun  tuning.Tuning
	cats *catalogs.Catalogs
}

func NewEngine(tun tuning.Tuning, cats *catalogs.Catalogs) *Engine {
	return &Engine{tun: tun, cats: cats}
}

func (e *Engine) Tuning() tuning.Tuning        { return e.tun }
func (e *Engine) Catalogs() *catalogs.Catalogs { return e.cats }

// CreateWorld bootstraps a deterministic world from a textual seed: town with
// its fixed locations, the town connections to every distance-1 area, and the
// player standing in town knowing only the town.
func (e *Engine) CreateWorld(seed string) *WorldState {
	sv := SeedValue(seed)
	st := &WorldState{
		SeedText: seed,
		Seed:     sv,
		Time: TimeState{
			CurrentTick:           0,
			SessionRemainingTicks: e.tun.SessionTicks,
		},
		Player: PlayerState{
			Inventory:         map[protocol.ItemID]int{},
			InventoryCapacity: e.tun.InventoryCapacity,
			Storage:           map[protocol.ItemID]int{},
			Skills:            map[protocol.SkillID]int{},
		},
		World: WorldContent{
			StorageArea:    protocol.TownID,
			GuildLocations: map[protocol.SkillID]protocol.LocationID{},
			CatalogsDigest: e.cats.Digest,
		},
		Exploration: ExplorationState{
			Areas:            map[protocol.AreaID]*Area{},
			Connections:      map[protocol.ConnectionID]*Connection{},
			CurrentArea:      protocol.TownID,
			KnownAreas:       map[protocol.AreaID]struct{}{},
			KnownLocations:   map[protocol.LocationID]struct{}{},
			KnownConnections: map[protocol.ConnectionID]struct{}{},
			AppraisedNodes:   map[protocol.NodeID]struct{}{},
		},
		RNG: rng.New(sv),
	}

	e.materializeTown(st)
	st.learnArea(protocol.TownID)
	for _, l := range st.area(protocol.TownID).Locations {
		st.learnLocation(l.ID)
	}
	return st
}

// ExecuteAction is the only mutation entrypoint: one action in, one ActionLog
// out, all RNG draws audited, effects fully committed or not at all.
func (e *Engine) ExecuteAction(st *WorldState, action protocol.Action) protocol.ActionLog {
	log := protocol.ActionLog{
		TickBefore: st.Time.CurrentTick,
		ActionType: action.Type(),
		Parameters: actionParameters(action),
	}

	// A spent session rejects everything, even free actions, before any
	// other precondition runs.
	if st.Time.SessionRemainingTicks <= 0 {
		log.FailureType = protocol.FailSessionEnded
		return log
	}

	res, failure := e.resolve(st, action)
	if failure != "" {
		log.FailureType = failure
		return log
	}

	// An action the session cannot afford fails before any roll or effect.
	if res.cost > st.Time.SessionRemainingTicks {
		log.FailureType = protocol.FailSessionEnded
		return log
	}

	switch res.mode {
	case modeDeterministic:
		e.consumeTime(st, res.cost, &log)
		res.apply(e, st, applyCtx{log: &log, assume: false})
	case modeSingleRoll:
		ok, rec := st.RNG.Roll(res.chance, res.rollLabel)
		log.RngRolls = append(log.RngRolls, rec)
		e.consumeTime(st, res.cost, &log)
		if !ok {
			log.FailureType = res.rollFailure
			return log
		}
		res.apply(e, st, applyCtx{log: &log, assume: false})
	case modeRepeated:
		if !e.runRepeated(st, res, &log) {
			return log
		}
	default:
		// The action union is closed; reaching here is a programming error.
		panic(fmt.Sprintf("world: unhandled resolution mode %d", res.mode))
	}

	log.Success = true
	if res.xpSkill != "" && st.Player.enrolled(res.xpSkill) {
		st.Player.Skills[res.xpSkill]++
		log.SkillGained = &protocol.SkillGain{Skill: res.xpSkill, XP: 1}
	}

	e.checkContracts(st, &log)
	return log
}

func (e *Engine) consumeTime(st *WorldState, ticks int, log *protocol.ActionLog) {
	st.Time.CurrentTick += ticks
	st.Time.SessionRemainingTicks -= ticks
	log.TimeConsumed += ticks
}

// applyCtx carries the mutation context shared by the real engine and the
// plan evaluator. When assume is set, effect functions must not touch the RNG
// stream and resolve any random pick deterministically.
type applyCtx struct {
	log    *protocol.ActionLog
	assume bool
}

type resolutionMode int

const (
	modeDeterministic resolutionMode = iota
	modeSingleRoll
	modeRepeated
)

// resolution is the shared outcome of precondition checking: what the action
// will cost, how likely it is to succeed, which skill it credits, and the
// effect function both execution and evaluation apply.
type resolution struct {
	mode resolutionMode

	cost   int     // planned ticks (full cost, charged even on an RNG miss)
	chance float64 // per-roll success probability; 1 for deterministic actions

	// Repeated mode (Explore/Survey): cadence between attempts and the
	// expected ticks to first success.
	cadence       float64
	expectedTicks float64

	rollLabel   string
	rollFailure protocol.FailureType

	xpSkill protocol.SkillID

	apply func(e *Engine, st *WorldState, ctx applyCtx)
}

// resolve runs every precondition for the action and, when they all pass,
// returns the resolved plan. It never mutates state: the evaluator calls it
// against clones and the engine calls it before committing anything.
func (e *Engine) resolve(st *WorldState, action protocol.Action) (resolution, protocol.FailureType) {
	switch a := action.(type) {
	case protocol.Move:
		return e.resolveMove(st, a)
	case protocol.Gather:
		return e.resolveGather(st, a)
	case protocol.Fight:
		return e.resolveFight(st, a)
	case protocol.Craft:
		return e.resolveCraft(st, a)
	case protocol.Store:
		return e.resolveStore(st, a)
	case protocol.Drop:
		return e.resolveDrop(st, a)
	case protocol.AcceptContract:
		return e.resolveAcceptContract(st, a)
	case protocol.Enrol:
		return e.resolveEnrol(st, a)
	case protocol.Explore:
		return e.resolveExplore(st)
	case protocol.Survey:
		return e.resolveSurvey(st)
	case protocol.Appraise:
		return e.resolveAppraise(st, a)
	case protocol.TurnInCombatTokens:
		return e.resolveTurnInTokens(st, a)
	}
	panic(fmt.Sprintf("world: unhandled action type %T", action))
}

// actionParameters renders an action's payload for the log record.
func actionParameters(action protocol.Action) map[string]any {
	switch a := action.(type) {
	case protocol.Move:
		p := map[string]any{}
		if a.ToLocation != "" {
			p["to_location"] = string(a.ToLocation)
		}
		if a.ToArea != nil {
			p["to_area"] = a.ToArea.String()
		}
		return p
	case protocol.Gather:
		return map[string]any{"node_id": string(a.NodeID)}
	case protocol.Fight:
		return map[string]any{"mob_id": string(a.MobID)}
	case protocol.Craft:
		return map[string]any{"recipe_id": string(a.RecipeID)}
	case protocol.Store:
		return map[string]any{"item": string(a.Item), "quantity": a.Quantity}
	case protocol.Drop:
		return map[string]any{"item": string(a.Item), "quantity": a.Quantity}
	case protocol.AcceptContract:
		return map[string]any{"contract_id": string(a.ContractID)}
	case protocol.Enrol:
		return map[string]any{"skill": string(a.Skill)}
	case protocol.Appraise:
		return map[string]any{"node_id": string(a.NodeID)}
	case protocol.TurnInCombatTokens:
		return map[string]any{"quantity": a.Quantity}
	}
	return nil
}
