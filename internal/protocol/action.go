package protocol

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionMove               ActionType = "MOVE"
	ActionGather             ActionType = "GATHER"
	ActionFight              ActionType = "FIGHT"
	ActionCraft              ActionType = "CRAFT"
	ActionStore              ActionType = "STORE"
	ActionDrop               ActionType = "DROP"
	ActionAcceptContract     ActionType = "ACCEPT_CONTRACT"
	ActionEnrol              ActionType = "ENROL"
	ActionExplore            ActionType = "EXPLORE"
	ActionSurvey             ActionType = "SURVEY"
	ActionAppraise           ActionType = "APPRAISE"
	ActionTurnInCombatTokens ActionType = "TURN_IN_COMBAT_TOKENS"
)

// Action is the closed set of things the agent can do, one per turn.
// The engine switches over the concrete types exhaustively; adding a case
// here without teaching the engine about it is a compile-time-visible bug
// (the engine's default branch rejects unknown types loudly).
type Action interface {
	Type() ActionType
	isAction()
}

// Move travels either to a location inside the current area (ToLocation set)
// or to an adjacent area across a known connection (ToArea set).
type Move struct {
	ToLocation LocationID `json:"to_location,omitempty"`
	ToArea     *AreaID    `json:"to_area,omitempty"`
}

type Gather struct {
	NodeID NodeID `json:"node_id"`
}

type Fight struct {
	MobID MobID `json:"mob_id"`
}

type Craft struct {
	RecipeID RecipeID `json:"recipe_id"`
}

type Store struct {
	Item     ItemID `json:"item"`
	Quantity int    `json:"quantity"`
}

type Drop struct {
	Item     ItemID `json:"item"`
	Quantity int    `json:"quantity"`
}

type AcceptContract struct {
	ContractID ContractID `json:"contract_id"`
}

type Enrol struct {
	Skill SkillID `json:"skill"`
}

type Explore struct{}

type Survey struct{}

type Appraise struct {
	NodeID NodeID `json:"node_id"`
}

type TurnInCombatTokens struct {
	Quantity int `json:"quantity"`
}

func (Move) Type() ActionType               { return ActionMove }
func (Gather) Type() ActionType             { return ActionGather }
func (Fight) Type() ActionType              { return ActionFight }
func (Craft) Type() ActionType              { return ActionCraft }
func (Store) Type() ActionType              { return ActionStore }
func (Drop) Type() ActionType               { return ActionDrop }
func (AcceptContract) Type() ActionType     { return ActionAcceptContract }
func (Enrol) Type() ActionType              { return ActionEnrol }
func (Explore) Type() ActionType            { return ActionExplore }
func (Survey) Type() ActionType             { return ActionSurvey }
func (Appraise) Type() ActionType           { return ActionAppraise }
func (TurnInCombatTokens) Type() ActionType { return ActionTurnInCombatTokens }

func (Move) isAction()               {}
func (Gather) isAction()             {}
func (Fight) isAction()              {}
func (Craft) isAction()              {}
func (Store) isAction()              {}
func (Drop) isAction()               {}
func (AcceptContract) isAction()     {}
func (Enrol) isAction()              {}
func (Explore) isAction()            {}
func (Survey) isAction()             {}
func (Appraise) isAction()           {}
func (TurnInCombatTokens) isAction() {}

// actionEnvelope is the tagged wire form used by scripts and the replay tool.
type actionEnvelope struct {
	Type   ActionType      `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

func EncodeAction(a Action) ([]byte, error) {
	params, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	env := actionEnvelope{Type: a.Type()}
	if string(params) != "{}" {
		env.Params = params
	}
	return json.Marshal(env)
}

func DecodeAction(b []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	params := env.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	decode := func(into Action) (Action, error) {
		if err := json.Unmarshal(params, into); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", env.Type, err)
		}
		return into, nil
	}
	switch env.Type {
	case ActionMove:
		a, err := decode(&Move{})
		return deref(a), err
	case ActionGather:
		a, err := decode(&Gather{})
		return deref(a), err
	case ActionFight:
		a, err := decode(&Fight{})
		return deref(a), err
	case ActionCraft:
		a, err := decode(&Craft{})
		return deref(a), err
	case ActionStore:
		a, err := decode(&Store{})
		return deref(a), err
	case ActionDrop:
		a, err := decode(&Drop{})
		return deref(a), err
	case ActionAcceptContract:
		a, err := decode(&AcceptContract{})
		return deref(a), err
	case ActionEnrol:
		a, err := decode(&Enrol{})
		return deref(a), err
	case ActionExplore:
		return Explore{}, nil
	case ActionSurvey:
		return Survey{}, nil
	case ActionAppraise:
		a, err := decode(&Appraise{})
		return deref(a), err
	case ActionTurnInCombatTokens:
		a, err := decode(&TurnInCombatTokens{})
		return deref(a), err
	}
	return nil, fmt.Errorf("unknown action type %q", env.Type)
}

// deref unwraps the pointer the json decoder needed back to a value type so
// both encode paths produce the same concrete Action.
func deref(a Action) Action {
	if a == nil {
		return nil
	}
	switch v := a.(type) {
	case *Move:
		return *v
	case *Gather:
		return *v
	case *Fight:
		return *v
	case *Craft:
		return *v
	case *Store:
		return *v
	case *Drop:
		return *v
	case *AcceptContract:
		return *v
	case *Enrol:
		return *v
	case *Appraise:
		return *v
	case *TurnInCombatTokens:
		return *v
	}
	return a
}
