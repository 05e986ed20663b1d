package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	actionSchema := compile("action.schema.json")
	logSchema := compile("actionlog.schema.json")

	// Every action type round-trips through the encoder and validates.
	actions := []protocol.Action{
		protocol.Move{ToLocation: "town/forge"},
		protocol.Gather{NodeID: "A1.0/mine#node"},
		protocol.Fight{MobID: "RAT"},
		protocol.Craft{RecipeID: "SMELT_IRON_BAR"},
		protocol.Store{Item: "IRON_ORE", Quantity: 3},
		protocol.Drop{Item: "IRON_ORE", Quantity: 1},
		protocol.AcceptContract{ContractID: "miners-guild-1"},
		protocol.Enrol{Skill: protocol.SkillMining},
		protocol.Explore{},
		protocol.Survey{},
		protocol.Appraise{NodeID: "A1.0/mine#node"},
		protocol.TurnInCombatTokens{Quantity: 2},
	}
	for _, a := range actions {
		b, err := protocol.EncodeAction(a)
		if err != nil {
			t.Fatalf("encode %s: %v", a.Type(), err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal %s: %v", a.Type(), err)
		}
		validate(actionSchema, v)
	}

	var alog any
	_ = json.Unmarshal([]byte(`{
	  "tick_before": 12,
	  "action_type": "GATHER",
	  "parameters": {"node_id": "A1.0/mine#node"},
	  "success": true,
	  "time_consumed": 2,
	  "skill_gained": {"skill": "MINING", "xp": 1},
	  "rng_rolls": [
	    {"label": "gather:A1.0/mine#node", "probability": 0.6, "result": true, "counter_before": 41}
	  ],
	  "state_delta": {
	    "items_gained": {"IRON_ORE": 1},
	    "luck_delta": 0.4
	  },
	  "contracts_completed": [
	    {
	      "contract_id": "miners-guild-1",
	      "items_consumed": {"IRON_BAR": 2},
	      "rewards_granted": {"IRON_ORE": 5},
	      "reputation_gained": 10
	    }
	  ]
	}`), &alog)
	validate(logSchema, alog)

	var failed any
	_ = json.Unmarshal([]byte(`{
	  "tick_before": 990,
	  "action_type": "MOVE",
	  "parameters": {"to_area": "A2.4"},
	  "success": false,
	  "failure_type": "SESSION_ENDED",
	  "time_consumed": 0,
	  "state_delta": {}
	}`), &failed)
	validate(logSchema, failed)
}

func TestSchemas_RejectBadAction(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "action.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	bad := []string{
		`{"type":"TELEPORT"}`,
		`{"type":"GATHER","params":{}}`,
		`{"type":"STORE","params":{"item":"IRON_ORE","quantity":0}}`,
		`{"params":{"node_id":"x"}}`,
	}
	for _, raw := range bad {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if err := s.Validate(v); err == nil {
			t.Errorf("expected validation failure for %s", raw)
		}
	}
}
