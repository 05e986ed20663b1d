package protocol

// RollRecord is one audited RNG draw. Weighted selections emit one record per
// candidate sharing the same CounterBefore, so the whole distribution is
// inspectable, not just the winner.
type RollRecord struct {
	Label         string  `json:"label"`
	Probability   float64 `json:"probability"`
	Result        bool    `json:"result"`
	CounterBefore uint64  `json:"counter_before"`
}

// SkillGain names the single skill credited by a successful action.
type SkillGain struct {
	Skill SkillID `json:"skill"`
	XP    int     `json:"xp"`
}

// ContractCompletion records one contract instance paying out.
type ContractCompletion struct {
	ContractID       ContractID     `json:"contract_id"`
	ItemsConsumed    map[ItemID]int `json:"items_consumed"`
	RewardsGranted   map[ItemID]int `json:"rewards_granted,omitempty"`
	ReputationGained int            `json:"reputation_gained"`
	XPGranted        *SkillGain     `json:"xp_granted,omitempty"`
}

// DeltaSummary is a compact account of what an action changed.
type DeltaSummary struct {
	ItemsGained map[ItemID]int `json:"items_gained,omitempty"`
	ItemsLost   map[ItemID]int `json:"items_lost,omitempty"`
	ItemsStored map[ItemID]int `json:"items_stored,omitempty"`

	MovedTo          string `json:"moved_to,omitempty"`
	ReputationGained int    `json:"reputation_gained,omitempty"`

	AreasDiscovered       []AreaID       `json:"areas_discovered,omitempty"`
	ConnectionsDiscovered []ConnectionID `json:"connections_discovered,omitempty"`
	LocationsDiscovered   []LocationID   `json:"locations_discovered,omitempty"`
	NodesAppraised        []NodeID       `json:"nodes_appraised,omitempty"`

	LuckDelta *float64 `json:"luck_delta,omitempty"`
}

// ActionLog is the immutable record of one execution step, the canonical wire
// record of this engine. Produced once per executeAction call, never mutated.
type ActionLog struct {
	TickBefore   int            `json:"tick_before"`
	ActionType   ActionType     `json:"action_type"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Success      bool           `json:"success"`
	FailureType  FailureType    `json:"failure_type,omitempty"`
	TimeConsumed int            `json:"time_consumed"`
	SkillGained  *SkillGain     `json:"skill_gained,omitempty"`

	RngRolls []RollRecord `json:"rng_rolls,omitempty"`

	StateDelta         DeltaSummary         `json:"state_delta"`
	ContractsCompleted []ContractCompletion `json:"contracts_completed,omitempty"`
}
