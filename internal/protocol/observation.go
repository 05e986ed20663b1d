package protocol

// PolicyObservation is the sanitized, discovery-filtered read projection handed
// to autonomous policies. It must never expose undiscovered content: areas,
// connections, locations and node detail all pass through the knowledge sets
// before they appear here.
type PolicyObservation struct {
	ProtocolVersion string `json:"protocol_version"`

	CurrentTick           int `json:"current_tick"`
	SessionRemainingTicks int `json:"session_remaining_ticks"`

	CurrentArea     AreaID     `json:"current_area"`
	CurrentLocation LocationID `json:"current_location,omitempty"`

	Inventory         []ItemStack    `json:"inventory"`
	InventoryCapacity int            `json:"inventory_capacity"`
	Storage           []ItemStack    `json:"storage,omitempty"`
	Skills            map[SkillID]int `json:"skills"`
	GuildReputation   int            `json:"guild_reputation"`
	EquippedWeapon    ItemID         `json:"equipped_weapon,omitempty"`

	KnownAreas       []AreaObs       `json:"known_areas"`
	KnownConnections []ConnectionObs `json:"known_connections"`

	ActiveContracts    []ContractObs `json:"active_contracts,omitempty"`
	AvailableContracts []ContractObs `json:"available_contracts,omitempty"`

	TotalLuckDelta float64 `json:"total_luck_delta"`
	CurrentStreak  int     `json:"current_streak"`
}

type ItemStack struct {
	Item  ItemID `json:"item"`
	Count int    `json:"count"`
}

type AreaObs struct {
	ID        AreaID        `json:"id"`
	Distance  int           `json:"distance"`
	Locations []LocationObs `json:"locations,omitempty"`
}

type ConnectionObs struct {
	ID         ConnectionID `json:"id"`
	Multiplier int          `json:"multiplier"`
	TravelCost int          `json:"travel_cost"`
}

type LocationObs struct {
	ID   LocationID   `json:"id"`
	Kind LocationKind `json:"kind"`

	// Guild is the skill taught here, for guild locations.
	Guild SkillID `json:"guild,omitempty"`

	// Node detail, present only for gathering/combat locations and filtered
	// by visibility tier.
	Node *NodeObs `json:"node,omitempty"`
	Mob  *MobObs  `json:"mob,omitempty"`
}

type NodeObs struct {
	ID         NodeID         `json:"id"`
	Visibility VisibilityTier `json:"visibility"`
	// Materials is empty at tier NONE, identities only at MATERIALS, and
	// includes remaining quantities at FULL.
	Materials []MaterialObs `json:"materials,omitempty"`
}

type MaterialObs struct {
	Item          ItemID `json:"item"`
	Tier          int    `json:"tier"`
	RequiresSkill SkillID `json:"requires_skill"`
	RequiredLevel int    `json:"required_level"`
	// Remaining is only populated at FULL visibility.
	Remaining *int `json:"remaining,omitempty"`
}

type MobObs struct {
	ID    MobID  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type ContractObs struct {
	ID               ContractID     `json:"id"`
	Location         LocationID     `json:"location"`
	Requirements     map[ItemID]int `json:"requirements"`
	RewardItems      map[ItemID]int `json:"reward_items,omitempty"`
	ReputationReward int            `json:"reputation_reward"`
	XPRewardSkill    SkillID        `json:"xp_reward_skill,omitempty"`
}
