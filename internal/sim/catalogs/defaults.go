package catalogs

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

// Default returns the compiled-in reference content set.
func Default() *Catalogs {
	items := []ItemDef{
		{ID: "COPPER_ORE", Kind: "MATERIAL"},
		{ID: "IRON_ORE", Kind: "MATERIAL"},
		{ID: "SILVER_ORE", Kind: "MATERIAL"},
		{ID: "GOLD_ORE", Kind: "MATERIAL"},
		{ID: "PINE_LOG", Kind: "MATERIAL"},
		{ID: "OAK_LOG", Kind: "MATERIAL"},
		{ID: "IRONWOOD_LOG", Kind: "MATERIAL"},
		{ID: "COPPER_BAR", Kind: "BAR"},
		{ID: "IRON_BAR", Kind: "BAR"},
		{ID: "SILVER_BAR", Kind: "BAR"},
		{ID: "COPPER_SWORD", Kind: "WEAPON", Weapon: true},
		{ID: "IRON_SWORD", Kind: "WEAPON", Weapon: true},
		{ID: "WOLF_PELT", Kind: "MATERIAL"},
		{ID: "RAT_TAIL", Kind: "MATERIAL"},
		{ID: CombatTokenItem, Kind: "TOKEN"},
	}

	materials := []MaterialDef{
		{Item: "COPPER_ORE", Skill: protocol.SkillMining, Tier: 1, MinDistance: 1, RequiredLevel: 1},
		{Item: "IRON_ORE", Skill: protocol.SkillMining, Tier: 2, MinDistance: 1, RequiredLevel: 2},
		{Item: "SILVER_ORE", Skill: protocol.SkillMining, Tier: 3, MinDistance: 2, RequiredLevel: 4},
		{Item: "GOLD_ORE", Skill: protocol.SkillMining, Tier: 4, MinDistance: 3, RequiredLevel: 7},
		{Item: "PINE_LOG", Skill: protocol.SkillWoodcutting, Tier: 1, MinDistance: 1, RequiredLevel: 1},
		{Item: "OAK_LOG", Skill: protocol.SkillWoodcutting, Tier: 2, MinDistance: 1, RequiredLevel: 3},
		{Item: "IRONWOOD_LOG", Skill: protocol.SkillWoodcutting, Tier: 3, MinDistance: 2, RequiredLevel: 6},
	}

	recipes := []RecipeDef{
		{
			RecipeID:    "SMELT_COPPER_BAR",
			Inputs:      []ItemCount{{Item: "COPPER_ORE", Count: 2}},
			Outputs:     []ItemCount{{Item: "COPPER_BAR", Count: 1}},
			MinSmithing: 1,
			TimeTicks:   3,
		},
		{
			RecipeID:    "SMELT_IRON_BAR",
			Inputs:      []ItemCount{{Item: "IRON_ORE", Count: 2}},
			Outputs:     []ItemCount{{Item: "IRON_BAR", Count: 1}},
			MinSmithing: 2,
			TimeTicks:   4,
		},
		{
			RecipeID:    "SMELT_SILVER_BAR",
			Inputs:      []ItemCount{{Item: "SILVER_ORE", Count: 2}},
			Outputs:     []ItemCount{{Item: "SILVER_BAR", Count: 1}},
			MinSmithing: 4,
			TimeTicks:   5,
		},
		{
			RecipeID:    "FORGE_COPPER_SWORD",
			Inputs:      []ItemCount{{Item: "COPPER_BAR", Count: 2}, {Item: "PINE_LOG", Count: 1}},
			Outputs:     []ItemCount{{Item: "COPPER_SWORD", Count: 1}},
			MinSmithing: 2,
			TimeTicks:   6,
		},
		{
			RecipeID:    "FORGE_IRON_SWORD",
			Inputs:      []ItemCount{{Item: "IRON_BAR", Count: 2}, {Item: "OAK_LOG", Count: 1}},
			Outputs:     []ItemCount{{Item: "IRON_SWORD", Count: 1}},
			MinSmithing: 3,
			TimeTicks:   8,
		},
	}

	mobs := []MobDef{
		{
			MobID: "RAT", Name: "Giant Rat", Level: 1, MinDistance: 1,
			Loot: []LootEntry{
				{Item: CombatTokenItem, Count: 1, Weight: 6},
				{Item: "RAT_TAIL", Count: 1, Weight: 4},
			},
		},
		{
			MobID: "WOLF", Name: "Grey Wolf", Level: 3, MinDistance: 2,
			Loot: []LootEntry{
				{Item: CombatTokenItem, Count: 1, Weight: 5},
				{Item: "WOLF_PELT", Count: 1, Weight: 5},
			},
		},
		{
			MobID: "BANDIT", Name: "Road Bandit", Level: 5, MinDistance: 3,
			Loot: []LootEntry{
				{Item: CombatTokenItem, Count: 2, Weight: 7},
				{Item: "COPPER_BAR", Count: 1, Weight: 3},
			},
		},
	}

	contracts := []ContractDef{
		{
			ContractID:       "miners-guild-1",
			Guild:            protocol.SkillMining,
			Requirements:     map[protocol.ItemID]int{"IRON_BAR": 2},
			RewardItems:      map[protocol.ItemID]int{"IRON_ORE": 5},
			ReputationReward: 10,
		},
		{
			ContractID:       "miners-guild-2",
			Guild:            protocol.SkillMining,
			Requirements:     map[protocol.ItemID]int{"SILVER_ORE": 4},
			ReputationReward: 20,
			XPRewardSkill:    protocol.SkillMining,
		},
		{
			ContractID:       "woodcutters-guild-1",
			Guild:            protocol.SkillWoodcutting,
			Requirements:     map[protocol.ItemID]int{"PINE_LOG": 5},
			RewardItems:      map[protocol.ItemID]int{"OAK_LOG": 2},
			ReputationReward: 8,
		},
		{
			ContractID:       "combat-guild-1",
			Guild:            protocol.SkillCombat,
			Requirements:     map[protocol.ItemID]int{CombatTokenItem: 3},
			ReputationReward: 15,
		},
		{
			ContractID:       "smiths-guild-1",
			Guild:            protocol.SkillSmithing,
			Requirements:     map[protocol.ItemID]int{"COPPER_BAR": 3},
			RewardItems:      map[protocol.ItemID]int{"COPPER_ORE": 4},
			ReputationReward: 12,
			XPRewardSkill:    protocol.SkillSmithing,
		},
	}

	c := &Catalogs{
		Items:     ItemCatalog{Defs: map[protocol.ItemID]ItemDef{}},
		Recipes:   RecipeCatalog{ByID: map[protocol.RecipeID]RecipeDef{}},
		Mobs:      MobCatalog{ByID: map[protocol.MobID]MobDef{}},
		Contracts: ContractCatalog{ByID: map[protocol.ContractID]ContractDef{}},
	}
	for _, d := range items {
		c.Items.Defs[d.ID] = d
	}
	c.Materials.Defs = materials
	for _, d := range recipes {
		c.Recipes.ByID[d.RecipeID] = d
	}
	for _, d := range mobs {
		c.Mobs.ByID[d.MobID] = d
	}
	for _, d := range contracts {
		c.Contracts.ByID[d.ContractID] = d
	}
	c.Digest = c.computeDigest()
	return c
}
