// Package tuning holds every numeric knob of the engine. Values are explicit
// construction-time configuration: compiled-in defaults, optionally overridden
// from a YAML file, never read from ambient process state.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	SessionTicks      int `yaml:"session_ticks"`
	InventoryCapacity int `yaml:"inventory_capacity"`

	// Fixed action costs in ticks.
	MoveLocationTicks int `yaml:"move_location_ticks"`
	GatherTicks       int `yaml:"gather_ticks"`
	FightTicks        int `yaml:"fight_ticks"`
	DropTicks         int `yaml:"drop_ticks"`
	AppraiseTicks     int `yaml:"appraise_ticks"`

	// Inter-area travel: base segment cost, scaled by the connection's
	// 1x-4x multiplier.
	TravelBaseTicks int `yaml:"travel_base_ticks"`

	// Worldgen.
	AreaCountBase     int     `yaml:"area_count_base"`    // Fibonacci seed: distance 1
	AreaCountSecond   int     `yaml:"area_count_second"`  // Fibonacci seed: distance 2
	MaxDistance       int     `yaml:"max_distance"`       // generation horizon
	LocationChance    float64 `yaml:"location_chance"`    // per location type, independent
	CountDistribution []int   `yaml:"count_distribution"` // percent weights over {0,1,2,3}
	NodeMaterialMin   int     `yaml:"node_material_min"`
	NodeMaterialMax   int     `yaml:"node_material_max"`
	ReserveMin        int     `yaml:"reserve_min"`
	ReserveMax        int     `yaml:"reserve_max"`

	// Exploration success model.
	ExploreBaseChance      float64 `yaml:"explore_base_chance"`
	ExploreLevelBonus      float64 `yaml:"explore_level_bonus"`
	ExploreDistancePenalty float64 `yaml:"explore_distance_penalty"`
	ExploreKnownAreaBonus  float64 `yaml:"explore_known_area_bonus"`
	ExploreFrontierBonus   float64 `yaml:"explore_frontier_bonus"`
	ExploreUnskilledChance float64 `yaml:"explore_unskilled_chance"`

	// Gather/fight success model.
	GatherBaseChance float64 `yaml:"gather_base_chance"`
	FightBaseChance  float64 `yaml:"fight_base_chance"`
	LevelStepChance  float64 `yaml:"level_step_chance"`
	MinChance        float64 `yaml:"min_chance"`
	MaxChance        float64 `yaml:"max_chance"`
}

// Default returns the engine's reference tuning.
func Default() Tuning {
	return Tuning{
		SessionTicks:      1000,
		InventoryCapacity: 10,

		MoveLocationTicks: 2,
		GatherTicks:       2,
		FightTicks:        5,
		DropTicks:         1,
		AppraiseTicks:     1,

		TravelBaseTicks: 10,

		AreaCountBase:   5,
		AreaCountSecond: 8,
		MaxDistance:     6,
		LocationChance:  0.25,
		// 15/35/35/15 over {0,1,2,3} connections, and (shifted) 1x-4x
		// travel multipliers.
		CountDistribution: []int{15, 35, 35, 15},
		NodeMaterialMin:   1,
		NodeMaterialMax:   3,
		ReserveMin:        5,
		ReserveMax:        20,

		ExploreBaseChance:      0.05,
		ExploreLevelBonus:      0.05,
		ExploreDistancePenalty: 0.05,
		ExploreKnownAreaBonus:  0.05,
		ExploreFrontierBonus:   0.20,
		ExploreUnskilledChance: 0.01,

		GatherBaseChance: 0.50,
		FightBaseChance:  0.60,
		LevelStepChance:  0.10,
		MinChance:        0.05,
		MaxChance:        0.95,
	}
}

// Load reads tuning from a YAML file layered over the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.InventoryCapacity <= 0 {
		return fmt.Errorf("inventory_capacity must be positive")
	}
	if t.SessionTicks <= 0 {
		return fmt.Errorf("session_ticks must be positive")
	}
	if len(t.CountDistribution) != 4 {
		return fmt.Errorf("count_distribution needs 4 weights, got %d", len(t.CountDistribution))
	}
	sum := 0
	for _, w := range t.CountDistribution {
		if w < 0 {
			return fmt.Errorf("count_distribution weight %d is negative", w)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("count_distribution has no mass")
	}
	if t.MinChance < 0 || t.MaxChance > 1 || t.MinChance > t.MaxChance {
		return fmt.Errorf("chance clamp [%v, %v] invalid", t.MinChance, t.MaxChance)
	}
	if t.ReserveMin <= 0 || t.ReserveMax < t.ReserveMin {
		return fmt.Errorf("reserve range [%d, %d] invalid", t.ReserveMin, t.ReserveMax)
	}
	if t.NodeMaterialMin <= 0 || t.NodeMaterialMax < t.NodeMaterialMin {
		return fmt.Errorf("node material range [%d, %d] invalid", t.NodeMaterialMin, t.NodeMaterialMax)
	}
	return nil
}
