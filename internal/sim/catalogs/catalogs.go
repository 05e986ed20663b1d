// Package catalogs defines the static content the world generator and engine
// draw from: items, gatherable materials, recipes, mobs and contract
// templates. Content is immutable once loaded and carries a sha256 digest so
// two processes can verify they simulate against identical definitions.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

const CombatTokenItem = protocol.ItemID("COMBAT_TOKEN")

type Catalogs struct {
	Items     ItemCatalog
	Materials MaterialCatalog
	Recipes   RecipeCatalog
	Mobs      MobCatalog
	Contracts ContractCatalog

	Digest string
}

type ItemCatalog struct {
	Defs map[protocol.ItemID]ItemDef
}

type ItemDef struct {
	ID     protocol.ItemID `json:"id"`
	Kind   string          `json:"kind"` // "MATERIAL","BAR","WEAPON","TOKEN"
	Weapon bool            `json:"weapon,omitempty"`
}

type MaterialCatalog struct {
	Defs []MaterialDef
}

// MaterialDef describes one extractable resource: which skill works it, its
// quality tier, the minimum area distance it spawns at, and the skill level a
// player needs before the engine will let them extract it.
type MaterialDef struct {
	Item          protocol.ItemID  `json:"item"`
	Skill         protocol.SkillID `json:"skill"`
	Tier          int              `json:"tier"`
	MinDistance   int              `json:"min_distance"`
	RequiredLevel int              `json:"required_level"`
}

type RecipeCatalog struct {
	ByID map[protocol.RecipeID]RecipeDef
}

type RecipeDef struct {
	RecipeID    protocol.RecipeID `json:"recipe_id"`
	Inputs      []ItemCount       `json:"inputs"`
	Outputs     []ItemCount       `json:"outputs"`
	MinSmithing int               `json:"min_smithing"`
	TimeTicks   int               `json:"time_ticks"`
}

type ItemCount struct {
	Item  protocol.ItemID `json:"item"`
	Count int             `json:"count"`
}

type MobCatalog struct {
	ByID map[protocol.MobID]MobDef
}

type MobDef struct {
	MobID       protocol.MobID `json:"mob_id"`
	Name        string         `json:"name"`
	Level       int            `json:"level"`
	MinDistance int            `json:"min_distance"`
	Loot        []LootEntry    `json:"loot"`
}

// LootEntry is one candidate in a mob's weighted loot table.
type LootEntry struct {
	Item   protocol.ItemID `json:"item"`
	Count  int             `json:"count"`
	Weight float64         `json:"weight"`
}

type ContractCatalog struct {
	ByID map[protocol.ContractID]ContractDef
}

// ContractDef is a contract template. Guild names the skill whose guild
// location posts it; requirements are cumulative item quantities checked
// against inventory plus storage.
type ContractDef struct {
	ContractID       protocol.ContractID      `json:"contract_id"`
	Guild            protocol.SkillID         `json:"guild"`
	Requirements     map[protocol.ItemID]int  `json:"requirements"`
	RewardItems      map[protocol.ItemID]int  `json:"reward_items,omitempty"`
	ReputationReward int                      `json:"reputation_reward"`
	XPRewardSkill    protocol.SkillID         `json:"xp_reward_skill,omitempty"`
}

// MaterialsFor returns the materials a location of the given skill can hold in
// an area at the given distance, in catalog order.
func (c *Catalogs) MaterialsFor(skill protocol.SkillID, distance int) []MaterialDef {
	var out []MaterialDef
	for _, m := range c.Materials.Defs {
		if m.Skill == skill && m.MinDistance <= distance {
			out = append(out, m)
		}
	}
	return out
}

// MobsFor returns mob templates eligible at the given distance.
func (c *Catalogs) MobsFor(distance int) []MobDef {
	ids := make([]protocol.MobID, 0, len(c.Mobs.ByID))
	for id, m := range c.Mobs.ByID {
		if m.MinDistance <= distance {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]MobDef, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.Mobs.ByID[id])
	}
	return out
}

// ContractsForGuild returns templates posted at the given guild, id-sorted.
func (c *Catalogs) ContractsForGuild(guild protocol.SkillID) []ContractDef {
	var out []ContractDef
	for _, def := range c.Contracts.ByID {
		if def.Guild == guild {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractID < out[j].ContractID })
	return out
}

func (c *Catalogs) IsWeapon(item protocol.ItemID) bool {
	return c.Items.Defs[item].Weapon
}

// overrideFile is the shape of <dir>/catalogs.json; any section present
// replaces the default section wholesale.
type overrideFile struct {
	Materials []MaterialDef `json:"materials,omitempty"`
	Items     []ItemDef     `json:"items,omitempty"`
	Recipes   []RecipeDef   `json:"recipes,omitempty"`
	Mobs      []MobDef      `json:"mobs,omitempty"`
	Contracts []ContractDef `json:"contracts,omitempty"`
}

// Load returns the default catalogs, replaced section-by-section from
// <dir>/catalogs.json when that file exists.
func Load(dir string) (*Catalogs, error) {
	c := Default()
	if dir == "" {
		return c, nil
	}
	path := filepath.Join(dir, "catalogs.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	var ov overrideFile
	if err := json.Unmarshal(raw, &ov); err != nil {
		return nil, fmt.Errorf("catalogs %s: %w", path, err)
	}
	if len(ov.Items) > 0 {
		c.Items.Defs = map[protocol.ItemID]ItemDef{}
		for _, d := range ov.Items {
			c.Items.Defs[d.ID] = d
		}
	}
	if len(ov.Materials) > 0 {
		c.Materials.Defs = ov.Materials
	}
	if len(ov.Recipes) > 0 {
		c.Recipes.ByID = map[protocol.RecipeID]RecipeDef{}
		for _, d := range ov.Recipes {
			c.Recipes.ByID[d.RecipeID] = d
		}
	}
	if len(ov.Mobs) > 0 {
		c.Mobs.ByID = map[protocol.MobID]MobDef{}
		for _, d := range ov.Mobs {
			c.Mobs.ByID[d.MobID] = d
		}
	}
	if len(ov.Contracts) > 0 {
		c.Contracts.ByID = map[protocol.ContractID]ContractDef{}
		for _, d := range ov.Contracts {
			c.Contracts.ByID[d.ContractID] = d
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalogs %s: %w", path, err)
	}
	c.Digest = c.computeDigest()
	return c, nil
}

func (c *Catalogs) Validate() error {
	for _, m := range c.Materials.Defs {
		if _, ok := c.Items.Defs[m.Item]; !ok {
			return fmt.Errorf("material %s references unknown item", m.Item)
		}
		if m.RequiredLevel < 1 {
			return fmt.Errorf("material %s required level %d < 1", m.Item, m.RequiredLevel)
		}
	}
	for id, r := range c.Recipes.ByID {
		for _, in := range append(append([]ItemCount{}, r.Inputs...), r.Outputs...) {
			if _, ok := c.Items.Defs[in.Item]; !ok {
				return fmt.Errorf("recipe %s references unknown item %s", id, in.Item)
			}
			if in.Count <= 0 {
				return fmt.Errorf("recipe %s has non-positive count for %s", id, in.Item)
			}
		}
		if r.TimeTicks <= 0 {
			return fmt.Errorf("recipe %s time_ticks %d invalid", id, r.TimeTicks)
		}
	}
	for id, m := range c.Mobs.ByID {
		if len(m.Loot) == 0 {
			return fmt.Errorf("mob %s has no loot table", id)
		}
		for _, l := range m.Loot {
			if _, ok := c.Items.Defs[l.Item]; !ok {
				return fmt.Errorf("mob %s loot references unknown item %s", id, l.Item)
			}
		}
	}
	for id, def := range c.Contracts.ByID {
		if len(def.Requirements) == 0 {
			return fmt.Errorf("contract %s has no requirements", id)
		}
		for item, n := range def.Requirements {
			if _, ok := c.Items.Defs[item]; !ok {
				return fmt.Errorf("contract %s requires unknown item %s", id, item)
			}
			if n <= 0 {
				return fmt.Errorf("contract %s requires %d of %s", id, n, item)
			}
		}
		for item := range def.RewardItems {
			if _, ok := c.Items.Defs[item]; !ok {
				return fmt.Errorf("contract %s rewards unknown item %s", id, item)
			}
		}
	}
	return nil
}

// computeDigest hashes a canonical JSON rendering: slices sorted by id so the
// digest does not depend on map iteration order.
func (c *Catalogs) computeDigest() string {
	type canon struct {
		Items     []ItemDef     `json:"items"`
		Materials []MaterialDef `json:"materials"`
		Recipes   []RecipeDef   `json:"recipes"`
		Mobs      []MobDef      `json:"mobs"`
		Contracts []ContractDef `json:"contracts"`
	}
	var cn canon
	for _, d := range c.Items.Defs {
		cn.Items = append(cn.Items, d)
	}
	sort.Slice(cn.Items, func(i, j int) bool { return cn.Items[i].ID < cn.Items[j].ID })
	cn.Materials = append(cn.Materials, c.Materials.Defs...)
	sort.Slice(cn.Materials, func(i, j int) bool { return cn.Materials[i].Item < cn.Materials[j].Item })
	for _, d := range c.Recipes.ByID {
		cn.Recipes = append(cn.Recipes, d)
	}
	sort.Slice(cn.Recipes, func(i, j int) bool { return cn.Recipes[i].RecipeID < cn.Recipes[j].RecipeID })
	for _, d := range c.Mobs.ByID {
		cn.Mobs = append(cn.Mobs, d)
	}
	sort.Slice(cn.Mobs, func(i, j int) bool { return cn.Mobs[i].MobID < cn.Mobs[j].MobID })
	for _, d := range c.Contracts.ByID {
		cn.Contracts = append(cn.Contracts, d)
	}
	sort.Slice(cn.Contracts, func(i, j int) bool { return cn.Contracts[i].ContractID < cn.Contracts[j].ContractID })

	b, err := json.Marshal(cn)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
