package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const Version = "1.0"

// AreaID identifies a world region by its hop distance from town and its
// index within that distance tier. Town is AreaID{0, 0}.
type AreaID struct {
	Distance int
	Index    int
}

var TownID = AreaID{Distance: 0, Index: 0}

func (a AreaID) IsTown() bool { return a.Distance == 0 }

func (a AreaID) String() string {
	return fmt.Sprintf("A%d.%d", a.Distance, a.Index)
}

func (a AreaID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AreaID) UnmarshalText(b []byte) error {
	s := string(b)
	rest, ok := strings.CutPrefix(s, "A")
	if !ok {
		return fmt.Errorf("area id %q: missing prefix", s)
	}
	d, i, ok := strings.Cut(rest, ".")
	if !ok {
		return fmt.Errorf("area id %q: missing separator", s)
	}
	dist, err := strconv.Atoi(d)
	if err != nil {
		return fmt.Errorf("area id %q: %w", s, err)
	}
	idx, err := strconv.Atoi(i)
	if err != nil {
		return fmt.Errorf("area id %q: %w", s, err)
	}
	a.Distance = dist
	a.Index = idx
	return nil
}

// ConnectionID is the canonical identity of an undirected edge: the
// lexicographically lower AreaID first, so one edge is never booked twice.
type ConnectionID struct {
	A AreaID
	B AreaID
}

func NewConnectionID(a, b AreaID) ConnectionID {
	if less(b, a) {
		a, b = b, a
	}
	return ConnectionID{A: a, B: b}
}

func less(a, b AreaID) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Index < b.Index
}

func (c ConnectionID) String() string {
	return c.A.String() + "-" + c.B.String()
}

func (c ConnectionID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ConnectionID) UnmarshalText(b []byte) error {
	left, right, ok := strings.Cut(string(b), "-")
	if !ok {
		return fmt.Errorf("connection id %q: missing separator", string(b))
	}
	if err := c.A.UnmarshalText([]byte(left)); err != nil {
		return err
	}
	return c.B.UnmarshalText([]byte(right))
}

// Other reaches across a connection from one endpoint to the other.
func (c ConnectionID) Other(from AreaID) (AreaID, bool) {
	switch from {
	case c.A:
		return c.B, true
	case c.B:
		return c.A, true
	}
	return AreaID{}, false
}

type LocationID string

type NodeID string

type ItemID string

type ContractID string

type RecipeID string

type MobID string

type SkillID string

const (
	SkillMining      SkillID = "MINING"
	SkillWoodcutting SkillID = "WOODCUTTING"
	SkillCombat      SkillID = "COMBAT"
	SkillSmithing    SkillID = "SMITHING"
	SkillExploration SkillID = "EXPLORATION"
	SkillLogistics   SkillID = "LOGISTICS"
)

// AllSkills is the closed skill set, in display order.
var AllSkills = []SkillID{
	SkillMining,
	SkillWoodcutting,
	SkillCombat,
	SkillSmithing,
	SkillExploration,
	SkillLogistics,
}

type LocationKind string

const (
	LocationOreVein   LocationKind = "ORE_VEIN"
	LocationTreeStand LocationKind = "TREE_STAND"
	LocationMobCamp   LocationKind = "MOB_CAMP"
	LocationGuild     LocationKind = "GUILD"
	LocationForge     LocationKind = "FORGE"
	LocationWarehouse LocationKind = "WAREHOUSE"
)

// GatherSkillFor maps a gatherable location kind to the skill that works it.
func GatherSkillFor(kind LocationKind) (SkillID, bool) {
	switch kind {
	case LocationOreVein:
		return SkillMining, true
	case LocationTreeStand:
		return SkillWoodcutting, true
	}
	return "", false
}

// VisibilityTier is how much node detail the player may currently see.
type VisibilityTier string

const (
	VisibilityNone      VisibilityTier = "NONE"
	VisibilityMaterials VisibilityTier = "MATERIALS"
	VisibilityFull      VisibilityTier = "FULL"
)
