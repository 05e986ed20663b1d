package world

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

// nodeVisibility returns how much of a node the player may currently see.
// Skill 0 shows nothing beyond the node type; a positive skill shows material
// identities up to skillLevel+2; an appraised node shows exact quantities.
// Appraisal is a one-way flag and never revoked.
func (s *WorldState) nodeVisibility(node *Node) protocol.VisibilityTier {
	if node == nil {
		return protocol.VisibilityNone
	}
	skill := s.nodeSkill(node)
	if s.Player.skillLevel(skill) <= 0 {
		return protocol.VisibilityNone
	}
	if s.appraised(node.ID) {
		return protocol.VisibilityFull
	}
	return protocol.VisibilityMaterials
}

// nodeSkill is the skill that works this node, taken from its reserves.
func (s *WorldState) nodeSkill(node *Node) protocol.SkillID {
	if len(node.Materials) == 0 {
		return ""
	}
	return node.Materials[0].RequiresSkill
}

// visibleMaterials filters a node's reserves for observation at the given
// tier: nothing at NONE, identities up to skillLevel+2 at MATERIALS, and the
// same set with exact remaining counts at FULL.
func (s *WorldState) visibleMaterials(node *Node, tier protocol.VisibilityTier) []protocol.MaterialObs {
	if tier == protocol.VisibilityNone {
		return nil
	}
	skill := s.Player.skillLevel(s.nodeSkill(node))
	var out []protocol.MaterialObs
	for i := range node.Materials {
		m := &node.Materials[i]
		if m.RequiredLevel > skill+2 {
			continue
		}
		obs := protocol.MaterialObs{
			Item:          m.Item,
			Tier:          m.Tier,
			RequiresSkill: m.RequiresSkill,
			RequiredLevel: m.RequiredLevel,
		}
		if tier == protocol.VisibilityFull {
			remaining := m.RemainingUnits
			obs.Remaining = &remaining
		}
		out = append(out, obs)
	}
	return out
}
