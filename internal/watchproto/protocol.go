// Package watchproto defines the read-only wire protocol for watching a run
// live: a bootstrap document, a subscribe handshake, and one frame per
// executed action.
package watchproto

import "github.com/daveslutzkin/grind-sub004/internal/protocol"

const Version = "1.0"

// BootstrapResponse describes the run a watcher is about to subscribe to.
type BootstrapResponse struct {
	ProtocolVersion string `json:"protocol_version"`
	SeedText        string `json:"seed_text"`
	CatalogsDigest  string `json:"catalogs_digest"`
	Policy          string `json:"policy,omitempty"`
	CurrentTick     int    `json:"current_tick"`
}

// SubscribeMsg is the first message a watcher must send after connecting.
type SubscribeMsg struct {
	Type            string `json:"type"` // "SUBSCRIBE"
	ProtocolVersion string `json:"protocol_version"`
}

// Frame is one executed action as broadcast to watchers.
type Frame struct {
	Type string `json:"type"` // "ACTION"

	Seq         uint64             `json:"seq"`
	Log         protocol.ActionLog `json:"log"`
	DigestAfter string             `json:"digest_after"`

	// A small live scoreboard, so simple dashboards need no state.
	CurrentTick           int     `json:"current_tick"`
	SessionRemainingTicks int     `json:"session_remaining_ticks"`
	GuildReputation       int     `json:"guild_reputation"`
	TotalLuckDelta        float64 `json:"total_luck_delta"`
}
