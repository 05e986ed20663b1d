// Package rng is the engine's only source of randomness: a seeded,
// counter-indexed stream for gameplay rolls (every draw audited) plus a keyed
// derivation for world generation that is independent of call order.
package rng

import (
	"hash/fnv"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

// Stream draws values from a fixed hash of (seed, counter). The counter is
// strictly increasing and never rewound, so replaying the same call sequence
// from the same seed is bit-identical.
type Stream struct {
	Seed    int64  `json:"seed"`
	Counter uint64 `json:"counter"`
}

func New(seed int64) *Stream {
	return &Stream{Seed: seed}
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func value(seed int64, counter uint64) float64 {
	v := mix64(uint64(seed) ^ mix64(counter))
	// Top 53 bits give a uniform float64 in [0,1).
	return float64(v>>11) / (1 << 53)
}

// Draw consumes one counter position and returns a value in [0,1).
func (s *Stream) Draw() float64 {
	v := value(s.Seed, s.Counter)
	s.Counter++
	return v
}

// Roll draws once and reports whether the draw landed under probability,
// returning the audit record for the caller's roll log.
func (s *Stream) Roll(probability float64, label string) (bool, protocol.RollRecord) {
	before := s.Counter
	v := s.Draw()
	ok := v < probability
	return ok, protocol.RollRecord{
		Label:         label,
		Probability:   probability,
		Result:        ok,
		CounterBefore: before,
	}
}

// Weighted is one candidate in a weighted selection.
type Weighted struct {
	Label  string
	Weight float64
}

// RollWeighted draws once and selects an entry proportional to relative
// weight. It emits one record per candidate, all sharing the same
// CounterBefore, with Probability set to the candidate's normalized share and
// Result marking the winner. Returns -1 when no candidate has positive weight.
func (s *Stream) RollWeighted(entries []Weighted) (int, []protocol.RollRecord) {
	var total float64
	for _, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	if total <= 0 {
		return -1, nil
	}

	before := s.Counter
	target := s.Draw() * total

	winner := -1
	var acc float64
	for i, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		acc += e.Weight
		if winner < 0 && target < acc {
			winner = i
		}
	}
	if winner < 0 {
		// Float accumulation can leave target a hair past the last bucket.
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Weight > 0 {
				winner = i
				break
			}
		}
	}

	records := make([]protocol.RollRecord, 0, len(entries))
	for i, e := range entries {
		records = append(records, protocol.RollRecord{
			Label:         e.Label,
			Probability:   e.Weight / total,
			Result:        i == winner,
			CounterBefore: before,
		})
	}
	return winner, records
}

// Derive returns a deterministic value in [0,1) for a (seed, entity, role)
// key. Generation code uses this instead of the stream so area contents do
// not depend on the order discovery happened to reach them.
func Derive(seed int64, entity, role string) float64 {
	v := DeriveUint(seed, entity, role)
	return float64(v>>11) / (1 << 53)
}

// DeriveUint is Derive without the float mapping, for integer picks.
func DeriveUint(seed int64, entity, role string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(entity))
	h.Write([]byte{'/'})
	h.Write([]byte(role))
	return mix64(uint64(seed) ^ h.Sum64())
}
