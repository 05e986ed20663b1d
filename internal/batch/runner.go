// Package batch runs many independent simulations across worker goroutines:
// one engine per worker, one world per seed, a policy choosing actions from
// observations. Results are small summary rows ready for the index database.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
	"github.com/daveslutzkin/grind-sub004/internal/sim/world"
)

// feedbackPolicy is implemented by policies that want to see each action's
// outcome, e.g. to mark exhausted areas.
type feedbackPolicy interface {
	Observe(obs protocol.PolicyObservation, log protocol.ActionLog)
}

type Config struct {
	Seeds      []string
	PolicyName string
	Workers    int

	// MaxActions bounds one run regardless of session time; a policy stuck
	// in free actions cannot spin forever.
	MaxActions int

	// StallWindow ends a run after this many consecutive failures.
	StallWindow int

	Tuning   tuning.Tuning
	Catalogs *catalogs.Catalogs
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxActions <= 0 {
		c.MaxActions = 5000
	}
	if c.StallWindow <= 0 {
		c.StallWindow = 25
	}
}

// Result summarizes one finished run.
type Result struct {
	RunID              string
	Seed               string
	Policy             string
	TicksUsed          int
	ActionsExecuted    int
	ActionsFailed      int
	TotalXP            int
	Reputation         int
	ContractsCompleted int
	LuckDelta          float64
	Stalled            bool
	FinalDigest        string
}

// Run executes every seed under the configured policy and returns results in
// seed order. Workers share nothing but the engine's immutable configuration.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	cfg.defaults()
	if _, ok := NewPolicy(cfg.PolicyName); !ok {
		return nil, fmt.Errorf("batch: unknown policy %q", cfg.PolicyName)
	}
	if cfg.Catalogs == nil {
		cfg.Catalogs = catalogs.Default()
	}

	eng := world.NewEngine(cfg.Tuning, cfg.Catalogs)

	jobs := make(chan int)
	results := make([]Result, len(cfg.Seeds))

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runOne(ctx, eng, cfg, cfg.Seeds[i])
			}
		}()
	}

	for i := range cfg.Seeds {
		if ctx.Err() != nil {
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

func runOne(ctx context.Context, eng *world.Engine, cfg Config, seed string) Result {
	policy, _ := NewPolicy(cfg.PolicyName)
	st := eng.CreateWorld(seed)

	res := Result{
		RunID:  fmt.Sprintf("%s-%s", cfg.PolicyName, seed),
		Seed:   seed,
		Policy: cfg.PolicyName,
	}

	consecutiveFailures := 0
	for res.ActionsExecuted < cfg.MaxActions {
		if ctx.Err() != nil {
			break
		}
		obs := eng.Observation(st)
		action, ok := policy.Next(obs)
		if !ok || action == nil {
			break
		}

		log := eng.ExecuteAction(st, action)
		res.ActionsExecuted++
		res.ContractsCompleted += len(log.ContractsCompleted)

		if fb, ok := policy.(feedbackPolicy); ok {
			fb.Observe(obs, log)
		}

		if log.Success {
			consecutiveFailures = 0
			if log.SkillGained != nil {
				res.TotalXP += log.SkillGained.XP
			}
		} else {
			res.ActionsFailed++
			consecutiveFailures++
			if log.FailureType == protocol.FailSessionEnded && st.Time.SessionRemainingTicks <= 0 {
				break
			}
			if consecutiveFailures >= cfg.StallWindow {
				res.Stalled = true
				break
			}
		}
		for _, done := range log.ContractsCompleted {
			if done.XPGranted != nil {
				res.TotalXP += done.XPGranted.XP
			}
		}
	}

	res.TicksUsed = st.Time.CurrentTick
	res.Reputation = st.Player.GuildReputation
	res.LuckDelta = st.Exploration.TotalLuckDelta
	res.FinalDigest = st.Digest()
	return res
}
