// Command sim runs one session: a seed, a policy or a scripted action list,
// and optionally a run log and final snapshot on the way out. Action logs are
// printed as JSON lines.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/daveslutzkin/grind-sub004/internal/batch"
	"github.com/daveslutzkin/grind-sub004/internal/persistence/runlog"
	"github.com/daveslutzkin/grind-sub004/internal/persistence/snapshot"
	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
	"github.com/daveslutzkin/grind-sub004/internal/sim/world"
)

func main() {
	var (
		seed       = flag.String("seed", "", "world seed text")
		policyName = flag.String("policy", "explorer", "policy driving the run (explorer|miner)")
		scriptPath = flag.String("script", "", "JSONL file of action envelopes; overrides -policy")
		configDir  = flag.String("configs", "", "catalog directory (built-in defaults when empty)")
		tuningPath = flag.String("tuning", "", "tuning YAML (built-in defaults when empty)")
		logPath    = flag.String("runlog", "", "write a run log to this path")
		snapPath   = flag.String("snapshot_out", "", "write the final snapshot to this path")
		maxActions = flag.Int("max_actions", 5000, "stop after this many actions")
		quiet      = flag.Bool("quiet", false, "suppress per-action output")
	)
	flag.Parse()

	if *seed == "" {
		fmt.Fprintln(os.Stderr, "missing -seed")
		os.Exit(2)
	}

	tun, cats, err := loadConfig(*tuningPath, *configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	eng := world.NewEngine(tun, cats)
	st := eng.CreateWorld(*seed)

	var lw *runlog.Writer
	if *logPath != "" {
		lw, err = runlog.Create(*logPath, runlog.Header{
			ProtocolVersion: protocol.Version,
			SeedText:        *seed,
			CatalogsDigest:  cats.Digest,
			StartDigest:     st.Digest(),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "create runlog:", err)
			os.Exit(1)
		}
		defer lw.Close()
	}

	next, observe, err := actionSource(*scriptPath, *policyName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	executed, failed := 0, 0
	for i := 0; i < *maxActions; i++ {
		action, ok := next(eng, st)
		if !ok {
			break
		}
		alog := eng.ExecuteAction(st, action)
		if observe != nil {
			observe(eng.Observation(st), alog)
		}
		executed++
		if !alog.Success {
			failed++
		}
		if lw != nil {
			if err := lw.Append(action, alog, st.Digest()); err != nil {
				fmt.Fprintln(os.Stderr, "runlog append:", err)
				os.Exit(1)
			}
		}
		if !*quiet {
			b, _ := json.Marshal(alog)
			fmt.Fprintln(out, string(b))
		}
		if !alog.Success && alog.FailureType == protocol.FailSessionEnded && st.Time.SessionRemainingTicks <= 0 {
			break
		}
	}

	if *snapPath != "" {
		if err := snapshot.Write(*snapPath, snapshot.Capture(st)); err != nil {
			fmt.Fprintln(os.Stderr, "write snapshot:", err)
			os.Exit(1)
		}
	}

	out.Flush()
	fmt.Fprintf(os.Stderr, "seed=%s actions=%d failed=%d tick=%d remaining=%d rep=%d luck=%+.3f digest=%s\n",
		*seed, executed, failed, st.Time.CurrentTick, st.Time.SessionRemainingTicks,
		st.Player.GuildReputation, st.Exploration.TotalLuckDelta, st.Digest())
}

func loadConfig(tuningPath, configDir string) (tuning.Tuning, *catalogs.Catalogs, error) {
	tun := tuning.Default()
	if tuningPath != "" {
		var err error
		tun, err = tuning.Load(tuningPath)
		if err != nil {
			return tun, nil, fmt.Errorf("load tuning: %w", err)
		}
	}
	cats := catalogs.Default()
	if configDir != "" {
		var err error
		cats, err = catalogs.Load(configDir)
		if err != nil {
			return tun, nil, fmt.Errorf("load catalogs: %w", err)
		}
	}
	return tun, cats, nil
}

type nextFunc func(eng *world.Engine, st *world.WorldState) (protocol.Action, bool)

type observeFunc func(obs protocol.PolicyObservation, log protocol.ActionLog)

func actionSource(scriptPath, policyName string) (nextFunc, observeFunc, error) {
	if scriptPath != "" {
		actions, err := readScript(scriptPath)
		if err != nil {
			return nil, nil, err
		}
		i := 0
		next := func(*world.Engine, *world.WorldState) (protocol.Action, bool) {
			if i >= len(actions) {
				return nil, false
			}
			a := actions[i]
			i++
			return a, true
		}
		return next, nil, nil
	}

	pol, ok := batch.NewPolicy(policyName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown policy %q", policyName)
	}
	next := func(eng *world.Engine, st *world.WorldState) (protocol.Action, bool) {
		return pol.Next(eng.Observation(st))
	}
	if fb, ok := pol.(interface {
		Observe(protocol.PolicyObservation, protocol.ActionLog)
	}); ok {
		return next, fb.Observe, nil
	}
	return next, nil, nil
}

func readScript(path string) ([]protocol.Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	var actions []protocol.Action
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		a, err := protocol.DecodeAction(line)
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", len(actions)+1, err)
		}
		actions = append(actions, a)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}
