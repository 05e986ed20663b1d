// Command batch sweeps many seeds under one policy and records the results in
// a sqlite index, then prints a summary of the sweep.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/daveslutzkin/grind-sub004/internal/batch"
	"github.com/daveslutzkin/grind-sub004/internal/persistence/indexdb"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
)

func main() {
	var (
		seedsFlag  = flag.String("seeds", "", "comma separated seed list")
		seedPrefix = flag.String("seed_prefix", "", "generate seeds <prefix>-0..n-1 instead of -seeds")
		seedCount  = flag.Int("n", 0, "number of generated seeds when using -seed_prefix")
		policyName = flag.String("policy", "explorer", "policy driving every run")
		workers    = flag.Int("workers", 4, "concurrent runs")
		dbPath     = flag.String("db", "", "sqlite index to record results in (optional)")
		configDir  = flag.String("configs", "", "catalog directory (built-in defaults when empty)")
		tuningPath = flag.String("tuning", "", "tuning YAML (built-in defaults when empty)")
	)
	flag.Parse()

	seeds := collectSeeds(*seedsFlag, *seedPrefix, *seedCount)
	if len(seeds) == 0 {
		fmt.Fprintln(os.Stderr, "no seeds: pass -seeds or -seed_prefix with -n")
		os.Exit(2)
	}

	tun := tuning.Default()
	if *tuningPath != "" {
		var err error
		tun, err = tuning.Load(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	cats := catalogs.Default()
	if *configDir != "" {
		var err error
		cats, err = catalogs.Load(*configDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load catalogs:", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := batch.Run(ctx, batch.Config{
		Seeds:      seeds,
		PolicyName: *policyName,
		Workers:    *workers,
		Tuning:     tun,
		Catalogs:   cats,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "batch:", err)
		os.Exit(1)
	}

	for _, r := range results {
		fmt.Printf("seed=%s ticks=%d actions=%d failed=%d xp=%d rep=%d contracts=%d luck=%+.3f stalled=%v\n",
			r.Seed, r.TicksUsed, r.ActionsExecuted, r.ActionsFailed,
			r.TotalXP, r.Reputation, r.ContractsCompleted, r.LuckDelta, r.Stalled)
	}

	if *dbPath == "" {
		return
	}

	idx, err := indexdb.OpenSQLite(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer idx.Close()

	if err := idx.SetMeta(ctx, "catalogs_digest", cats.Digest); err != nil {
		fmt.Fprintln(os.Stderr, "set meta:", err)
		os.Exit(1)
	}
	for _, r := range results {
		if err := idx.InsertRun(ctx, indexdb.RunRow{
			RunID:              r.RunID,
			Seed:               r.Seed,
			Policy:             r.Policy,
			TicksUsed:          r.TicksUsed,
			ActionsExecuted:    r.ActionsExecuted,
			ActionsFailed:      r.ActionsFailed,
			TotalXP:            r.TotalXP,
			Reputation:         r.Reputation,
			ContractsCompleted: r.ContractsCompleted,
			LuckDelta:          r.LuckDelta,
			Stalled:            r.Stalled,
			FinalDigest:        r.FinalDigest,
		}); err != nil {
			fmt.Fprintln(os.Stderr, "insert run:", err)
			os.Exit(1)
		}
	}

	sum, err := idx.Summarize(ctx, *policyName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "summarize:", err)
		os.Exit(1)
	}
	fmt.Printf("policy=%s runs=%d mean_xp=%.1f mean_rep=%.1f contracts=%d stalled=%d\n",
		*policyName, sum.Runs, sum.MeanXP, sum.MeanReputation, sum.ContractsCompleted, sum.Stalled)
}

func collectSeeds(seedsFlag, prefix string, n int) []string {
	if seedsFlag != "" {
		var out []string
		for _, s := range strings.Split(seedsFlag, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if prefix == "" || n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%s-%d", prefix, i))
	}
	return out
}
