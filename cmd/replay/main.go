// Command replay verifies a run log: it rebuilds the world from the header's
// seed, re-executes every recorded action, and compares the digest after each
// step against what was recorded. Any divergence is reported and the exit
// status is non-zero.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/daveslutzkin/grind-sub004/internal/persistence/runlog"
	"github.com/daveslutzkin/grind-sub004/internal/persistence/snapshot"
	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
	"github.com/daveslutzkin/grind-sub004/internal/sim/world"
)

func main() {
	var (
		logPath    = flag.String("runlog", "", "run log to verify")
		snapPath   = flag.String("snapshot", "", "snapshot to inspect instead of a run log")
		configDir  = flag.String("configs", "", "catalog directory (built-in defaults when empty)")
		tuningPath = flag.String("tuning", "", "tuning YAML (built-in defaults when empty)")
		verbose    = flag.Bool("v", false, "print every replayed action")
	)
	flag.Parse()

	if *snapPath != "" {
		describeSnapshot(*snapPath)
		return
	}
	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "missing -runlog")
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

	r, err := runlog.Open(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open runlog:", err)
		os.Exit(1)
	}
	defer r.Close()

	hdr := r.Header()
	if hdr.ProtocolVersion != protocol.Version {
		fmt.Fprintf(os.Stderr, "protocol version mismatch: log %s, binary %s\n", hdr.ProtocolVersion, protocol.Version)
		os.Exit(1)
	}
	if hdr.CatalogsDigest != cats.Digest {
		fmt.Fprintf(os.Stderr, "catalogs digest mismatch: log %s, loaded %s\n", hdr.CatalogsDigest, cats.Digest)
		os.Exit(1)
	}

	eng := world.NewEngine(tun, cats)
	st := eng.CreateWorld(hdr.SeedText)
	if got := st.Digest(); got != hdr.StartDigest {
		fmt.Fprintf(os.Stderr, "start digest mismatch: log %s, rebuilt %s\n", hdr.StartDigest, got)
		os.Exit(1)
	}

	step := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "record %d: %v\n", step, err)
			os.Exit(1)
		}
		action, err := rec.DecodeAction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "record %d: decode action: %v\n", step, err)
			os.Exit(1)
		}

		alog := eng.ExecuteAction(st, action)
		if got := st.Digest(); got != rec.DigestAfter {
			fmt.Fprintf(os.Stderr, "divergence at record %d (%s): recorded %s, replayed %s\n",
				step, action.Type(), rec.DigestAfter, got)
			os.Exit(1)
		}
		if alog.Success != rec.Log.Success || alog.FailureType != rec.Log.FailureType {
			fmt.Fprintf(os.Stderr, "divergence at record %d (%s): recorded outcome %v/%s, replayed %v/%s\n",
				step, action.Type(), rec.Log.Success, rec.Log.FailureType, alog.Success, alog.FailureType)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("%4d %-18s success=%v tick=%d\n", step, action.Type(), alog.Success, st.Time.CurrentTick)
		}
		step++
	}

	fmt.Printf("verified %d records, final tick %d, digest %s\n", step, st.Time.CurrentTick, st.Digest())
}

func describeSnapshot(path string) {
	snap, err := snapshot.Read(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d seed=%s tick=%d areas=%d digest=%s\n",
		snap.Header.Version, snap.Header.Seed, snap.Header.Tick, len(snap.Areas), snap.Digest)
	if _, err := snap.Restore(); err != nil {
		fmt.Fprintln(os.Stderr, "restore check failed:", err)
		os.Exit(1)
	}
	fmt.Println("restore check ok")
}
