// Command watch runs one policy-driven session slowly and serves it to
// websocket watchers, one frame per action. Loopback-only, meant for a local
// viewer during development.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/daveslutzkin/grind-sub004/internal/batch"
	"github.com/daveslutzkin/grind-sub004/internal/protocol"
	"github.com/daveslutzkin/grind-sub004/internal/sim/catalogs"
	"github.com/daveslutzkin/grind-sub004/internal/sim/tuning"
	"github.com/daveslutzkin/grind-sub004/internal/sim/world"
	"github.com/daveslutzkin/grind-sub004/internal/transport/watch"
	"github.com/daveslutzkin/grind-sub004/internal/watchproto"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8090", "listen address")
		seed       = flag.String("seed", "", "world seed text")
		policyName = flag.String("policy", "explorer", "policy driving the run")
		pace       = flag.Duration("pace", 250*time.Millisecond, "delay between actions")
		configDir  = flag.String("configs", "", "catalog directory (built-in defaults when empty)")
		tuningPath = flag.String("tuning", "", "tuning YAML (built-in defaults when empty)")
		maxActions = flag.Int("max_actions", 5000, "stop after this many actions")
	)
	flag.Parse()

	if *seed == "" {
		fmt.Fprintln(os.Stderr, "missing -seed")
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

	pol, ok := batch.NewPolicy(*policyName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown policy %q\n", *policyName)
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	eng := world.NewEngine(tun, cats)
	st := eng.CreateWorld(*seed)

	var tick atomic.Int64
	srv := watch.NewServer(logger, func() watchproto.BootstrapResponse {
		return watchproto.BootstrapResponse{
			ProtocolVersion: watchproto.Version,
			SeedText:        *seed,
			CatalogsDigest:  cats.Digest,
			Policy:          *policyName,
			CurrentTick:     int(tick.Load()),
		}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/watch/v1/bootstrap", srv.BootstrapHandler())
	mux.HandleFunc("/watch/v1/ws", srv.WSHandler())

	go func() {
		logger.Printf("watch: listening on %s", *addr)
		if err := http.ListenAndServe(*addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("watch: listen: %v", err)
		}
	}()

	fb, _ := pol.(interface {
		Observe(protocol.PolicyObservation, protocol.ActionLog)
	})

	var seq uint64
	for i := 0; i < *maxActions; i++ {
		obs := eng.Observation(st)
		action, ok := pol.Next(obs)
		if !ok {
			break
		}
		alog := eng.ExecuteAction(st, action)
		if fb != nil {
			fb.Observe(eng.Observation(st), alog)
		}
		tick.Store(int64(st.Time.CurrentTick))

		seq++
		srv.Broadcast(watchproto.Frame{
			Type:                  "ACTION",
			Seq:                   seq,
			Log:                   alog,
			DigestAfter:           st.Digest(),
			CurrentTick:           st.Time.CurrentTick,
			SessionRemainingTicks: st.Time.SessionRemainingTicks,
			GuildReputation:       st.Player.GuildReputation,
			TotalLuckDelta:        st.Exploration.TotalLuckDelta,
		})

		if !alog.Success && alog.FailureType == protocol.FailSessionEnded && st.Time.SessionRemainingTicks <= 0 {
			break
		}
		time.Sleep(*pace)
	}

	logger.Printf("watch: run finished at tick %d, digest %s", st.Time.CurrentTick, st.Digest())
	srv.Shutdown()
}
