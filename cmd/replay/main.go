// Command replay rebuilds worlds from an event journal and checks that they
// emit the same events.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"geopits.dev/internal/persistence/indexdb"
	persistlog "geopits.dev/internal/persistence/log"
	"geopits.dev/internal/sim/tuning"
	"geopits.dev/internal/sim/world"
)

func main() {
	var (
		eventsDir  = flag.String("events", "", "events dir containing events-*.jsonl.zst")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.String("seed", "", "world seed (default: tuning seed)")
		indexPath  = flag.String("index", "", "sqlite index for per-session seeds (optional)")
		only       = flag.String("session", "", "replay a single session id (optional)")
	)
	flag.Parse()

	if *eventsDir == "" {
		fmt.Fprintln(os.Stderr, "missing -events")
		os.Exit(2)
	}

	tune, err := tuning.Load(*tuningPath)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	if err != nil {
		tune = tuning.Defaults()
	}

	var idx *indexdb.SQLiteIndex
	if *indexPath != "" {
		idx, err = indexdb.OpenSQLite(*indexPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open index:", err)
			os.Exit(1)
		}
		defer idx.Close()
	}

	files, err := listEventFiles(*eventsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", *eventsDir)
		os.Exit(1)
	}

	var all []world.Event
	for _, path := range files {
		evs, err := persistlog.ReadEvents(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read events:", err)
			os.Exit(1)
		}
		all = append(all, evs...)
	}

	order, bySession := groupBySession(all)
	failed := 0
	for _, sid := range order {
		if *only != "" && sid != *only {
			continue
		}
		cfg := tune.WorldConfig("", *seed)
		if idx != nil && sid != "" {
			rec, ok, err := idx.Session(context.Background(), sid)
			if err != nil {
				fmt.Fprintln(os.Stderr, "index:", err)
				os.Exit(1)
			}
			if ok {
				cfg.Seed = rec.Seed
			}
		}
		n, err := replaySession(cfg, bySession[sid])
		if err != nil {
			failed++
			fmt.Printf("replay FAIL session=%q after=%d events: %v\n", sid, n, err)
			continue
		}
		fmt.Printf("replay ok: session=%q events=%d\n", sid, n)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
