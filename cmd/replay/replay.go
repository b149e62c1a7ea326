package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"geopits.dev/internal/logging"
	"geopits.dev/internal/sim/board"
	"geopits.dev/internal/sim/world"
)

func listEventFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "events-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// groupBySession splits an interleaved journal into per-session streams,
// keeping journal order inside each stream. Session order follows first
// appearance.
func groupBySession(events []world.Event) (order []string, bySession map[string][]world.Event) {
	bySession = map[string][]world.Event{}
	for _, ev := range events {
		if _, ok := bySession[ev.SessionID]; !ok {
			order = append(order, ev.SessionID)
		}
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}
	return order, bySession
}

type recorder struct{ got []world.Event }

func (r *recorder) WriteEvent(ev world.Event) error {
	r.got = append(r.got, ev)
	return nil
}

// replaySession rebuilds a world from cfg and drives it with the player
// actions in events (MOVE, COLLECT, DEPOSIT, RESET). Every event the world
// emits must match the journal. cfg.ID and cfg.Start are taken from the
// journal's first MOVE.
func replaySession(cfg world.WorldConfig, events []world.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	first := events[0]
	if first.Kind != world.EventMove {
		return 0, fmt.Errorf("journal starts with %s at seq %d, want %s", first.Kind, first.Seq, world.EventMove)
	}
	start := first.Pos
	cfg.ID = first.WorldID
	cfg.Start = &start

	rec := &recorder{}
	w, err := world.New(cfg, world.WithEventLogger(rec), world.WithLogger(logging.Discard()))
	if err != nil {
		return 0, err
	}

	for i, want := range events {
		if i >= len(rec.got) {
			if err := drive(w, want); err != nil {
				return i, err
			}
			if i >= len(rec.got) {
				return i, fmt.Errorf("seq %d: %s produced no event", want.Seq, want.Kind)
			}
		}
		if err := sameEvent(rec.got[i], want); err != nil {
			return i, err
		}
	}
	return len(events), nil
}

func drive(w *world.World, ev world.Event) error {
	switch ev.Kind {
	case world.EventMove:
		_, err := w.OnPlayerMove(ev.Pos)
		return err
	case world.EventCollect:
		if ev.Cell == nil || ev.LocalID == nil {
			return fmt.Errorf("seq %d: COLLECT without cell or local_id", ev.Seq)
		}
		if r := w.OnCollectRequest(*ev.Cell, *ev.LocalID); !r.OK() {
			return fmt.Errorf("seq %d: collect %s#%d: %s", ev.Seq, ev.Cell, *ev.LocalID, r.Code)
		}
	case world.EventDeposit:
		// Any live cache accepts a deposit; the journal records the origin.
		sites := w.GetActiveCacheSites()
		if len(sites) == 0 {
			return fmt.Errorf("seq %d: deposit with no active cache", ev.Seq)
		}
		if r := w.DepositInto(sites[0]); !r.OK() {
			return fmt.Errorf("seq %d: deposit: %s", ev.Seq, r.Code)
		}
	case world.EventReset:
		w.Reset()
	default:
		return fmt.Errorf("seq %d: unexpected %s", ev.Seq, ev.Kind)
	}
	return nil
}

func sameEvent(got, want world.Event) error {
	got.SessionID, want.SessionID = "", ""
	switch {
	case got.Seq != want.Seq || got.Kind != want.Kind:
		return fmt.Errorf("event mismatch: got seq=%d %s want seq=%d %s", got.Seq, got.Kind, want.Seq, want.Kind)
	case !sameCell(got.Cell, want.Cell) || !sameInt(got.LocalID, want.LocalID):
		return fmt.Errorf("seq %d %s: target mismatch", want.Seq, want.Kind)
	case got.Tokens != want.Tokens || got.Points != want.Points:
		return fmt.Errorf("seq %d %s: got tokens=%d points=%d want tokens=%d points=%d",
			want.Seq, want.Kind, got.Tokens, got.Points, want.Tokens, want.Points)
	case got.Pos != want.Pos:
		return fmt.Errorf("seq %d %s: position mismatch", want.Seq, want.Kind)
	}
	return nil
}

func sameCell(a, b *board.CellRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
