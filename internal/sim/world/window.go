package world

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"geopits.dev/internal/sim/board"
)

// refreshWindow moves the active window to center. Cells that left the
// Chebyshev radius are deactivated first (in (i, j) order), then cells that
// entered are evaluated in row-major order. Cells that stayed inside are
// untouched. It returns the sites activated by this call.
func (w *World) refreshWindow(center *board.Cell) []*CacheSite {
	r := w.cfg.NeighborhoodRadius
	c := center.Ref()

	var exits []board.CellRef
	w.window.Each(func(ref board.CellRef) {
		if ref.Chebyshev(c) > r {
			exits = append(exits, ref)
		}
	})
	sort.Slice(exits, func(a, b int) bool { return board.Less(exits[a], exits[b]) })
	for _, ref := range exits {
		w.exitNeighborhood(ref)
	}

	var entered []*CacheSite
	for _, cell := range w.board.CellsWithin(center, r) {
		if w.window.Has(cell.Ref()) {
			continue
		}
		if site := w.enterNeighborhood(cell); site != nil {
			entered = append(entered, site)
		}
	}
	return entered
}

// enterNeighborhood marks cell as inside the window and instantiates its
// cache when the hash selects it.
func (w *World) enterNeighborhood(cell *board.Cell) *CacheSite {
	w.window.Put(cell.Ref())
	site := MaybeCreate(cell, w.gen)
	if site == nil {
		return nil
	}
	rebound := site.bind(w.player.inventory)
	w.active[cell.Ref()] = site

	ref := cell.Ref()
	w.emit(Event{Kind: EventActivate, Cell: &ref, Tokens: site.RemainingCount()})
	if rebound > 0 {
		w.log.WithField("cell", ref.String()).WithField("rebound", rebound).Debug("cache re-entered with held tokens")
	}
	return site
}

func (w *World) exitNeighborhood(ref board.CellRef) {
	w.window.Remove(ref)
	site, ok := w.active[ref]
	if !ok {
		return
	}
	delete(w.active, ref)
	w.emit(Event{Kind: EventDeactivate, Cell: &ref, Tokens: site.RemainingCount()})
}

// clearWindow drops every active site without emitting events.
func (w *World) clearWindow() {
	w.window = mapset.New[board.CellRef]()
	w.active = map[board.CellRef]*CacheSite{}
}

func (w *World) activeSorted() []*CacheSite {
	out := make([]*CacheSite, 0, len(w.active))
	for _, s := range w.active {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool { return board.Less(out[a].cell.Ref(), out[b].cell.Ref()) })
	return out
}
