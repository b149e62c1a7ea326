package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geopits.dev/internal/sim/board"
)

func scenarioConfig() WorldConfig {
	return WorldConfig{
		ID:                 "test",
		Seed:               "seed",
		GridStep:           1e-4,
		NeighborhoodRadius: 8,
		SpawnProbability:   0.1,
		MaxTokensPerCache:  10,
		Start:              &Position{},
	}
}

func newTestWorld(t *testing.T, opts ...Option) *World {
	t.Helper()
	w, err := New(scenarioConfig(), opts...)
	require.NoError(t, err)
	return w
}

// requireWindow asserts that the active set is exactly the cache-bearing
// cells within the closed radius around the player.
func requireWindow(t *testing.T, w *World) {
	t.Helper()
	r := w.cfg.NeighborhoodRadius
	center := w.player.cell.Ref()
	for ref := range w.active {
		require.LessOrEqual(t, ref.Chebyshev(center), r, "active cache %s outside window", ref)
	}
	for i := center.I - r; i <= center.I+r; i++ {
		for j := center.J - r; j <= center.J+r; j++ {
			_, ok := w.active[board.CellRef{I: i, J: j}]
			require.Equal(t, w.gen.Spawns(i, j), ok, "cell %d:%d", i, j)
		}
	}
}

// requireLedger asserts point conservation and single token identity.
func requireLedger(t *testing.T, w *World) {
	t.Helper()
	held := w.player.inventory.Held()
	require.Equal(t, len(held), w.player.points)
	require.GreaterOrEqual(t, w.player.points, 0)
	for _, s := range w.active {
		for _, tok := range s.tokens {
			if inv := w.player.inventory.Get(tok.Key()); inv != nil {
				require.Same(t, inv, tok, "token %s has two instances", tok.Key())
			} else {
				require.False(t, tok.collected, "collected token %s missing from inventory", tok.Key())
			}
		}
	}
}

// sitesWithTokens returns active sites holding at least n tokens.
func sitesWithTokens(w *World, n int) []*CacheSite {
	var out []*CacheSite
	for _, s := range w.GetActiveCacheSites() {
		if s.Total() >= n {
			out = append(out, s)
		}
	}
	return out
}

type recorder struct {
	events []Event
}

func (r *recorder) WriteEvent(ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}
