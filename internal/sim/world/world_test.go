package world

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopits.dev/internal/sim/board"
)

func TestNew_Defaults(t *testing.T) {
	w, err := New(DefaultConfig())
	require.NoError(t, err)
	cfg := w.Config()
	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, DefaultGridStep, cfg.GridStep)
	assert.Equal(t, DefaultNeighborhoodRadius, cfg.NeighborhoodRadius)
	assert.Equal(t, DefaultSpawnProbability, cfg.SpawnProbability)
	assert.Equal(t, DefaultMaxTokensPerCache, cfg.MaxTokensPerCache)
	assert.Equal(t, cfg.GridStep, cfg.MoveStep)
	assert.Equal(t, board.CellRef{I: 369995, J: -1220533}, w.Player().Cell)
}

func TestNew_ZeroParametersAreHonoured(t *testing.T) {
	w, err := New(WorldConfig{})
	require.NoError(t, err)
	cfg := w.Config()
	assert.Equal(t, 0, cfg.NeighborhoodRadius)
	assert.Equal(t, 0.0, cfg.SpawnProbability)
	assert.Equal(t, 0, cfg.MaxTokensPerCache)
	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, DefaultGridStep, cfg.GridStep)

	// R=0: the window is the player's cell only.
	assert.Equal(t, 1, w.window.Size())
	assert.True(t, w.window.Has(w.player.cell.Ref()))

	// p=0: nothing ever spawns.
	assert.Empty(t, w.GetActiveCacheSites())
	for i := 0; i < 20; i++ {
		_, err := w.Step(East)
		require.NoError(t, err)
		assert.Empty(t, w.GetActiveCacheSites())
		assert.Equal(t, 1, w.window.Size())
	}
}

func TestNew_RadiusZeroKeepsOneCell(t *testing.T) {
	cfg := scenarioConfig()
	cfg.NeighborhoodRadius = 0
	cfg.SpawnProbability = 0.9
	w, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		_, err := w.Step(North)
		require.NoError(t, err)
		require.Equal(t, 1, w.window.Size())
		for _, s := range w.GetActiveCacheSites() {
			assert.Equal(t, w.Player().Cell, s.Cell().Ref())
		}
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cases := map[string]WorldConfig{
		"negative step":    {GridStep: -1},
		"probability one":  {SpawnProbability: 1},
		"negative prob":    {SpawnProbability: -0.2},
		"negative radius":  {NeighborhoodRadius: -1},
		"negative tokens":  {MaxTokensPerCache: -3},
		"non-finite start": {Start: &Position{X: nan()}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestWorld_Deterministic(t *testing.T) {
	run := func() []byte {
		w := newTestWorld(t)
		for _, d := range []Direction{East, East, North, West, South, South, East} {
			_, err := w.Step(d)
			require.NoError(t, err)
		}
		for _, s := range sitesWithTokens(w, 1) {
			w.CollectFrom(s, 0)
		}
		b, err := json.Marshal(w.BuildState("s"))
		require.NoError(t, err)
		return b
	}
	assert.JSONEq(t, string(run()), string(run()))
}

func TestWorld_SeedChangesWorld(t *testing.T) {
	a := newTestWorld(t)
	cfg := scenarioConfig()
	cfg.Seed = "other"
	b, err := New(cfg)
	require.NoError(t, err)

	ca, err := json.Marshal(a.BuildState("").Caches)
	require.NoError(t, err)
	cb, err := json.Marshal(b.BuildState("").Caches)
	require.NoError(t, err)
	assert.NotEqual(t, string(ca), string(cb))
}

func TestMaybeCreate_Idempotent(t *testing.T) {
	b, err := board.New(1e-4)
	require.NoError(t, err)
	gen := scenarioConfig().Gen()
	for i := -8; i < 8; i++ {
		for j := -8; j < 8; j++ {
			c := b.CellAt(i, j)
			x, y := MaybeCreate(c, gen), MaybeCreate(c, gen)
			require.Equal(t, x == nil, y == nil)
			if x == nil {
				continue
			}
			require.Equal(t, x.Total(), y.Total())
			for id, tok := range x.Tokens() {
				assert.Equal(t, id, tok.LocalID())
				assert.False(t, tok.Collected())
				assert.Equal(t, TokenKey{I: i, J: j, LocalID: id}, tok.Key())
			}
		}
	}
}

func TestTokenKey_String(t *testing.T) {
	assert.Equal(t, "369995:-1220533#4", TokenKey{I: 369995, J: -1220533, LocalID: 4}.String())
}

func TestHistory_Limited(t *testing.T) {
	cfg := scenarioConfig()
	cfg.HistoryLimit = 3
	w, err := New(cfg)
	require.NoError(t, err)
	for k := 0; k < 5; k++ {
		_, err := w.Step(North)
		require.NoError(t, err)
	}
	h := w.History()
	require.Len(t, h, 3)
	assert.Equal(t, w.Player().Position, h[2])
	assert.InDelta(t, 3e-4, h[0].X, 1e-12)
}

func TestEvents_Emitted(t *testing.T) {
	rec := &recorder{}
	w := newTestWorld(t, WithEventLogger(rec))
	require.NotEmpty(t, rec.events)
	assert.Equal(t, EventMove, rec.events[0].Kind)
	activations := 0
	for _, ev := range rec.events {
		if ev.Kind == EventActivate {
			activations++
		}
		assert.Equal(t, "test", ev.WorldID)
	}
	assert.Equal(t, len(w.GetActiveCacheSites()), activations)

	sites := sitesWithTokens(w, 1)
	require.NotEmpty(t, sites)
	w.CollectFrom(sites[0], 0)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventCollect, last.Kind)
	assert.Equal(t, 1, last.Points)
	require.NotNil(t, last.LocalID)
	assert.Equal(t, 0, *last.LocalID)
	assert.Equal(t, w.Seq(), last.Seq)

	for k := 1; k < len(rec.events); k++ {
		assert.Equal(t, rec.events[k-1].Seq+1, rec.events[k].Seq)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"n": North, "S": South, "east": East, " w ": West, "up": North} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("x")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestBuildState(t *testing.T) {
	w := newTestWorld(t)
	sites := sitesWithTokens(w, 1)
	require.NotEmpty(t, sites)
	w.CollectFrom(sites[0], 0)

	st := w.BuildState("sess")
	assert.Equal(t, "STATE", st.Type)
	assert.Equal(t, "sess", st.SessionID)
	assert.Equal(t, 1, st.Player.Points)
	assert.Equal(t, []string{sites[0].Token(0).Key().String()}, st.Player.Held)
	require.Len(t, st.Caches, len(w.GetActiveCacheSites()))
	for _, c := range st.Caches {
		assert.Len(t, c.Tokens, c.Total)
	}
}
