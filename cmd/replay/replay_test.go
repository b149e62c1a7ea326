package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopits.dev/internal/logging"
	persistlog "geopits.dev/internal/persistence/log"
	"geopits.dev/internal/sim/world"
)

func replayConfig() world.WorldConfig {
	cfg := world.DefaultConfig()
	cfg.Seed = "replay"
	cfg.NeighborhoodRadius = 4
	cfg.SpawnProbability = 0.3
	return cfg
}

// play drives a world through moves, collects, deposits and a reset.
func play(t *testing.T, sink world.EventLogger) {
	t.Helper()
	cfg := replayConfig()
	cfg.ID = "world_replay"
	w, err := world.New(cfg, world.WithEventLogger(sink), world.WithLogger(logging.Discard()))
	require.NoError(t, err)

	collected := 0
	for n := 0; n < 30; n++ {
		dir := world.East
		if n%3 == 0 {
			dir = world.North
		}
		_, err := w.Step(dir)
		require.NoError(t, err)
		for _, s := range w.GetActiveCacheSites() {
			if s.RemainingCount() > 0 && collected < 6 {
				for _, tok := range s.Tokens() {
					if !tok.Collected() {
						require.True(t, w.CollectFrom(s, tok.LocalID()).OK())
						collected++
						break
					}
				}
			}
		}
		if n == 12 {
			sites := w.GetActiveCacheSites()
			require.NotEmpty(t, sites)
			require.True(t, w.DepositInto(sites[len(sites)-1]).OK())
		}
	}
	require.Greater(t, collected, 0)
	w.Reset()
	_, err = w.Step(world.South)
	require.NoError(t, err)
}

type sink struct{ evs []world.Event }

func (s *sink) WriteEvent(ev world.Event) error {
	s.evs = append(s.evs, ev)
	return nil
}

func TestReplaySessionMatches(t *testing.T) {
	rec := &sink{}
	play(t, rec)

	n, err := replaySession(replayConfig(), rec.evs)
	require.NoError(t, err)
	assert.Equal(t, len(rec.evs), n)
}

func TestReplaySessionDetectsTampering(t *testing.T) {
	rec := &sink{}
	play(t, rec)

	for i := range rec.evs {
		if rec.evs[i].Kind == world.EventCollect {
			rec.evs[i].Points += 5
			break
		}
	}
	_, err := replaySession(replayConfig(), rec.evs)
	require.Error(t, err)
}

func TestReplaySessionWrongSeed(t *testing.T) {
	rec := &sink{}
	play(t, rec)

	cfg := replayConfig()
	cfg.Seed = "other"
	_, err := replaySession(cfg, rec.evs)
	require.Error(t, err)
}

func TestReplaySessionRejectsBadStart(t *testing.T) {
	_, err := replaySession(replayConfig(), []world.Event{{Seq: 1, Kind: world.EventReset}})
	require.Error(t, err)

	n, err := replaySession(replayConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReplayFromJournalFiles(t *testing.T) {
	dir := t.TempDir()
	j := persistlog.NewEventLogger(dir)
	play(t, j)
	require.NoError(t, j.Close())

	files, err := listEventFiles(dir + "/events")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var all []world.Event
	for _, f := range files {
		evs, err := persistlog.ReadEvents(f)
		require.NoError(t, err)
		all = append(all, evs...)
	}
	order, by := groupBySession(all)
	require.Equal(t, []string{""}, order)

	n, err := replaySession(replayConfig(), by[""])
	require.NoError(t, err)
	assert.Equal(t, len(all), n)
}

func TestGroupBySessionKeepsOrder(t *testing.T) {
	evs := []world.Event{
		{Seq: 1, SessionID: "b"},
		{Seq: 1, SessionID: "a"},
		{Seq: 2, SessionID: "b"},
		{Seq: 2, SessionID: "a"},
	}
	order, by := groupBySession(evs)
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Len(t, by["a"], 2)
	assert.Equal(t, uint64(2), by["b"][1].Seq)
}
