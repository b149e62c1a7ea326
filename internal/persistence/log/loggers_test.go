package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopits.dev/internal/sim/board"
	"geopits.dev/internal/sim/world"
)

func TestEventLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)
	l.w.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	cell := board.CellRef{I: 3, J: -4}
	id := 2
	require.NoError(t, l.WriteEvent(world.Event{Seq: 1, Kind: world.EventMove, WorldID: "w"}))
	require.NoError(t, l.WriteEvent(world.Event{Seq: 2, Kind: world.EventCollect, WorldID: "w", Cell: &cell, LocalID: &id, Points: 1}))
	require.NoError(t, l.Close())

	got, err := ReadEvents(filepath.Join(dir, "events", "events-2026-03-04-05.jsonl.zst"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, world.EventCollect, got[1].Kind)
	require.NotNil(t, got[1].Cell)
	assert.Equal(t, cell, *got[1].Cell)
	assert.Equal(t, 2, *got[1].LocalID)
	assert.Nil(t, got[0].Cell)
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "events")
	now := time.Date(2026, 1, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	require.NoError(t, w.Write(world.Event{Seq: 1}))
	now = now.Add(2 * time.Minute)
	require.NoError(t, w.Write(world.Event{Seq: 2}))
	require.NoError(t, w.Close())

	for _, name := range []string{"events-2026-01-01-10.jsonl.zst", "events-2026-01-01-11.jsonl.zst"} {
		evs, err := ReadEvents(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Len(t, evs, 1)
	}
}

func TestEventLogger_WorldJournal(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)
	cfg := world.DefaultConfig()
	cfg.ID = "j"
	cfg.Start = &world.Position{}
	w, err := world.New(cfg, world.WithEventLogger(l))
	require.NoError(t, err)
	_, err = w.Step(world.East)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "events", "events-*.jsonl.zst"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	var total int
	for _, f := range files {
		evs, err := ReadEvents(f)
		require.NoError(t, err)
		total += len(evs)
	}
	assert.Equal(t, int(w.Seq()), total)
}

type failing struct{ n int }

func (f *failing) WriteEvent(world.Event) error {
	f.n++
	return errors.New("sink down")
}

type counting struct{ n int }

func (c *counting) WriteEvent(world.Event) error {
	c.n++
	return nil
}

func TestMultiLogger_AttemptsAll(t *testing.T) {
	bad, good := &failing{}, &counting{}
	m := MultiLogger{bad, nil, good}
	err := m.WriteEvent(world.Event{Kind: world.EventMove})
	require.Error(t, err)
	assert.Equal(t, 1, bad.n)
	assert.Equal(t, 1, good.n)

	assert.NoError(t, MultiLogger{good}.WriteEvent(world.Event{}))
}

func TestReadEvents_Missing(t *testing.T) {
	_, err := ReadEvents(filepath.Join(t.TempDir(), "nope.jsonl.zst"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
