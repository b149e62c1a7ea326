package world

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"geopits.dev/internal/sim/board"
)

// World is a single-threaded deterministic cache world for one player.
// It takes no locks; callers serialize access.
type World struct {
	cfg   WorldConfig
	gen   WorldGen
	board *board.Board

	player  PlayerState
	history []Position

	// Cells currently inside the window, with or without a cache.
	window mapset.Set[board.CellRef]
	active map[board.CellRef]*CacheSite

	seq    uint64
	events EventLogger
	log    logrus.FieldLogger
}

type Option func(*World)

// WithEventLogger sets the sink for emitted events (may be nil).
func WithEventLogger(l EventLogger) Option {
	return func(w *World) { w.events = l }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// New builds a world and activates the window around the start position.
func New(cfg WorldConfig, opts ...Option) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b, err := board.New(cfg.GridStep)
	if err != nil {
		return nil, fmt.Errorf("world %s: %w", cfg.ID, err)
	}
	w := &World{
		cfg:    cfg,
		gen:    cfg.Gen(),
		board:  b,
		window: mapset.New[board.CellRef](),
		active: map[board.CellRef]*CacheSite{},
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(w)
	}
	w.log = w.log.WithField("world", cfg.ID)
	w.player.inventory = newInventory()
	if _, err := w.OnPlayerMove(*cfg.Start); err != nil {
		return nil, fmt.Errorf("world %s: start: %w", cfg.ID, err)
	}
	return w, nil
}

func (w *World) ID() string          { return w.cfg.ID }
func (w *World) Config() WorldConfig { return w.cfg }
func (w *World) Board() *board.Board { return w.board }
func (w *World) Seq() uint64         { return w.seq }

// OnPlayerMove moves the player to pos and updates the active window. It
// returns the full active set, ordered by (i, j).
func (w *World) OnPlayerMove(pos Position) ([]*CacheSite, error) {
	cell, err := w.board.ToCell(pos.X, pos.Y)
	if err != nil {
		return nil, fmt.Errorf("move to (%v, %v): %w", pos.X, pos.Y, err)
	}
	prev := w.player.cell
	w.player.pos = pos
	w.player.cell = cell
	w.appendHistory(pos)
	w.emit(Event{Kind: EventMove})

	if prev != cell {
		entered := w.refreshWindow(cell)
		if len(entered) > 0 {
			w.log.WithField("cell", cell.String()).WithField("activated", len(entered)).Debug("window moved")
		}
	}
	return w.activeSorted(), nil
}

// Step moves the player one MoveStep in dir.
func (w *World) Step(dir Direction) ([]*CacheSite, error) {
	dx, dy := dir.Delta()
	next := Position{
		X: w.player.pos.X + float64(dx)*w.cfg.MoveStep,
		Y: w.player.pos.Y + float64(dy)*w.cfg.MoveStep,
	}
	return w.OnPlayerMove(next)
}

// Reset returns every held token, forgets the trail and rebuilds the window
// at the current position. Inventory identities are kept so caches stay
// consistent with tokens returned while their cell was outside the window.
func (w *World) Reset() []*CacheSite {
	returned := w.returnAll()
	w.history = w.history[:0]
	w.clearWindow()
	w.emit(Event{Kind: EventReset, Tokens: returned})
	w.appendHistory(w.player.pos)
	w.refreshWindow(w.player.cell)
	w.log.WithField("returned", returned).Info("world reset")
	return w.activeSorted()
}

func (w *World) appendHistory(p Position) {
	w.history = append(w.history, p)
	if over := len(w.history) - w.cfg.HistoryLimit; over > 0 {
		w.history = append(w.history[:0], w.history[over:]...)
	}
}

func (w *World) emit(ev Event) {
	w.seq++
	if w.events == nil {
		return
	}
	ev.Seq = w.seq
	ev.WorldID = w.cfg.ID
	ev.Points = w.player.points
	ev.Pos = w.player.pos
	if err := w.events.WriteEvent(ev); err != nil {
		w.log.WithError(err).WithField("kind", ev.Kind).Warn("event log write failed")
	}
}
