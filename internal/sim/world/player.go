package world

import (
	"math"

	"geopits.dev/internal/sim/board"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Inventory holds every token the player has ever collected, in first
// insertion order. Entries survive their cache leaving the window; a
// deposited token stays listed with collected=false so a later re-entry
// of its cache binds to the same instance.
type Inventory struct {
	byKey map[TokenKey]*Token
	order []*Token
}

func newInventory() *Inventory {
	return &Inventory{byKey: map[TokenKey]*Token{}}
}

func (inv *Inventory) Get(k TokenKey) *Token { return inv.byKey[k] }

func (inv *Inventory) Len() int { return len(inv.order) }

// insert adds t unless its key is already tracked. Re-inserting keeps the
// original position.
func (inv *Inventory) insert(t *Token) {
	k := t.Key()
	if _, ok := inv.byKey[k]; ok {
		return
	}
	inv.byKey[k] = t
	inv.order = append(inv.order, t)
}

// firstHeld returns the earliest inserted token that is still collected.
func (inv *Inventory) firstHeld() *Token {
	for _, t := range inv.order {
		if t.collected {
			return t
		}
	}
	return nil
}

// Held lists collected tokens in deposit order.
func (inv *Inventory) Held() []*Token {
	var out []*Token
	for _, t := range inv.order {
		if t.collected {
			out = append(out, t)
		}
	}
	return out
}

// PlayerState is owned by the World. points always equals the number of
// held inventory tokens.
type PlayerState struct {
	pos       Position
	cell      *board.Cell
	points    int
	inventory *Inventory
}

// PlayerView is a read-only copy of the player state.
type PlayerView struct {
	Position Position      `json:"position"`
	Cell     board.CellRef `json:"cell"`
	Points   int           `json:"points"`
	Held     []TokenKey    `json:"held"`
}
