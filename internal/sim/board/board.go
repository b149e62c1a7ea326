// Package board discretizes the continuous plane into grid cells and keeps
// exactly one canonical *Cell per (i, j).
package board

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CellRef is the plain value form of a cell index, used as a map key and on
// the wire.
type CellRef struct {
	I int `json:"i"`
	J int `json:"j"`
}

func (r CellRef) String() string { return fmt.Sprintf("%d:%d", r.I, r.J) }

// Cell is a canonical grid square. Compare cells by pointer: a Board never
// hands out two *Cell values for the same (i, j).
type Cell struct {
	ref CellRef
}

func (c *Cell) I() int         { return c.ref.I }
func (c *Cell) J() int         { return c.ref.J }
func (c *Cell) Ref() CellRef   { return c.ref }
func (c *Cell) String() string { return c.ref.String() }

// Rect is an axis-aligned box in continuous coordinates.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Board owns the registry. It is not safe for concurrent use; the owning
// world serializes access.
type Board struct {
	step  float64
	cells map[CellRef]*Cell
}

func New(step float64) (*Board, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("board: grid step must be positive and finite, got %v", step)
	}
	return &Board{
		step:  step,
		cells: map[CellRef]*Cell{},
	}, nil
}

func (b *Board) Step() float64 { return b.step }

// Len reports how many distinct cells have been resolved so far.
func (b *Board) Len() int { return len(b.cells) }

// ToCell quantizes (x, y) to the nearest grid index on each axis.
func (b *Board) ToCell(x, y float64) (*Cell, error) {
	if !finite(x) || !finite(y) {
		return nil, fmt.Errorf("board: (%v, %v): %w", x, y, ErrInvalidCoordinate)
	}
	i := int(math.Round(x / b.step))
	j := int(math.Round(y / b.step))
	return b.CellAt(i, j), nil
}

// CellAt returns the canonical cell for (i, j), creating it on first use.
func (b *Board) CellAt(i, j int) *Cell {
	k := CellRef{I: i, J: j}
	if c, ok := b.cells[k]; ok {
		return c
	}
	c := &Cell{ref: k}
	b.cells[k] = c
	return c
}

// Lookup returns the cell for ref only if it has been resolved before.
func (b *Board) Lookup(ref CellRef) (*Cell, bool) {
	c, ok := b.cells[ref]
	return c, ok
}

// NeighborCells enumerates the half-open square [-radius, radius) on both
// axes around center, row-major (i outer, j inner, both ascending).
func (b *Board) NeighborCells(center *Cell, radius int) []*Cell {
	if radius <= 0 {
		return nil
	}
	out := make([]*Cell, 0, 4*radius*radius)
	for di := -radius; di < radius; di++ {
		for dj := -radius; dj < radius; dj++ {
			out = append(out, b.CellAt(center.ref.I+di, center.ref.J+dj))
		}
	}
	return out
}

// CellsWithin enumerates every cell whose Chebyshev distance to center is at
// most radius, in the same row-major order as NeighborCells.
func (b *Board) CellsWithin(center *Cell, radius int) []*Cell {
	if radius < 0 {
		return nil
	}
	side := 2*radius + 1
	out := make([]*Cell, 0, side*side)
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			out = append(out, b.CellAt(center.ref.I+di, center.ref.J+dj))
		}
	}
	return out
}

// Bounds is the continuous rectangle that quantizes to c.
func (b *Board) Bounds(c *Cell) Rect {
	h := b.step / 2
	cx := float64(c.ref.I) * b.step
	cy := float64(c.ref.J) * b.step
	return Rect{MinX: cx - h, MinY: cy - h, MaxX: cx + h, MaxY: cy + h}
}

// Center is the continuous coordinate of the middle of c.
func (b *Board) Center(c *Cell) (x, y float64) {
	return float64(c.ref.I) * b.step, float64(c.ref.J) * b.step
}

// Chebyshev is max(|di|, |dj|).
func Chebyshev(a, b *Cell) int { return a.ref.Chebyshev(b.ref) }

// Chebyshev is the grid distance max(|di|, |dj|) between two refs.
func (r CellRef) Chebyshev(o CellRef) int {
	di := absInt(r.I - o.I)
	dj := absInt(r.J - o.J)
	if di > dj {
		return di
	}
	return dj
}

// SortCells orders cells row-major by (i, j).
func SortCells(cells []*Cell) {
	sort.Slice(cells, func(x, y int) bool { return Less(cells[x].ref, cells[y].ref) })
}

func Less(a, b CellRef) bool {
	if a.I != b.I {
		return a.I < b.I
	}
	return a.J < b.J
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
