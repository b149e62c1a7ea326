package board

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New(1e-4)
	require.NoError(t, err)
	return b
}

func TestNew_RejectsBadStep(t *testing.T) {
	for _, step := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := New(step)
		assert.Error(t, err, "step=%v", step)
	}
}

func TestToCell_Quantizes(t *testing.T) {
	b := newBoard(t)
	for _, tc := range []struct {
		x, y float64
		i, j int
	}{
		{0, 0, 0, 0},
		{0.0001, 0, 1, 0},
		{0, 0.0001, 0, 1},
		{0.00014, -0.00016, 1, -2},
		{36.9995, -122.0533, 369995, -1220533},
	} {
		c, err := b.ToCell(tc.x, tc.y)
		require.NoError(t, err)
		assert.Equal(t, CellRef{I: tc.i, J: tc.j}, c.Ref(), "(%v, %v)", tc.x, tc.y)
	}
}

func TestToCell_Flyweight(t *testing.T) {
	b := newBoard(t)
	a, err := b.ToCell(0.00011, 0.00021)
	require.NoError(t, err)
	c, err := b.ToCell(0.00009, 0.00019)
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Same(t, a, b.CellAt(1, 2))
	assert.Equal(t, 1, b.Len())

	other := b.CellAt(2, 1)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, b.Len())
}

func TestToCell_RejectsNonFinite(t *testing.T) {
	b := newBoard(t)
	for _, v := range [][2]float64{
		{math.NaN(), 0},
		{0, math.Inf(1)},
		{math.Inf(-1), math.NaN()},
	} {
		c, err := b.ToCell(v[0], v[1])
		assert.Nil(t, c)
		assert.True(t, errors.Is(err, ErrInvalidCoordinate))
	}
	assert.Equal(t, 0, b.Len())
}

func TestLookup(t *testing.T) {
	b := newBoard(t)
	_, ok := b.Lookup(CellRef{I: 5, J: 5})
	assert.False(t, ok)
	c := b.CellAt(5, 5)
	got, ok := b.Lookup(CellRef{I: 5, J: 5})
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestNeighborCells_HalfOpenRowMajor(t *testing.T) {
	b := newBoard(t)
	center := b.CellAt(10, -3)
	cells := b.NeighborCells(center, 2)
	require.Len(t, cells, 16)

	var refs []CellRef
	for _, c := range cells {
		refs = append(refs, c.Ref())
	}
	assert.Equal(t, CellRef{I: 8, J: -5}, refs[0])
	assert.Equal(t, CellRef{I: 8, J: -4}, refs[1])
	assert.Equal(t, CellRef{I: 9, J: -5}, refs[4])
	assert.Equal(t, CellRef{I: 11, J: -2}, refs[15])
	for k := 1; k < len(refs); k++ {
		assert.True(t, Less(refs[k-1], refs[k]))
	}
	assert.Empty(t, b.NeighborCells(center, 0))
}

func TestCellsWithin_Closed(t *testing.T) {
	b := newBoard(t)
	center := b.CellAt(0, 0)
	cells := b.CellsWithin(center, 8)
	require.Len(t, cells, 17*17)
	for _, c := range cells {
		assert.LessOrEqual(t, Chebyshev(center, c), 8)
	}
	assert.Equal(t, CellRef{I: -8, J: -8}, cells[0].Ref())
	assert.Equal(t, CellRef{I: 8, J: 8}, cells[len(cells)-1].Ref())
	assert.Len(t, b.CellsWithin(center, 0), 1)
	assert.Nil(t, b.CellsWithin(center, -1))
}

func TestChebyshev(t *testing.T) {
	b := newBoard(t)
	assert.Equal(t, 0, Chebyshev(b.CellAt(1, 1), b.CellAt(1, 1)))
	assert.Equal(t, 9, Chebyshev(b.CellAt(0, 0), b.CellAt(-9, 4)))
	assert.Equal(t, 7, Chebyshev(b.CellAt(3, 3), b.CellAt(2, 10)))
	assert.Equal(t, 9, CellRef{I: 0, J: 0}.Chebyshev(CellRef{I: -9, J: 4}))
	assert.Equal(t, 0, CellRef{I: -2, J: 5}.Chebyshev(CellRef{I: -2, J: 5}))
}

func TestBoundsContainsCenter(t *testing.T) {
	b := newBoard(t)
	c := b.CellAt(3, -2)
	r := b.Bounds(c)
	x, y := b.Center(c)
	assert.Less(t, r.MinX, x)
	assert.Greater(t, r.MaxX, x)
	assert.Less(t, r.MinY, y)
	assert.Greater(t, r.MaxY, y)
	assert.InDelta(t, 1e-4, r.MaxX-r.MinX, 1e-12)

	back, err := b.ToCell(x, y)
	require.NoError(t, err)
	assert.Same(t, c, back)
}

func TestSortCells(t *testing.T) {
	b := newBoard(t)
	cells := []*Cell{b.CellAt(1, 0), b.CellAt(0, 5), b.CellAt(0, -1)}
	SortCells(cells)
	assert.Equal(t, []CellRef{{0, -1}, {0, 5}, {1, 0}}, []CellRef{cells[0].Ref(), cells[1].Ref(), cells[2].Ref()})
}
