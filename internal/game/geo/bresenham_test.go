package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func walk(start, end Cell) []Cell {
	it := NewLineIterator3D(start, end)
	var cells []Cell
	for it.Next() {
		cells = append(cells, it.Cell())
	}
	return cells
}

func TestLineIterator3DHorizontal(t *testing.T) {
	cells := walk(Cell{0, 0, 0}, Cell{5, 0, 0})

	assert.Equal(t, 6, len(cells), "should visit 6 cells (0..5)")
	assert.Equal(t, int32(0), cells[0].X)
	assert.Equal(t, int32(5), cells[5].X)
	for _, c := range cells {
		assert.Equal(t, int32(0), c.Y)
		assert.Equal(t, int32(0), c.Z)
	}
}

func TestLineIterator3DVertical(t *testing.T) {
	cells := walk(Cell{0, 0, 0}, Cell{0, 3, 0})

	assert.Equal(t, 4, len(cells))
	assert.Equal(t, int32(3), cells[3].Y)
}

func TestLineIterator3DDiagonal(t *testing.T) {
	cells := walk(Cell{0, 0, 0}, Cell{3, 3, 0})

	assert.Equal(t, Cell{0, 0, 0}, cells[0])
	assert.Equal(t, Cell{3, 3, 0}, cells[len(cells)-1])
}

func TestLineIterator3DNegative(t *testing.T) {
	cells := walk(Cell{5, 5, 100}, Cell{2, 2, 50})

	assert.Equal(t, Cell{5, 5, 100}, cells[0])
	assert.Equal(t, Cell{2, 2, 50}, cells[len(cells)-1])
	assert.Equal(t, 51, len(cells), "Z-dominant walk visits every Z step")
}

func TestLineIterator3DSamePoint(t *testing.T) {
	cells := walk(Cell{7, 7, 7}, Cell{7, 7, 7})
	assert.Equal(t, []Cell{{7, 7, 7}}, cells)
}

func TestLineIterator3DStepsAreAdjacent(t *testing.T) {
	cells := walk(Cell{-4, 9, 2}, Cell{13, -6, 5})
	for i := 1; i < len(cells); i++ {
		assert.LessOrEqual(t, abs32(cells[i].X-cells[i-1].X), int32(1))
		assert.LessOrEqual(t, abs32(cells[i].Y-cells[i-1].Y), int32(1))
		assert.LessOrEqual(t, abs32(cells[i].Z-cells[i-1].Z), int32(1))
	}
	assert.Equal(t, Cell{13, -6, 5}, cells[len(cells)-1])
}
