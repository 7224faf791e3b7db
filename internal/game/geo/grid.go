package geo

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Grid is a sparse voxel grid of occluding cells.
// Each blocked cell carries the layers it belongs to; a line-of-sight query
// only considers cells whose layers intersect the query mask.
//
// A nil *Grid occludes nothing.
type Grid struct {
	cellSize float64
	cells    map[Cell]LayerMask
}

// NewGrid creates an empty grid. Non-positive cell sizes fall back to 1.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{cellSize: cellSize, cells: make(map[Cell]LayerMask)}
}

// CellSize returns the edge length of a cell in world units.
func (g *Grid) CellSize() float64 { return g.cellSize }

// CellOf maps a world position to its cell.
func (g *Grid) CellOf(p Vec3) Cell {
	return Cell{
		X: int32(math.Floor(p.X / g.cellSize)),
		Y: int32(math.Floor(p.Y / g.cellSize)),
		Z: int32(math.Floor(p.Z / g.cellSize)),
	}
}

// Block marks a cell as occluding on layer.
func (g *Grid) Block(c Cell, layer uint8) {
	g.cells[c] |= MaskOf(layer)
}

// BlockAt marks the cell containing p.
func (g *Grid) BlockAt(p Vec3, layer uint8) {
	g.Block(g.CellOf(p), layer)
}

// Unblock clears a cell on every layer.
func (g *Grid) Unblock(c Cell) {
	delete(g.cells, c)
}

// Blocked returns the layers a cell occludes on.
func (g *Grid) Blocked(c Cell) LayerMask {
	if g == nil {
		return 0
	}
	return g.cells[c]
}

// Len returns the number of blocked cells.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Occluded reports whether a blocked cell on a layer in mask lies strictly
// between the cells of a and b. The endpoint cells never occlude, so an
// entity standing inside a wall cell can still be seen from outside it.
func (g *Grid) Occluded(a, b Vec3, mask LayerMask) bool {
	if g == nil || len(g.cells) == 0 || mask == 0 {
		return false
	}

	start := g.CellOf(a)
	end := g.CellOf(b)
	if start == end {
		return false
	}

	it := NewLineIterator3D(start, end)
	it.Next() // start cell
	for it.Next() {
		if it.AtEnd() {
			return false
		}
		if g.cells[it.Cell()]&mask != 0 {
			return true
		}
	}
	return false
}

type gridFile struct {
	CellSize float64     `yaml:"cell_size"`
	Blocked  []gridEntry `yaml:"blocked"`
}

type gridEntry struct {
	X     int32 `yaml:"x"`
	Y     int32 `yaml:"y"`
	Z     int32 `yaml:"z"`
	Layer uint8 `yaml:"layer"`
}

// LoadGrid reads an occlusion grid from YAML:
//
//	cell_size: 1
//	blocked:
//	  - {x: 2, y: 0, z: 0, layer: 0}
func LoadGrid(r io.Reader) (*Grid, error) {
	var f gridFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return NewGrid(1), nil
		}
		return nil, fmt.Errorf("decoding occlusion grid: %w", err)
	}

	g := NewGrid(f.CellSize)
	for _, e := range f.Blocked {
		if e.Layer >= 32 {
			return nil, fmt.Errorf("cell (%d,%d,%d): layer %d out of range", e.X, e.Y, e.Z, e.Layer)
		}
		g.Block(Cell{X: e.X, Y: e.Y, Z: e.Z}, e.Layer)
	}
	return g, nil
}

// LoadGridFile reads an occlusion grid from a YAML file.
func LoadGridFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening occlusion grid %s: %w", path, err)
	}
	defer f.Close()

	g, err := LoadGrid(f)
	if err != nil {
		return nil, fmt.Errorf("loading occlusion grid %s: %w", path, err)
	}
	return g, nil
}
