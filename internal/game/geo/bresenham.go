package geo

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y, Z int32
}

// LineIterator3D walks grid cells along a 3D line with Bresenham stepping.
// The start cell is returned first, the end cell last.
type LineIterator3D struct {
	cur, end   Cell
	dx, dy, dz int32
	sx, sy, sz int32
	errA, errB int32
	dominant   axis
	started    bool
}

type axis uint8

const (
	axisX axis = iota
	axisY
	axisZ
)

// NewLineIterator3D creates an iterator from start to end (inclusive).
func NewLineIterator3D(start, end Cell) *LineIterator3D {
	it := &LineIterator3D{
		cur: start,
		end: end,
		dx:  abs32(end.X - start.X),
		dy:  abs32(end.Y - start.Y),
		dz:  abs32(end.Z - start.Z),
		sx:  step(start.X, end.X),
		sy:  step(start.Y, end.Y),
		sz:  step(start.Z, end.Z),
	}

	switch {
	case it.dx >= it.dy && it.dx >= it.dz:
		it.dominant = axisX
		it.errA, it.errB = it.dx/2, it.dx/2
	case it.dy >= it.dx && it.dy >= it.dz:
		it.dominant = axisY
		it.errA, it.errB = it.dy/2, it.dy/2
	default:
		it.dominant = axisZ
		it.errA, it.errB = it.dz/2, it.dz/2
	}
	return it
}

// Next advances to the next cell. Returns false once the end was returned.
func (it *LineIterator3D) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.cur == it.end {
		return false
	}

	switch it.dominant {
	case axisX:
		it.cur.X += it.sx
		it.cur.Y, it.errA = advance(it.cur.Y, it.sy, it.errA, it.dy, it.dx)
		it.cur.Z, it.errB = advance(it.cur.Z, it.sz, it.errB, it.dz, it.dx)
	case axisY:
		it.cur.Y += it.sy
		it.cur.X, it.errA = advance(it.cur.X, it.sx, it.errA, it.dx, it.dy)
		it.cur.Z, it.errB = advance(it.cur.Z, it.sz, it.errB, it.dz, it.dy)
	case axisZ:
		it.cur.Z += it.sz
		it.cur.X, it.errA = advance(it.cur.X, it.sx, it.errA, it.dx, it.dz)
		it.cur.Y, it.errB = advance(it.cur.Y, it.sy, it.errB, it.dy, it.dz)
	}
	return true
}

// Cell returns the current cell.
func (it *LineIterator3D) Cell() Cell { return it.cur }

// AtEnd reports whether the current cell is the end cell.
func (it *LineIterator3D) AtEnd() bool { return it.cur == it.end }

func advance(pos, stepDir, acc, delta, major int32) (int32, int32) {
	acc += delta
	if acc >= major {
		pos += stepDir
		acc -= major
	}
	return pos, acc
}

func step(from, to int32) int32 {
	if from < to {
		return 1
	}
	return -1
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
