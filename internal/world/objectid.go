package world

import "sync/atomic"

// IDGenerator hands out entity IDs.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = no entity)
//	0x10000000 - 0x1FFFFFFF: Actors
//	0x20000000 - 0x2FFFFFFF: Markers (impact points, ground targets)
type IDGenerator struct {
	nextActorID  atomic.Uint32
	nextMarkerID atomic.Uint32
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextActorID.Store(0x10000000)
	gen.nextMarkerID.Store(0x20000000)
	return gen
}

// NextActorID returns the next actor ID.
func (g *IDGenerator) NextActorID() uint32 {
	return g.nextActorID.Add(1)
}

// NextMarkerID returns the next marker ID.
func (g *IDGenerator) NextMarkerID() uint32 {
	return g.nextMarkerID.Add(1)
}

// Next returns the next ID for kind.
func (g *IDGenerator) Next(kind Kind) uint32 {
	if kind == KindMarker {
		return g.NextMarkerID()
	}
	return g.NextActorID()
}
