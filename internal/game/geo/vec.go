package geo

import "math"

// Vec3 is a world-space position.
type Vec3 struct {
	X, Y, Z float64
}

// V returns a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// DistanceSquared returns the squared 3D distance (no sqrt).
func (v Vec3) DistanceSquared(o Vec3) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Distance returns the 3D Euclidean distance.
func Distance(a, b Vec3) float64 {
	return math.Sqrt(a.DistanceSquared(b))
}

// Distance2D returns the distance on the XY plane.
func Distance2D(a, b Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// LayerMask is a bitmask over 32 collision/targeting layers.
type LayerMask uint32

// AllLayers matches every layer.
const AllLayers LayerMask = ^LayerMask(0)

// DefaultOcclusion matches layer 0 only.
const DefaultOcclusion LayerMask = 1

// MaskOf builds a mask from layer indices. Layers >= 32 are ignored.
func MaskOf(layers ...uint8) LayerMask {
	var m LayerMask
	for _, l := range layers {
		if l < 32 {
			m |= 1 << l
		}
	}
	return m
}

// Contains reports whether layer is part of the mask.
func (m LayerMask) Contains(layer uint8) bool {
	if layer >= 32 {
		return false
	}
	return m&(1<<layer) != 0
}

// Layers returns the layer indices set in the mask, ascending.
func (m LayerMask) Layers() []uint8 {
	var out []uint8
	for l := uint8(0); l < 32; l++ {
		if m.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}
