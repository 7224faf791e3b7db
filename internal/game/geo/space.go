package geo

// Space answers the spatial questions the ability gate asks: straight-line
// distance and occlusion against an optional Grid.
type Space struct {
	Grid *Grid
}

// Distance returns the 3D distance between a and b.
func (s Space) Distance(a, b Vec3) float64 {
	return Distance(a, b)
}

// Occluded reports whether the segment a→b is blocked on a layer in mask.
func (s Space) Occluded(a, b Vec3, mask LayerMask) bool {
	return s.Grid.Occluded(a, b, mask)
}
