package ability

import (
	"github.com/udisondev/gas/internal/game/effect"
	"github.com/udisondev/gas/internal/game/geo"
)

// Actor is anything that can cast or be targeted.
type Actor interface {
	effect.Target
	Position() geo.Vec3
	Layer() uint8
}

// Spatial answers distance and line-of-sight questions for the gate.
// geo.Space is the default implementation.
type Spatial interface {
	Distance(a, b geo.Vec3) float64
	Occluded(a, b geo.Vec3, mask geo.LayerMask) bool
}

// Gate decides whether abilities may be activated. It holds no per-entity
// state; cooldowns and casts live in Caster.
type Gate struct {
	Spatial Spatial
}

// NewGate creates a Gate. A nil spatial uses geo.Space without a grid.
func NewGate(spatial Spatial) *Gate {
	if spatial == nil {
		spatial = geo.Space{}
	}
	return &Gate{Spatial: spatial}
}

// CanActivate reports whether caster may activate def against target.
// Checks run cheapest first and stop at the first failure:
// cost, target validity, caster tags.
// A caster without attributes can never activate anything.
func (g *Gate) CanActivate(def *Definition, caster, target Actor) bool {
	if def == nil || caster == nil {
		return false
	}
	attrs := caster.Attributes()
	if attrs == nil {
		return false
	}

	if def.HasCost() && attrs.Get(def.CostAttribute).Current() < def.Cost {
		return false
	}

	if !g.IsValidTarget(def, caster, target) {
		return false
	}

	tags := caster.Tags()
	if tags.HasAny(def.BlockedByTags) {
		return false
	}
	return tags.HasAll(def.RequiredTags)
}

// IsValidTarget checks the target against def's targeting rules.
//
//   - Self: always valid.
//   - Target: non-nil, on a targetable layer, passes tag filters, and when
//     range checking is on, within range and (3D only) not occluded.
//   - Area, Ground: non-nil and passes tag filters. Range and occlusion are
//     never checked.
func (g *Gate) IsValidTarget(def *Definition, caster, target Actor) bool {
	if def == nil {
		return false
	}

	switch def.Targeting {
	case TargetSelf:
		return true

	case TargetEntity:
		if target == nil {
			return false
		}
		if !def.TargetableLayers.Contains(target.Layer()) {
			return false
		}
		if !targetTagsPass(def, target) {
			return false
		}
		if def.UseRangeCheck {
			if caster == nil {
				return false
			}
			from, to := caster.Position(), target.Position()
			if g.spatial().Distance(from, to) > def.Range {
				return false
			}
			if def.Dimension == Dim3D && g.spatial().Occluded(from, to, def.OcclusionLayers) {
				return false
			}
		}
		return true

	case TargetArea, TargetGround:
		if target == nil {
			return false
		}
		return targetTagsPass(def, target)

	default:
		return false
	}
}

// ApplyCost deducts def's cost from the caster as a permanent base change
// attributed to the ability. No-op without a cost or attributes.
func (g *Gate) ApplyCost(def *Definition, caster Actor) {
	if def == nil || caster == nil || !def.HasCost() {
		return
	}
	caster.Attributes().ModifyBase(def.CostAttribute, -def.Cost, def.Source())
}

func (g *Gate) spatial() Spatial {
	if g == nil || g.Spatial == nil {
		return geo.Space{}
	}
	return g.Spatial
}

func targetTagsPass(def *Definition, target Actor) bool {
	tags := target.Tags()
	if tags.HasAny(def.TargetBlockedByTags) {
		return false
	}
	if len(def.TargetRequiredTags) > 0 && !tags.HasAll(def.TargetRequiredTags) {
		return false
	}
	return true
}
