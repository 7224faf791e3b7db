package ability

import (
	"github.com/udisondev/gas/internal/game/attribute"
	"github.com/udisondev/gas/internal/game/effect"
	"github.com/udisondev/gas/internal/game/geo"
	"github.com/udisondev/gas/internal/game/tag"
)

// TargetingKind selects how IsValidTarget treats the target.
type TargetingKind uint8

const (
	TargetSelf TargetingKind = iota
	TargetEntity
	TargetArea
	TargetGround
)

func (k TargetingKind) String() string {
	switch k {
	case TargetSelf:
		return "self"
	case TargetEntity:
		return "target"
	case TargetArea:
		return "area"
	case TargetGround:
		return "ground"
	default:
		return "unknown"
	}
}

// ParseTargetingKind parses the names used in definition files.
func ParseTargetingKind(s string) (TargetingKind, bool) {
	switch s {
	case "self", "Self", "":
		return TargetSelf, true
	case "target", "Target":
		return TargetEntity, true
	case "area", "Area":
		return TargetArea, true
	case "ground", "Ground":
		return TargetGround, true
	}
	return TargetSelf, false
}

// Dimension selects whether line-of-sight is checked.
// Occlusion is only tested for 3D abilities.
type Dimension uint8

const (
	Dim2D Dimension = iota
	Dim3D
)

func (d Dimension) String() string {
	if d == Dim3D {
		return "3d"
	}
	return "2d"
}

// ParseDimension parses "2d" / "3d".
func ParseDimension(s string) (Dimension, bool) {
	switch s {
	case "2d", "2D", "":
		return Dim2D, true
	case "3d", "3D":
		return Dim3D, true
	}
	return Dim2D, false
}

// Definition is an immutable ability template.
type Definition struct {
	ID          string
	Name        string
	Description string

	Cooldown           float64 // seconds
	CastTime           float64 // seconds, <= 0 means instant
	CanCastWhileMoving bool
	Interruptible      bool

	Cost          float64
	CostAttribute *attribute.Definition

	Targeting        TargetingKind
	Dimension        Dimension
	UseRangeCheck    bool
	Range            float64
	Radius           float64
	TargetableLayers geo.LayerMask
	OcclusionLayers  geo.LayerMask

	Effects []*effect.Definition

	AbilityTags         []tag.Tag
	RequiredTags        []tag.Tag
	BlockedByTags       []tag.Tag
	TargetRequiredTags  []tag.Tag
	TargetBlockedByTags []tag.Tag
}

// HasCost reports whether activation deducts from an attribute.
func (d *Definition) HasCost() bool {
	return d.Cost > 0 && d.CostAttribute != nil
}

// IsInstant reports whether the ability resolves without a cast bar.
func (d *Definition) IsInstant() bool {
	return d.CastTime <= 0
}

// Source is the attribute source key used when this ability changes a value.
func (d *Definition) Source() attribute.SourceKey {
	return attribute.SourceKey{Kind: attribute.SourceAbility, ID: d.ID}
}
