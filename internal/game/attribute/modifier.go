package attribute

import (
	"fmt"
	"strings"
)

// ModifierType defines how a modifier contributes to the current value.
type ModifierType int8

const (
	Flat    ModifierType = iota // added to base before percentages
	Percent                     // summed with other percents, then applied once
)

// String returns the lowercase name used in definition files.
func (t ModifierType) String() string {
	switch t {
	case Flat:
		return "flat"
	case Percent:
		return "percent"
	default:
		return fmt.Sprintf("ModifierType(%d)", int8(t))
	}
}

// ParseModifierType parses "flat" or "percent" (case-insensitive).
func ParseModifierType(s string) (ModifierType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "add":
		return Flat, nil
	case "percent", "mul":
		return Percent, nil
	default:
		return Flat, fmt.Errorf("unknown modifier type %q", s)
	}
}

// SourceKind groups modifier origins.
type SourceKind uint8

const (
	SourceUnknown SourceKind = iota
	SourceEffect
	SourceAbility
	SourceRegen
	SourceAdmin
)

// SourceKey identifies where a modifier or base change came from.
// Effects use their active instance id so a later retraction removes exactly
// the modifiers that instance installed.
type SourceKey struct {
	Kind SourceKind
	ID   string
}

// String is used in logs.
func (k SourceKey) String() string {
	switch k.Kind {
	case SourceEffect:
		return "effect:" + k.ID
	case SourceAbility:
		return "ability:" + k.ID
	case SourceRegen:
		return "regen"
	case SourceAdmin:
		return "admin:" + k.ID
	default:
		return "unknown:" + k.ID
	}
}

// ModifierID is assigned by Value.AddModifier and is unique per Value.
type ModifierID uint64

// Modifier is a transient or permanent adjustment to an attribute.
// A Duration <= 0 means permanent.
type Modifier struct {
	ID            ModifierID
	Type          ModifierType
	Value         float64
	Source        SourceKey
	Duration      float64
	TimeRemaining float64
}

// NewModifier creates a modifier with its timer set to the full duration.
func NewModifier(t ModifierType, value float64, source SourceKey, duration float64) Modifier {
	return Modifier{
		Type:          t,
		Value:         value,
		Source:        source,
		Duration:      duration,
		TimeRemaining: duration,
	}
}

// IsPermanent reports whether the modifier never expires on its own.
func (m *Modifier) IsPermanent() bool {
	return m.Duration <= 0
}

// tick ages the modifier. Returns true once it has expired.
func (m *Modifier) tick(dt float64) bool {
	if m.IsPermanent() {
		return false
	}
	m.TimeRemaining -= dt
	return m.TimeRemaining <= ExpiryEpsilon
}
