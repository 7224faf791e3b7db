package effect

import (
	"github.com/udisondev/gas/internal/game/attribute"
	"github.com/udisondev/gas/internal/game/tag"
)

// Target is anything effects can act on. Either component may be nil when
// the entity has no attributes or no tags; behaviors then skip that step.
type Target interface {
	EntityID() uint32
	Attributes() *attribute.Set
	Tags() *tag.Set
}

// Context is passed to a Behavior on every apply and remove.
type Context struct {
	Target     Target
	Instigator Target // may be nil
	StackCount int
	// Source identifies the active instance; modifiers installed by the
	// behavior must carry it so Remove can retract them.
	Source   attribute.SourceKey
	Duration float64
}

// Behavior is the kind-specific payload of an effect.
// Apply runs on first application and again on every refresh with the
// current stack count; Remove runs once when the active instance ends.
type Behavior interface {
	Kind() string
	Apply(ctx Context)
	Remove(ctx Context)
}

// Definition is an immutable, externally authored effect.
type Definition struct {
	ID          string
	Name        string
	Description string

	Duration  float64 // seconds, <= 0 for instant
	CanStack  bool
	MaxStacks int

	// GrantedTags are added to the target for the lifetime of the active
	// instance. Instant effects never grant tags.
	GrantedTags []tag.Tag

	Behavior Behavior
}

// IsInstant reports whether the effect applies once without an active instance.
func (d *Definition) IsInstant() bool { return d.Duration <= 0 }

// IsDuration reports whether the effect creates an active instance.
func (d *Definition) IsDuration() bool { return d.Duration > 0 }

// StackLimit returns MaxStacks, never less than 1.
func (d *Definition) StackLimit() int {
	return max(d.MaxStacks, 1)
}

// Kind returns the behavior kind name, or "" without a behavior.
func (d *Definition) Kind() string {
	if d.Behavior == nil {
		return ""
	}
	return d.Behavior.Kind()
}
