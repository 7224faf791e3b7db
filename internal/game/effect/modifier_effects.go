package effect

import (
	"log/slog"

	"github.com/udisondev/gas/internal/game/attribute"
)

// Kind names used in definition files.
const (
	KindInstantModifier  = "InstantModifier"
	KindDurationModifier = "DurationModifier"
	KindTagGrant         = "TagGrant"
)

// InstantModifier changes the target attribute's base value once per apply.
// Flat adds value*stacks; Percent multiplies base by 1 + value*stacks.
// Consecutive percent applications compound in the order they arrive.
type InstantModifier struct {
	Attribute *attribute.Definition
	Type      attribute.ModifierType
	Value     float64
}

func (e *InstantModifier) Kind() string { return KindInstantModifier }

func (e *InstantModifier) Apply(ctx Context) {
	v := ctx.Target.Attributes().Get(e.Attribute)
	if v == nil {
		return
	}

	mod := e.Value * float64(ctx.StackCount)
	switch e.Type {
	case attribute.Flat:
		v.AddBase(mod)
	case attribute.Percent:
		v.MultiplyBase(1 + mod)
	}

	slog.Debug("instant modifier applied",
		"attribute", e.Attribute.ID,
		"type", e.Type.String(),
		"value", mod,
		"target", ctx.Target.EntityID(),
		"current", v.Current())
}

// Remove is a no-op: a base change has nothing to retract.
func (e *InstantModifier) Remove(Context) {}

// DurationModifier installs a timed modifier sized value*stacks on the target
// attribute. Re-application first retracts the previous modifier of the same
// source, so the attribute never holds two modifiers for one instance.
type DurationModifier struct {
	Attribute *attribute.Definition
	Type      attribute.ModifierType
	Value     float64
}

func (e *DurationModifier) Kind() string { return KindDurationModifier }

func (e *DurationModifier) Apply(ctx Context) {
	v := ctx.Target.Attributes().Get(e.Attribute)
	if v == nil {
		return
	}

	v.RemoveModifiersFromSource(ctx.Source)
	mod := e.Value * float64(ctx.StackCount)
	v.AddModifier(attribute.NewModifier(e.Type, mod, ctx.Source, ctx.Duration))

	slog.Debug("duration modifier applied",
		"attribute", e.Attribute.ID,
		"type", e.Type.String(),
		"value", mod,
		"stacks", ctx.StackCount,
		"source", ctx.Source.String(),
		"target", ctx.Target.EntityID())
}

func (e *DurationModifier) Remove(ctx Context) {
	v := ctx.Target.Attributes().Get(e.Attribute)
	if v == nil {
		return
	}
	v.RemoveModifiersFromSource(ctx.Source)

	slog.Debug("duration modifier removed",
		"attribute", e.Attribute.ID,
		"source", ctx.Source.String(),
		"target", ctx.Target.EntityID())
}

// TagGrant has no payload of its own; the manager grants and revokes the
// definition's tags around it.
type TagGrant struct{}

func (TagGrant) Kind() string   { return KindTagGrant }
func (TagGrant) Apply(Context)  {}
func (TagGrant) Remove(Context) {}
