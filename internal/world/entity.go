package world

import (
	"github.com/udisondev/gas/internal/game/ability"
	"github.com/udisondev/gas/internal/game/attribute"
	"github.com/udisondev/gas/internal/game/geo"
	"github.com/udisondev/gas/internal/game/tag"
)

// Kind selects an entity's ID range and default components.
type Kind uint8

const (
	KindActor Kind = iota
	// KindMarker is an impact point for area and ground abilities.
	// Markers carry no attribute set and cannot cast.
	KindMarker
)

// EntitySpec describes an entity to spawn.
type EntitySpec struct {
	Name     string
	Kind     Kind
	Position geo.Vec3
	Layer    uint8

	// Attributes are initialized eagerly; others are created on first use.
	Attributes []*attribute.Definition
	// BaseValues override the default base of listed attributes.
	BaseValues map[string]float64
	Tags       []tag.Tag

	NoAttributes bool
	NoTags       bool
}

// Entity is one simulated object. Attribute and tag components are optional;
// a missing component reads as nil and every operation on it is a no-op.
type Entity struct {
	id    uint32
	name  string
	kind  Kind
	pos   geo.Vec3
	layer uint8

	attrs  *attribute.Set
	tags   *tag.Set
	caster *ability.Caster

	// pending buffers attribute changes until the world drains them.
	pending []Event
}

func (e *Entity) EntityID() uint32 {
	if e == nil {
		return 0
	}
	return e.id
}

func (e *Entity) Name() string               { return e.name }
func (e *Entity) Kind() Kind                 { return e.kind }
func (e *Entity) Position() geo.Vec3         { return e.pos }
func (e *Entity) Layer() uint8               { return e.layer }
func (e *Entity) Attributes() *attribute.Set { return e.attrs }
func (e *Entity) Tags() *tag.Set             { return e.tags }
func (e *Entity) Caster() *ability.Caster    { return e.caster }

func (e *Entity) recordChange(ev attribute.ChangeEvent) {
	e.pending = append(e.pending, Event{
		Entity:    e.id,
		Attribute: ev.Attribute,
		Old:       ev.Old,
		New:       ev.New,
	})
}
