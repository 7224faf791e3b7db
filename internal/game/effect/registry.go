package effect

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/udisondev/gas/internal/game/attribute"
)

// ErrUnknownKind is returned by NewBehavior for unregistered kind names.
var ErrUnknownKind = errors.New("unknown effect kind")

// AttributeResolver maps an attribute id to its definition.
type AttributeResolver func(id string) (*attribute.Definition, bool)

// Factory builds a Behavior from definition-file params.
type Factory func(params map[string]string, attrs AttributeResolver) (Behavior, error)

// kindRegistry maps kind name → factory. Populated in init().
var kindRegistry = map[string]Factory{}

// RegisterKind registers a behavior factory by kind name.
// Registering an existing name replaces it.
func RegisterKind(name string, factory Factory) {
	kindRegistry[name] = factory
}

// Kinds returns the registered kind names.
func Kinds() []string {
	out := make([]string, 0, len(kindRegistry))
	for k := range kindRegistry {
		out = append(out, k)
	}
	return out
}

// NewBehavior creates a behavior by kind name using the registered factory.
func NewBehavior(kind string, params map[string]string, attrs AttributeResolver) (Behavior, error) {
	factory, ok := kindRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return factory(params, attrs)
}

func init() {
	RegisterKind(KindInstantModifier, func(params map[string]string, attrs AttributeResolver) (Behavior, error) {
		def, typ, value, err := parseModifierParams(params, attrs)
		if err != nil {
			return nil, err
		}
		return &InstantModifier{Attribute: def, Type: typ, Value: value}, nil
	})
	RegisterKind(KindDurationModifier, func(params map[string]string, attrs AttributeResolver) (Behavior, error) {
		def, typ, value, err := parseModifierParams(params, attrs)
		if err != nil {
			return nil, err
		}
		return &DurationModifier{Attribute: def, Type: typ, Value: value}, nil
	})
	RegisterKind(KindTagGrant, func(map[string]string, AttributeResolver) (Behavior, error) {
		return TagGrant{}, nil
	})
}

// parseModifierParams reads "attribute", "type" and "value".
// An attribute id the resolver does not know leaves the definition nil;
// the behavior then skips its work at runtime.
func parseModifierParams(params map[string]string, attrs AttributeResolver) (*attribute.Definition, attribute.ModifierType, float64, error) {
	typ := attribute.Flat
	if raw, ok := params["type"]; ok {
		t, err := attribute.ParseModifierType(raw)
		if err != nil {
			return nil, typ, 0, err
		}
		typ = t
	}

	var value float64
	if raw, ok := params["value"]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, typ, 0, fmt.Errorf("parsing value %q: %w", raw, err)
		}
		value = v
	}

	id := params["attribute"]
	var def *attribute.Definition
	if attrs != nil && id != "" {
		if d, ok := attrs(id); ok {
			def = d
		}
	}
	if def == nil {
		slog.Warn("effect references unknown attribute", "attribute", id)
	}
	return def, typ, value, nil
}
