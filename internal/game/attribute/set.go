package attribute

import "log/slog"

// ChangeEvent describes a change of an attribute's current value.
type ChangeEvent struct {
	Attribute string
	Old       float64
	New       float64
}

// SetListener receives change events for every attribute in a Set.
type SetListener func(ChangeEvent)

// Set holds the attribute values of one entity, keyed by definition id.
// Values are created on first access with the definition's default base.
//
// A nil *Set is a missing attribute component: queries report absence and
// mutations are no-ops.
type Set struct {
	values    map[string]*Value
	order     []*Value
	listeners []SetListener
}

// NewSet creates an empty Set. Definitions passed here are initialized eagerly.
func NewSet(defs ...*Definition) *Set {
	s := &Set{values: make(map[string]*Value, len(defs))}
	for _, def := range defs {
		s.Get(def)
	}
	return s
}

// Get returns the value for def, creating it on first access.
// Returns nil for a nil Set or nil definition.
func (s *Set) Get(def *Definition) *Value {
	if s == nil || def == nil {
		return nil
	}
	if v, ok := s.values[def.ID]; ok {
		return v
	}

	v := NewValue(def)
	id := def.ID
	v.OnChange(func(oldValue, newValue float64) {
		s.publish(ChangeEvent{Attribute: id, Old: oldValue, New: newValue})
	})
	s.values[id] = v
	s.order = append(s.order, v)
	return v
}

// Lookup returns an existing value without creating one.
func (s *Set) Lookup(id string) (*Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[id]
	return v, ok
}

// Current returns the current value of an existing attribute.
func (s *Set) Current(id string) (float64, bool) {
	v, ok := s.Lookup(id)
	if !ok {
		return 0, false
	}
	return v.Current(), true
}

// Len returns the number of initialized attributes.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Values returns initialized values in creation order.
func (s *Set) Values() []*Value {
	if s == nil {
		return nil
	}
	out := make([]*Value, len(s.order))
	copy(out, s.order)
	return out
}

// AddModifier installs a modifier on def's value.
// Returns false when the Set or definition is missing.
func (s *Set) AddModifier(def *Definition, m Modifier) (ModifierID, bool) {
	v := s.Get(def)
	if v == nil {
		return 0, false
	}
	return v.AddModifier(m), true
}

// RemoveModifiersFromSource retracts source's modifiers from every attribute.
func (s *Set) RemoveModifiersFromSource(source SourceKey) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, v := range s.order {
		n += v.RemoveModifiersFromSource(source)
	}
	return n
}

// ModifyBase applies a flat, permanent change directly to def's base value.
func (s *Set) ModifyBase(def *Definition, delta float64, source SourceKey) {
	v := s.Get(def)
	if v == nil {
		return
	}
	v.AddBase(delta)

	slog.Debug("attribute base modified",
		"attribute", def.ID,
		"delta", delta,
		"source", source.String(),
		"current", v.Current())
}

// Tick advances every initialized attribute.
func (s *Set) Tick(dt float64) {
	if s == nil {
		return
	}
	for _, v := range s.order {
		v.Tick(dt)
	}
}

// OnChange registers a listener for all attributes of the Set.
func (s *Set) OnChange(l SetListener) {
	if s == nil || l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

func (s *Set) publish(ev ChangeEvent) {
	for _, l := range s.listeners {
		l(ev)
	}
}
