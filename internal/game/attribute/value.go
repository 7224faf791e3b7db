package attribute

import "math"

// ChangeEpsilon is the smallest change of the current value that notifies
// listeners and stamps the regeneration clock.
const ChangeEpsilon = 1e-3

// ExpiryEpsilon is the remaining time at or below which a timed modifier or
// effect counts as expired. It absorbs the drift of summed tick deltas.
const ExpiryEpsilon = 1e-9

// Listener receives the previous and the new current value.
type Listener func(oldValue, newValue float64)

// Value is the live state of one attribute on one entity.
//
// Current value is derived as
//
//	clamp((base + Σflat) * (1 + Σpercent), min, max)
//
// Percent modifiers are summed and applied once, never compounded, so the
// result does not depend on the order modifiers were added in.
//
// Time is the Value's own clock: the sum of every Tick delta it has seen.
// Not safe for concurrent use.
type Value struct {
	def *Definition

	base    float64
	current float64

	modifiers []Modifier
	nextID    ModifierID

	elapsed      float64
	lastDecrease float64
	decreased    bool

	listeners []Listener
}

// NewValue creates a Value at the definition's default base value.
func NewValue(def *Definition) *Value {
	v := &Value{
		def:  def,
		base: def.DefaultBaseValue,
	}
	v.current = v.compute()
	return v
}

// Definition returns the attribute definition.
func (v *Value) Definition() *Definition { return v.def }

// Base returns the base value.
func (v *Value) Base() float64 { return v.base }

// Current returns the derived, clamped value.
func (v *Value) Current() float64 { return v.current }

// ModifierCount returns the number of live modifiers.
func (v *Value) ModifierCount() int { return len(v.modifiers) }

// SourceCount returns the number of live modifiers installed by source.
func (v *Value) SourceCount(source SourceKey) int {
	n := 0
	for i := range v.modifiers {
		if v.modifiers[i].Source == source {
			n++
		}
	}
	return n
}

// OnChange registers a listener for current value changes.
func (v *Value) OnChange(l Listener) {
	if l != nil {
		v.listeners = append(v.listeners, l)
	}
}

// SetBase replaces the base value and recomputes.
func (v *Value) SetBase(base float64) {
	v.base = base
	v.recalculate()
}

// AddBase adds delta to the base value and recomputes.
func (v *Value) AddBase(delta float64) {
	v.SetBase(v.base + delta)
}

// MultiplyBase scales the base value and recomputes.
func (v *Value) MultiplyBase(factor float64) {
	v.SetBase(v.base * factor)
}

// AddModifier installs a modifier and recomputes. The returned id can be
// passed to RemoveModifier.
func (v *Value) AddModifier(m Modifier) ModifierID {
	v.nextID++
	m.ID = v.nextID
	v.modifiers = append(v.modifiers, m)
	v.recalculate()
	return m.ID
}

// RemoveModifier retracts one modifier. Unknown ids are ignored.
func (v *Value) RemoveModifier(id ModifierID) {
	for i := range v.modifiers {
		if v.modifiers[i].ID == id {
			v.modifiers = append(v.modifiers[:i], v.modifiers[i+1:]...)
			break
		}
	}
	v.recalculate()
}

// RemoveModifiersFromSource retracts every modifier installed by source and
// returns how many were removed.
func (v *Value) RemoveModifiersFromSource(source SourceKey) int {
	n := 0
	removed := 0
	for i := range v.modifiers {
		if v.modifiers[i].Source == source {
			removed++
			continue
		}
		v.modifiers[n] = v.modifiers[i]
		n++
	}
	v.modifiers = v.modifiers[:n]
	v.recalculate()
	return removed
}

// Tick advances the value by dt seconds.
//
// Expired modifiers are evicted first and the value is recomputed, so the
// regeneration check below sees the post-expiry value. Regeneration then
// raises the base when the value is below max and at least RegenerationDelay
// seconds have passed since the last observed decrease.
func (v *Value) Tick(dt float64) {
	v.elapsed += dt

	expired := false
	n := 0
	for i := range v.modifiers {
		if v.modifiers[i].tick(dt) {
			expired = true
			continue
		}
		v.modifiers[n] = v.modifiers[i]
		n++
	}
	v.modifiers = v.modifiers[:n]
	if expired {
		v.recalculate()
	}

	if v.regenReady() {
		v.base += v.def.RegenerationRate * dt
		v.recalculate()
	}
}

func (v *Value) regenReady() bool {
	if !v.def.HasRegeneration || v.def.RegenerationRate <= 0 {
		return false
	}
	if v.current >= v.def.MaxValue {
		return false
	}
	if !v.decreased {
		return true
	}
	return v.elapsed-v.lastDecrease >= v.def.RegenerationDelay
}

func (v *Value) compute() float64 {
	var flat, percent float64
	for i := range v.modifiers {
		switch v.modifiers[i].Type {
		case Flat:
			flat += v.modifiers[i].Value
		case Percent:
			percent += v.modifiers[i].Value
		}
	}
	final := (v.base + flat) * (1 + percent)
	return clamp(final, v.def.MinValue, v.def.MaxValue)
}

func (v *Value) recalculate() {
	old := v.current
	v.current = v.compute()

	if math.Abs(v.current-old) <= ChangeEpsilon {
		return
	}
	if v.current < old {
		v.lastDecrease = v.elapsed
		v.decreased = true
	}
	for _, l := range v.listeners {
		l(old, v.current)
	}
}
