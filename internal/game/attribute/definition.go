package attribute

// Definition describes a bounded numeric stat such as health or mana.
// Definitions are immutable once loaded; the loader calls Sanitize so the
// runtime can rely on MinValue <= DefaultBaseValue <= MaxValue.
type Definition struct {
	ID          string
	Name        string
	Description string

	DefaultBaseValue float64
	MinValue         float64
	MaxValue         float64

	HasRegeneration   bool
	RegenerationRate  float64 // units per second
	RegenerationDelay float64 // seconds since the last decrease
}

// Sanitize corrects out-of-range authoring values in place:
// min is lowered to max, then the default is clamped into [min, max].
func (d *Definition) Sanitize() {
	if d.MinValue > d.MaxValue {
		d.MinValue = d.MaxValue
	}
	d.DefaultBaseValue = clamp(d.DefaultBaseValue, d.MinValue, d.MaxValue)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
