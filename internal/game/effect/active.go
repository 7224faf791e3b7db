package effect

import (
	"strconv"

	"github.com/udisondev/gas/internal/game/attribute"
)

// ActiveEffect is the live instance of a duration effect on one target.
// At most one exists per (definition, target) pair.
type ActiveEffect struct {
	ID            uint64
	Definition    *Definition
	Target        Target
	Instigator    Target
	TimeRemaining float64
	StackCount    int
	Source        attribute.SourceKey
}

// Tick decrements the remaining time.
// Returns true while the effect is still active.
func (ae *ActiveEffect) Tick(dt float64) bool {
	ae.TimeRemaining -= dt
	return ae.TimeRemaining > attribute.ExpiryEpsilon
}

// IsExpired reports whether the duration has elapsed.
func (ae *ActiveEffect) IsExpired() bool {
	return ae.TimeRemaining <= attribute.ExpiryEpsilon
}

func (ae *ActiveEffect) context(instigator Target) Context {
	return Context{
		Target:     ae.Target,
		Instigator: instigator,
		StackCount: ae.StackCount,
		Source:     ae.Source,
		Duration:   ae.Definition.Duration,
	}
}

func instanceSource(defID string, id uint64) attribute.SourceKey {
	return attribute.SourceKey{
		Kind: attribute.SourceEffect,
		ID:   defID + "#" + strconv.FormatUint(id, 10),
	}
}
