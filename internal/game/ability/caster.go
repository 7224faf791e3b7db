package ability

import (
	"log/slog"
	"sort"

	"github.com/udisondev/gas/internal/game/effect"
)

// Outcome is the result of an activation attempt or cast completion.
type Outcome uint8

const (
	OutcomeNone        Outcome = iota // nothing happened
	OutcomeRejected                   // gate check failed
	OutcomeOnCooldown                 // ability still cooling down
	OutcomeCasting                    // another cast in progress
	OutcomeCastStarted                // cast bar started, commit on completion
	OutcomeActivated                  // cost paid, effects applied, cooldown started
	OutcomeInterrupted                // cast cancelled before completion
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeOnCooldown:
		return "on_cooldown"
	case OutcomeCasting:
		return "casting"
	case OutcomeCastStarted:
		return "cast_started"
	case OutcomeActivated:
		return "activated"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "none"
	}
}

// EffectApplier receives the effects of a committed ability.
// *effect.Manager satisfies it.
type EffectApplier interface {
	Apply(def *effect.Definition, target, instigator effect.Target) effect.Result
}

type cast struct {
	def     *Definition
	target  Actor
	elapsed float64
}

// Caster tracks cooldowns and the in-progress cast of one actor.
//
// Tick only advances timers and never touches other actors, so casters of
// different actors may be ticked concurrently. Completing a cast applies
// effects to the target and must be serialized by the caller via Complete.
type Caster struct {
	owner     Actor
	gate      *Gate
	applier   EffectApplier
	cooldowns map[string]float64
	current   *cast
}

// NewCaster creates a Caster for owner.
func NewCaster(owner Actor, gate *Gate, applier EffectApplier) *Caster {
	if gate == nil {
		gate = NewGate(nil)
	}
	return &Caster{
		owner:     owner,
		gate:      gate,
		applier:   applier,
		cooldowns: make(map[string]float64),
	}
}

// TryActivate attempts to activate def against target.
// Instant abilities commit immediately; others start a cast that commits
// through Complete once CastTime has elapsed.
func (c *Caster) TryActivate(def *Definition, target Actor) Outcome {
	outcome := c.tryActivate(def, target)
	if def != nil {
		slog.Debug("ability activation",
			"ability", def.ID,
			"caster", c.owner.EntityID(),
			"target", actorID(target),
			"outcome", outcome.String())
	}
	return outcome
}

func (c *Caster) tryActivate(def *Definition, target Actor) Outcome {
	if def == nil {
		return OutcomeRejected
	}
	if c.current != nil {
		return OutcomeCasting
	}
	if c.CooldownRemaining(def.ID) > 0 {
		return OutcomeOnCooldown
	}
	if !c.gate.CanActivate(def, c.owner, target) {
		return OutcomeRejected
	}

	if def.IsInstant() {
		c.commit(def, target)
		return OutcomeActivated
	}

	c.current = &cast{def: def, target: target}
	return OutcomeCastStarted
}

// Tick advances cooldowns and cast progress by dt seconds.
func (c *Caster) Tick(dt float64) {
	for id, remaining := range c.cooldowns {
		remaining -= dt
		if remaining <= 0 {
			delete(c.cooldowns, id)
			continue
		}
		c.cooldowns[id] = remaining
	}
	if c.current != nil {
		c.current.elapsed += dt
	}
}

// CastReady reports whether the current cast has reached its cast time.
func (c *Caster) CastReady() bool {
	return c.current != nil && c.current.elapsed >= c.current.def.CastTime
}

// Complete finishes a cast whose time has elapsed. The activation is checked
// again against current state: a target that moved out of range or a caster
// that can no longer pay rejects the cast without starting the cooldown.
// Returns OutcomeNone when no cast is ready.
func (c *Caster) Complete() Outcome {
	if !c.CastReady() {
		return OutcomeNone
	}
	cs := c.current
	c.current = nil

	outcome := OutcomeRejected
	if c.gate.CanActivate(cs.def, c.owner, cs.target) {
		c.commit(cs.def, cs.target)
		outcome = OutcomeActivated
	}

	slog.Debug("cast completed",
		"ability", cs.def.ID,
		"caster", c.owner.EntityID(),
		"target", actorID(cs.target),
		"outcome", outcome.String())
	return outcome
}

// Interrupt cancels the current cast if it is interruptible.
func (c *Caster) Interrupt() bool {
	if c.current == nil || !c.current.def.Interruptible {
		return false
	}
	c.cancel("interrupted")
	return true
}

// NotifyMoved cancels a cast that cannot continue while moving.
func (c *Caster) NotifyMoved() bool {
	if c.current == nil || c.current.def.CanCastWhileMoving {
		return false
	}
	c.cancel("moved")
	return true
}

// CancelIfTargeting cancels the current cast when its target is entityID.
// Used when the target leaves the world.
func (c *Caster) CancelIfTargeting(entityID uint32) bool {
	if c.current == nil || c.current.target == nil || c.current.target.EntityID() != entityID {
		return false
	}
	c.cancel("target gone")
	return true
}

// CooldownRemaining returns the seconds left before abilityID is usable.
func (c *Caster) CooldownRemaining(abilityID string) float64 {
	return c.cooldowns[abilityID]
}

// Cooldowns returns the ids of abilities on cooldown, sorted.
func (c *Caster) Cooldowns() []string {
	out := make([]string, 0, len(c.cooldowns))
	for id := range c.cooldowns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsCasting reports whether a cast is in progress.
func (c *Caster) IsCasting() bool {
	return c.current != nil
}

// Casting returns the ability being cast, or nil.
func (c *Caster) Casting() *Definition {
	if c.current == nil {
		return nil
	}
	return c.current.def
}

// CastProgress returns cast completion in [0, 1]; 0 when not casting.
func (c *Caster) CastProgress() float64 {
	if c.current == nil {
		return 0
	}
	if c.current.def.CastTime <= 0 {
		return 1
	}
	return min(c.current.elapsed/c.current.def.CastTime, 1)
}

// commit pays the cost, hands every effect to the applier and starts the
// cooldown. Self abilities apply their effects to the caster.
func (c *Caster) commit(def *Definition, target Actor) {
	c.gate.ApplyCost(def, c.owner)

	var recipient effect.Target = target
	if def.Targeting == TargetSelf || target == nil {
		recipient = c.owner
	}
	if c.applier != nil {
		for _, eff := range def.Effects {
			c.applier.Apply(eff, recipient, c.owner)
		}
	}

	if def.Cooldown > 0 {
		c.cooldowns[def.ID] = def.Cooldown
	}
}

func (c *Caster) cancel(reason string) {
	slog.Debug("cast cancelled",
		"ability", c.current.def.ID,
		"caster", c.owner.EntityID(),
		"reason", reason,
		"progress", c.CastProgress())
	c.current = nil
}

func actorID(a Actor) uint32 {
	if a == nil {
		return 0
	}
	return a.EntityID()
}
