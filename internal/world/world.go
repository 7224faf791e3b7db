package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gas/internal/data"
	"github.com/udisondev/gas/internal/game/ability"
	"github.com/udisondev/gas/internal/game/attribute"
	"github.com/udisondev/gas/internal/game/effect"
	"github.com/udisondev/gas/internal/game/geo"
	"github.com/udisondev/gas/internal/game/tag"
	"github.com/udisondev/gas/internal/metrics"
)

var (
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrUnknownEffect  = errors.New("unknown effect")
	ErrUnknownAbility = errors.New("unknown ability")
)

// Event is an attribute change on one entity.
type Event struct {
	Entity    uint32
	Attribute string
	Old       float64
	New       float64
}

// Options configures a World.
type Options struct {
	Catalog *data.Catalog
	// Spatial answers range and occlusion queries; nil means open space.
	Spatial ability.Spatial
	// Workers is the number of goroutines ticking entities. Values < 2 tick inline.
	Workers int
	Metrics *metrics.Metrics
}

// World owns every entity and drives the fixed-step simulation.
//
// Entities live in an arena (spawn order) with an id index. All methods
// must be called from one goroutine; Tick fans entity updates out to
// workers internally and joins them before returning.
type World struct {
	catalog *data.Catalog
	effects *effect.Manager
	gate    *ability.Gate
	ids     *IDGenerator
	metrics *metrics.Metrics
	workers int

	arena []*Entity
	index map[uint32]*Entity
}

// New creates an empty World.
func New(opts Options) *World {
	w := &World{
		catalog: opts.Catalog,
		effects: effect.NewManager(),
		gate:    ability.NewGate(opts.Spatial),
		ids:     NewIDGenerator(),
		metrics: opts.Metrics,
		workers: max(opts.Workers, 1),
		index:   make(map[uint32]*Entity),
	}
	w.effects.OnEvent(func(ev effect.Event) {
		if ev.Ended {
			w.metrics.RecordEffectEnded(ev.Reason.String())
			return
		}
		w.metrics.RecordEffectApplied(ev.Applied.String())
	})
	return w
}

// Effects returns the world's effect lifecycle manager.
func (w *World) Effects() *effect.Manager {
	return w.effects
}

// Catalog returns the definitions the world resolves ids against.
func (w *World) Catalog() *data.Catalog {
	return w.catalog
}

// Spawn creates an entity from spec and adds it to the world.
func (w *World) Spawn(spec EntitySpec) *Entity {
	e := &Entity{
		id:    w.ids.Next(spec.Kind),
		name:  spec.Name,
		kind:  spec.Kind,
		pos:   spec.Position,
		layer: spec.Layer,
	}

	if !spec.NoAttributes && spec.Kind != KindMarker {
		e.attrs = attribute.NewSet(spec.Attributes...)
		for id, base := range spec.BaseValues {
			if def, ok := w.catalog.Attribute(id); ok {
				e.attrs.Get(def).SetBase(base)
				continue
			}
			if v, ok := e.attrs.Lookup(id); ok {
				v.SetBase(base)
				continue
			}
			slog.Warn("spawn: unknown attribute base value", "entity", spec.Name, "attribute", id)
		}
		e.attrs.OnChange(e.recordChange)
	}
	if !spec.NoTags {
		e.tags = tag.NewSet(spec.Tags...)
	}
	if spec.Kind != KindMarker {
		e.caster = ability.NewCaster(e, w.gate, w.effects)
	}

	w.arena = append(w.arena, e)
	w.index[e.id] = e

	slog.Debug("entity spawned",
		"id", e.id,
		"name", e.name,
		"position", e.pos,
		"attributes", e.attrs.Len())
	return e
}

// Despawn removes an entity and ends every effect active on it.
func (w *World) Despawn(id uint32) bool {
	e, ok := w.index[id]
	if !ok {
		return false
	}
	ended := w.effects.RemoveAllFrom(id)
	for _, other := range w.arena {
		if other.caster != nil && other.caster.CancelIfTargeting(id) {
			w.metrics.RecordActivation(ability.OutcomeInterrupted.String())
		}
	}
	delete(w.index, id)
	for i, a := range w.arena {
		if a == e {
			w.arena = append(w.arena[:i], w.arena[i+1:]...)
			break
		}
	}
	slog.Debug("entity despawned", "id", id, "effects_ended", ended)
	return true
}

// Entity returns the entity with id.
func (w *World) Entity(id uint32) (*Entity, bool) {
	e, ok := w.index[id]
	return e, ok
}

// Lookup finds an entity by name.
func (w *World) Lookup(name string) (*Entity, bool) {
	for _, e := range w.arena {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// Entities returns all entities in spawn order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, len(w.arena))
	copy(out, w.arena)
	return out
}

// Len returns the number of entities.
func (w *World) Len() int {
	return len(w.arena)
}

// ApplyEffect applies the effect effectID to target on behalf of
// instigator (0 for none).
func (w *World) ApplyEffect(effectID string, targetID, instigatorID uint32) (effect.Result, error) {
	def, ok := w.catalog.Effect(effectID)
	if !ok {
		return effect.ResultIgnored, fmt.Errorf("%w: %s", ErrUnknownEffect, effectID)
	}
	target, ok := w.index[targetID]
	if !ok {
		return effect.ResultIgnored, fmt.Errorf("%w: %d", ErrUnknownEntity, targetID)
	}

	var instigator effect.Target
	if e, ok := w.index[instigatorID]; ok {
		instigator = e
	}
	return w.effects.Apply(def, target, instigator), nil
}

// RemoveEffect ends effectID on target early.
func (w *World) RemoveEffect(effectID string, targetID uint32) bool {
	return w.effects.RemoveByID(effectID, targetID)
}

// Activate asks the caster to activate abilityID against target (0 for none).
func (w *World) Activate(casterID uint32, abilityID string, targetID uint32) (ability.Outcome, error) {
	def, src, target, err := w.resolveActivation(casterID, abilityID, targetID)
	if err != nil {
		return ability.OutcomeNone, err
	}

	outcome := src.caster.TryActivate(def, target)
	w.metrics.RecordActivation(outcome.String())
	return outcome, nil
}

// CanActivate reports whether casterID could activate abilityID against
// target right now, ignoring cooldown and cast state.
func (w *World) CanActivate(casterID uint32, abilityID string, targetID uint32) bool {
	def, src, target, err := w.resolveActivation(casterID, abilityID, targetID)
	if err != nil {
		return false
	}
	return w.gate.CanActivate(def, src, target)
}

// Interrupt cancels the caster's interruptible cast.
func (w *World) Interrupt(casterID uint32) bool {
	e, ok := w.index[casterID]
	if !ok || e.caster == nil {
		return false
	}
	if !e.caster.Interrupt() {
		return false
	}
	w.metrics.RecordActivation(ability.OutcomeInterrupted.String())
	return true
}

// Move relocates an entity. A cast that cannot continue while moving is
// cancelled.
func (w *World) Move(id uint32, pos geo.Vec3) error {
	e, ok := w.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	if e.pos == pos {
		return nil
	}
	e.pos = pos
	if e.caster != nil && e.caster.NotifyMoved() {
		w.metrics.RecordActivation(ability.OutcomeInterrupted.String())
	}
	return nil
}

// AttributeValue returns the current value of attrID on entity id.
func (w *World) AttributeValue(id uint32, attrID string) (float64, bool) {
	e, ok := w.index[id]
	if !ok || e.attrs == nil {
		return 0, false
	}
	if def, ok := w.catalog.Attribute(attrID); ok {
		return e.attrs.Get(def).Current(), true
	}
	return e.attrs.Current(attrID)
}

// HasTag reports whether entity id carries t.
func (w *World) HasTag(id uint32, t tag.Tag) bool {
	e, ok := w.index[id]
	if !ok {
		return false
	}
	return e.tags.Has(t)
}

// Tick advances the simulation by dt seconds:
//
//  1. effect timers, ending expired effects
//  2. attribute timers and regeneration, cooldowns and cast progress,
//     sharded over the configured workers
//  3. completion of casts that reached their cast time, in spawn order
func (w *World) Tick(ctx context.Context, dt float64) error {
	start := time.Now()

	w.effects.Tick(dt)

	if err := w.tickEntities(ctx, dt); err != nil {
		return err
	}

	for _, e := range w.arena {
		if e.caster == nil || !e.caster.CastReady() {
			continue
		}
		outcome := e.caster.Complete()
		w.metrics.RecordActivation(outcome.String())
	}

	w.metrics.ObserveTick(time.Since(start), w.effects.Count(), len(w.arena))
	return nil
}

func (w *World) tickEntities(ctx context.Context, dt float64) error {
	if w.workers < 2 || len(w.arena) < 2*w.workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		tickShard(w.arena, dt)
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	size := (len(w.arena) + w.workers - 1) / w.workers
	for lo := 0; lo < len(w.arena); lo += size {
		shard := w.arena[lo:min(lo+size, len(w.arena))]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tickShard(shard, dt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("ticking entities: %w", err)
	}
	return nil
}

// tickShard touches only the entities it is given.
func tickShard(entities []*Entity, dt float64) {
	for _, e := range entities {
		e.attrs.Tick(dt)
		if e.caster != nil {
			e.caster.Tick(dt)
		}
	}
}

// DrainEvents returns buffered attribute changes and clears the buffers.
// Events of one entity keep their order; entities appear in spawn order.
func (w *World) DrainEvents() []Event {
	var out []Event
	for _, e := range w.arena {
		if len(e.pending) == 0 {
			continue
		}
		out = append(out, e.pending...)
		e.pending = e.pending[:0]
	}
	return out
}

func (w *World) resolveActivation(casterID uint32, abilityID string, targetID uint32) (*ability.Definition, *Entity, ability.Actor, error) {
	def, ok := w.catalog.Ability(abilityID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownAbility, abilityID)
	}
	src, ok := w.index[casterID]
	if !ok || src.caster == nil {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrUnknownEntity, casterID)
	}

	var target ability.Actor
	if e, ok := w.index[targetID]; ok {
		target = e
	}
	return def, src, target, nil
}
