package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/gas/internal/game/tag"
	"github.com/udisondev/gas/internal/world"
)

// Runner drives a World in fixed steps and feeds it a scenario's commands.
type Runner struct {
	World    *world.World
	Scenario *Scenario
	// Step is the simulated seconds per tick.
	Step float64
	// Interval paces steps in wall-clock time; zero runs as fast as possible.
	Interval time.Duration
	// OnEvents receives the attribute changes of each step. Optional.
	OnEvents func(tick int, events []world.Event)

	ids  map[string]uint32
	tick int
	next int // index of the next pending command
}

// EntityState is a point-in-time view of one entity.
type EntityState struct {
	ID         uint32
	Name       string
	Attributes map[string]float64
	Tags       []string
	Effects    []string
	Casting    string
}

// Setup spawns the scenario's entities and runs its tick 0 commands.
func (r *Runner) Setup() error {
	r.ids = make(map[string]uint32)
	r.tick = 0
	r.next = 0
	if r.Scenario == nil {
		return nil
	}

	catalog := r.World.Catalog()
	for _, doc := range r.Scenario.Entities {
		spec := world.EntitySpec{
			Name:       doc.Name,
			Position:   vec(doc.Position),
			Layer:      doc.Layer,
			Attributes: catalog.Attributes(),
			BaseValues: doc.Base,
			Tags:       tag.FromStrings(doc.Tags),
		}
		if doc.Kind == "marker" {
			spec.Kind = world.KindMarker
		}
		r.ids[doc.Name] = r.World.Spawn(spec).EntityID()
	}
	slog.Info("scenario loaded",
		"entities", len(r.Scenario.Entities),
		"commands", len(r.Scenario.Commands),
		"ticks", r.Scenario.Ticks)

	return r.runCommands()
}

// Tick returns the number of steps taken.
func (r *Runner) Tick() int {
	return r.tick
}

// Run takes ticks steps; zero or less falls back to the scenario's tick
// count, and with neither it runs until ctx is cancelled.
func (r *Runner) Run(ctx context.Context, ticks int) error {
	if ticks <= 0 && r.Scenario != nil {
		ticks = r.Scenario.Ticks
	}

	var pace <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	slog.Info("simulation started", "ticks", ticks, "step", r.Step, "interval", r.Interval)

	for ticks <= 0 || r.tick < ticks {
		if pace != nil {
			select {
			case <-ctx.Done():
				slog.Info("simulation stopping", "tick", r.tick)
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.StepOnce(ctx); err != nil {
			return err
		}
	}

	slog.Info("simulation finished", "tick", r.tick)
	return nil
}

// StepOnce advances the world one step, then runs the commands scheduled
// for the new tick.
func (r *Runner) StepOnce(ctx context.Context) error {
	if err := r.World.Tick(ctx, r.Step); err != nil {
		return fmt.Errorf("tick %d: %w", r.tick+1, err)
	}
	r.tick++

	if err := r.runCommands(); err != nil {
		return err
	}

	events := r.World.DrainEvents()
	if r.OnEvents != nil && len(events) > 0 {
		r.OnEvents(r.tick, events)
	}
	return nil
}

func (r *Runner) runCommands() error {
	if r.Scenario == nil {
		return nil
	}
	cmds := r.Scenario.Commands
	for r.next < len(cmds) && cmds[r.next].Tick <= r.tick {
		c := cmds[r.next]
		r.next++
		if err := r.exec(c); err != nil {
			return fmt.Errorf("tick %d: %s %s: %w", r.tick, c.Action, c.Entity, err)
		}
	}
	return nil
}

func (r *Runner) exec(c Command) error {
	id := r.ids[c.Entity]
	target := r.ids[c.Target]

	switch c.Action {
	case ActionApply:
		recipient, instigator := id, uint32(0)
		if c.Target != "" {
			recipient, instigator = target, id
		}
		res, err := r.World.ApplyEffect(c.Effect, recipient, instigator)
		if err != nil {
			return err
		}
		slog.Info("effect applied", "tick", r.tick, "effect", c.Effect, "target", recipient, "result", res.String())

	case ActionRemove:
		recipient := id
		if c.Target != "" {
			recipient = target
		}
		removed := r.World.RemoveEffect(c.Effect, recipient)
		slog.Info("effect removed", "tick", r.tick, "effect", c.Effect, "target", recipient, "removed", removed)

	case ActionActivate:
		outcome, err := r.World.Activate(id, c.Ability, target)
		if err != nil {
			return err
		}
		slog.Info("ability activation",
			"tick", r.tick,
			"caster", c.Entity,
			"ability", c.Ability,
			"target", c.Target,
			"outcome", outcome.String())

	case ActionMove:
		if err := r.World.Move(id, vec(c.Position)); err != nil {
			return err
		}

	case ActionInterrupt:
		slog.Info("cast interrupt", "tick", r.tick, "caster", c.Entity, "interrupted", r.World.Interrupt(id))

	case ActionDespawn:
		if r.World.Despawn(id) {
			delete(r.ids, c.Entity)
		}

	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidScenario, c.Action)
	}
	return nil
}

// Snapshot returns the state of every entity in spawn order.
func (r *Runner) Snapshot() []EntityState {
	entities := r.World.Entities()
	out := make([]EntityState, 0, len(entities))
	for _, e := range entities {
		st := EntityState{
			ID:   e.EntityID(),
			Name: e.Name(),
			Tags: tag.Strings(e.Tags().Tags()),
		}
		if vals := e.Attributes().Values(); len(vals) > 0 {
			st.Attributes = make(map[string]float64, len(vals))
			for _, v := range vals {
				st.Attributes[v.Definition().ID] = v.Current()
			}
		}
		for _, ae := range r.World.Effects().ActiveOn(e.EntityID()) {
			st.Effects = append(st.Effects, ae.Definition.ID)
		}
		if c := e.Caster(); c != nil && c.IsCasting() {
			st.Casting = c.Casting().ID
		}
		out = append(out, st)
	}
	return out
}
