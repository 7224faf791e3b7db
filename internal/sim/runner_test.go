package sim

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/udisondev/gas/internal/data"
	"github.com/udisondev/gas/internal/world"
)

const definitions = `
attributes:
  - {id: health, default: 100, min: 0, max: 100}
  - {id: mana, default: 40, min: 0, max: 40}
effects:
  - id: poison
    kind: DurationModifier
    duration: 1
    granted_tags: [status.poisoned]
    params: {attribute: health, value: "-20"}
abilities:
  - id: venom
    targeting: target
    range: 10
    cost: 20
    cost_attribute: mana
    cast_time: 0.5
    can_cast_while_moving: false
    effects: [poison]
`

const scenario = `
ticks: 4
entities:
  - {name: mage, position: [0, 0, 0]}
  - {name: wolf, position: [3, 0, 0], base: {health: 90}}
  - {name: impact, kind: marker, tags: [zone.fire]}
commands:
  - {tick: 1, action: activate, entity: mage, ability: venom, target: wolf}
  - {tick: 0, action: apply, entity: mage, effect: poison}
`

func newRunner(t *testing.T, scenarioYAML string) *Runner {
	t.Helper()
	catalog, err := data.ParseCatalog([]byte(definitions))
	require.NoError(t, err)
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	r := &Runner{
		World:    world.New(world.Options{Catalog: catalog}),
		Scenario: sc,
		Step:     0.25,
	}
	require.NoError(t, r.Setup())
	return r
}

func stateOf(t *testing.T, r *Runner, name string) EntityState {
	t.Helper()
	for _, st := range r.Snapshot() {
		if st.Name == name {
			return st
		}
	}
	t.Fatalf("entity %s not found", name)
	return EntityState{}
}

func TestParseScenario_SortsCommandsByTick(t *testing.T) {
	sc, err := ParseScenario([]byte(scenario))
	require.NoError(t, err)
	require.Len(t, sc.Commands, 2)
	assert.Equal(t, 0, sc.Commands[0].Tick)
	assert.Equal(t, ActionApply, sc.Commands[0].Action)
}

func TestParseScenario_Invalid(t *testing.T) {
	bad := `
ticks: -1
entities:
  - {name: a}
  - {name: a}
  - {name: b, kind: tree, position: [1, 2, 3, 4]}
commands:
  - {tick: 1, action: fly, entity: a}
  - {tick: 1, action: apply, entity: ghost}
  - {tick: 1, action: activate, entity: a, target: nobody}
  - {tick: 1, action: move, entity: a}
`
	_, err := ParseScenario([]byte(bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScenario))
	for _, msg := range []string{
		"ticks must not be negative",
		"entity a: duplicate name",
		`unknown kind "tree"`,
		"position has 4 components",
		`unknown action "fly"`,
		`unknown entity "ghost"`,
		"apply needs an effect",
		`unknown target "nobody"`,
		"activate needs an ability",
		"move needs a position",
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestRunner_SetupRunsTickZeroCommands(t *testing.T) {
	r := newRunner(t, scenario)

	mage := stateOf(t, r, "mage")
	assert.Equal(t, 80.0, mage.Attributes["health"])
	assert.Equal(t, []string{"poison"}, mage.Effects)
	assert.Equal(t, []string{"status.poisoned"}, mage.Tags)

	wolf := stateOf(t, r, "wolf")
	assert.Equal(t, 90.0, wolf.Attributes["health"])

	impact := stateOf(t, r, "impact")
	assert.Nil(t, impact.Attributes)
	assert.Equal(t, []string{"zone.fire"}, impact.Tags)
}

func TestRunner_RunScenario(t *testing.T) {
	r := newRunner(t, scenario)

	var changes []world.Event
	r.OnEvents = func(tick int, events []world.Event) {
		changes = append(changes, events...)
	}

	require.NoError(t, r.Run(context.Background(), 0))
	assert.Equal(t, 4, r.Tick())

	// tick 1: cast starts. tick 3: 0.5s elapsed, cast commits. tick 4: mage poison (1s) expired.
	mage := stateOf(t, r, "mage")
	assert.Equal(t, 100.0, mage.Attributes["health"])
	assert.Equal(t, 20.0, mage.Attributes["mana"])
	assert.Empty(t, mage.Effects)
	assert.Empty(t, mage.Casting)

	wolf := stateOf(t, r, "wolf")
	assert.Equal(t, 70.0, wolf.Attributes["health"])
	assert.Equal(t, []string{"poison"}, wolf.Effects)

	assert.NotEmpty(t, changes)
}

func TestRunner_CastVisibleMidway(t *testing.T) {
	r := newRunner(t, scenario)
	ctx := context.Background()

	require.NoError(t, r.StepOnce(ctx))
	assert.Equal(t, "venom", stateOf(t, r, "mage").Casting)
}

func TestRunner_MoveInterruptsCast(t *testing.T) {
	r := newRunner(t, scenario+`
  - {tick: 2, action: move, entity: mage, position: [1, 0, 0]}
`)
	require.NoError(t, r.Run(context.Background(), 0))

	mage := stateOf(t, r, "mage")
	assert.Equal(t, 40.0, mage.Attributes["mana"], "cancelled cast costs nothing")
	assert.Empty(t, stateOf(t, r, "wolf").Effects)
}

func TestRunner_ReapplyAfterExpiryStartsFresh(t *testing.T) {
	r := newRunner(t, `
entities:
  - {name: a}
commands:
  - {tick: 0, action: apply, entity: a, effect: poison}
  - {tick: 4, action: apply, entity: a, effect: poison}
`)
	require.NoError(t, r.Run(context.Background(), 4))

	id := r.ids["a"]
	ae, ok := r.World.Effects().Active("poison", id)
	require.True(t, ok)
	assert.Equal(t, 1, ae.StackCount)
	assert.Equal(t, 1.0, ae.TimeRemaining)
	assert.Equal(t, 80.0, stateOf(t, r, "a").Attributes["health"])
}

func TestRunner_DespawnedEntityFailsLaterCommands(t *testing.T) {
	r := newRunner(t, `
entities:
  - {name: a}
commands:
  - {tick: 1, action: despawn, entity: a}
  - {tick: 2, action: apply, entity: a, effect: poison}
`)
	err := r.Run(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, world.ErrUnknownEntity)
	assert.Contains(t, err.Error(), "tick 2: apply a")
}

func TestRunner_PacedRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newRunner(t, `entities: [{name: a}]`)
	r.Interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Run(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, r.Tick())
}

func TestShippedScenario(t *testing.T) {
	catalog, err := data.LoadCatalog(filepath.Join("..", "..", "config", "definitions.yaml"))
	require.NoError(t, err)
	sc, err := LoadScenario(filepath.Join("..", "..", "config", "scenario.yaml"))
	require.NoError(t, err)

	r := &Runner{World: world.New(world.Options{Catalog: catalog, Workers: 2}), Scenario: sc, Step: 0.05}
	require.NoError(t, r.Setup())
	require.NoError(t, r.Run(context.Background(), 0))
	assert.Equal(t, sc.Ticks, r.Tick())
}
