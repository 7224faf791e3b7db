package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gas/internal/game/attribute"
	"github.com/udisondev/gas/internal/game/tag"
)

// testTarget is a minimal Target for manager tests.
type testTarget struct {
	id    uint32
	attrs *attribute.Set
	tags  *tag.Set
}

func newTestTarget(id uint32) *testTarget {
	return &testTarget{id: id, attrs: attribute.NewSet(), tags: tag.NewSet()}
}

func (t *testTarget) EntityID() uint32           { return t.id }
func (t *testTarget) Attributes() *attribute.Set { return t.attrs }
func (t *testTarget) Tags() *tag.Set             { return t.tags }

// recordingBehavior counts apply/remove calls.
type recordingBehavior struct {
	applies []int
	removes int
}

func (b *recordingBehavior) Kind() string       { return "Recording" }
func (b *recordingBehavior) Apply(ctx Context)  { b.applies = append(b.applies, ctx.StackCount) }
func (b *recordingBehavior) Remove(ctx Context) { b.removes++ }

var health = &attribute.Definition{ID: "health", Name: "Health", DefaultBaseValue: 100, MinValue: 0, MaxValue: 100}

var power = &attribute.Definition{ID: "power", DefaultBaseValue: 100, MinValue: 0, MaxValue: 10000}

func current(t *testing.T, target *testTarget, def *attribute.Definition) float64 {
	t.Helper()
	return target.attrs.Get(def).Current()
}

func TestApply_DurationModifierScenario(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	poison := &Definition{
		ID:       "poison",
		Duration: 5,
		Behavior: &DurationModifier{Attribute: health, Type: attribute.Flat, Value: -20},
	}

	assert.Equal(t, ResultStarted, m.Apply(poison, target, nil))
	assert.Equal(t, 80.0, current(t, target, health))

	for i := 0; i < 4; i++ {
		m.Tick(1)
		target.attrs.Tick(1)
	}
	assert.Equal(t, 80.0, current(t, target, health), "no auto-heal before expiry")

	m.Tick(1)
	target.attrs.Tick(1)
	assert.Equal(t, 100.0, current(t, target, health))
	assert.Equal(t, 0, m.Count())
}

func TestTick_ExpiresOnFractionalSteps(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	poison := &Definition{
		ID:          "poison",
		Duration:    5,
		GrantedTags: []tag.Tag{"status.poisoned"},
		Behavior:    &DurationModifier{Attribute: health, Type: attribute.Flat, Value: -20},
	}
	require.Equal(t, ResultStarted, m.Apply(poison, target, nil))

	for i := 0; i < 99; i++ {
		m.Tick(0.05)
		target.attrs.Tick(0.05)
	}
	require.Equal(t, 1, m.Count())
	assert.Equal(t, 80.0, current(t, target, health))

	m.Tick(0.05)
	target.attrs.Tick(0.05)
	assert.Equal(t, 0, m.Count(), "5s effect is gone after 100 steps of 0.05s")
	assert.Equal(t, 100.0, current(t, target, health))
	assert.False(t, target.tags.Has("status.poisoned"))
	assert.Equal(t, 0, target.attrs.Get(health).ModifierCount())
}

func TestApply_InstantCreatesNoRecord(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	target.tags = tag.NewSet()
	hit := &Definition{
		ID:          "hit",
		GrantedTags: []tag.Tag{"state.hit"},
		Behavior:    &InstantModifier{Attribute: health, Type: attribute.Flat, Value: -10},
	}

	assert.Equal(t, ResultInstant, m.Apply(hit, target, nil))
	assert.Equal(t, ResultInstant, m.Apply(hit, target, nil))

	assert.Equal(t, 80.0, current(t, target, health), "two independent base changes")
	assert.Equal(t, 0, m.Count())
	assert.False(t, target.tags.Has("state.hit"), "instant effects never grant tags")

	assert.False(t, m.Remove(hit, target), "removing an instant effect is a no-op")
	assert.Equal(t, 80.0, current(t, target, health))
}

func TestApply_InstantPercentIsSequential(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	boost := &Definition{ID: "boost", Behavior: &InstantModifier{Attribute: power, Type: attribute.Percent, Value: 0.5}}

	m.Apply(boost, target, nil)
	m.Apply(boost, target, nil)

	// 100 * 1.5 * 1.5, each application multiplies the already-changed base
	assert.InDelta(t, 225.0, current(t, target, power), 1e-9)
}

func TestApply_StackingRefresh(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	bleed := &Definition{
		ID:        "bleed",
		Duration:  4,
		CanStack:  true,
		MaxStacks: 3,
		Behavior:  &DurationModifier{Attribute: health, Type: attribute.Flat, Value: -10},
	}

	require.Equal(t, ResultStarted, m.Apply(bleed, target, nil))
	m.Tick(1)
	require.Equal(t, ResultStacked, m.Apply(bleed, target, nil))

	ae, ok := m.Active("bleed", 1)
	require.True(t, ok)
	assert.Equal(t, 2, ae.StackCount)
	assert.Equal(t, 4.0, ae.TimeRemaining, "refresh resets to full duration")
	assert.Equal(t, 80.0, current(t, target, health))

	m.Apply(bleed, target, nil)
	assert.Equal(t, 3, ae.StackCount)
	assert.Equal(t, 70.0, current(t, target, health))

	m.Tick(2)
	assert.Equal(t, ResultRefreshed, m.Apply(bleed, target, nil), "past max stacks only refreshes")
	assert.Equal(t, 3, ae.StackCount)
	assert.Equal(t, 4.0, ae.TimeRemaining)
	assert.Equal(t, 70.0, current(t, target, health))

	v := target.attrs.Get(health)
	assert.Equal(t, 1, v.ModifierCount(), "re-application never double-stacks modifiers")
}

func TestApply_NonStackableRefreshesOnly(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	slow := &Definition{ID: "slow", Duration: 3, MaxStacks: 5, Behavior: &DurationModifier{Attribute: power, Type: attribute.Percent, Value: -0.3}}

	m.Apply(slow, target, nil)
	m.Tick(2)
	assert.Equal(t, ResultRefreshed, m.Apply(slow, target, nil))

	ae, _ := m.Active("slow", 1)
	assert.Equal(t, 1, ae.StackCount)
	assert.Equal(t, 3.0, ae.TimeRemaining)
	assert.InDelta(t, 70.0, current(t, target, power), 1e-9)
}

func TestApply_RefreshReappliesWithStackCount(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	rec := &recordingBehavior{}
	def := &Definition{ID: "rec", Duration: 10, CanStack: true, MaxStacks: 2, Behavior: rec}

	m.Apply(def, target, nil)
	m.Apply(def, target, nil)
	m.Apply(def, target, nil)

	assert.Equal(t, []int{1, 2, 2}, rec.applies)
	assert.Equal(t, 0, rec.removes)
}

func TestTick_ExpiryCleanup(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	shield := &Definition{
		ID:          "shield",
		Duration:    2,
		GrantedTags: []tag.Tag{"state.shielded", "state.buffed"},
		Behavior:    &DurationModifier{Attribute: power, Type: attribute.Flat, Value: 50},
	}

	m.Apply(shield, target, nil)
	assert.True(t, target.tags.HasAll(shield.GrantedTags))
	ae, _ := m.Active("shield", 1)
	source := ae.Source

	m.Tick(1.5)
	assert.Equal(t, 1, m.Count())

	m.Tick(0.5)
	assert.Equal(t, 0, m.Count())
	assert.False(t, target.tags.HasAny(shield.GrantedTags))
	assert.Equal(t, 0, target.attrs.Get(power).SourceCount(source), "no residual modifiers for the source")
	assert.Equal(t, 100.0, current(t, target, power))
}

func TestRemove_EarlyTermination(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	curse := &Definition{
		ID:          "curse",
		Duration:    30,
		GrantedTags: []tag.Tag{"state.cursed"},
		Behavior:    &DurationModifier{Attribute: health, Type: attribute.Flat, Value: -30},
	}

	m.Apply(curse, target, nil)
	assert.Equal(t, 70.0, current(t, target, health))

	assert.True(t, m.Remove(curse, target))
	assert.Equal(t, 100.0, current(t, target, health))
	assert.False(t, target.tags.Has("state.cursed"))
	assert.Equal(t, 0, m.Count())

	assert.False(t, m.Remove(curse, target), "second removal finds nothing")
	assert.Equal(t, ResultStarted, m.Apply(curse, target, nil), "Absent again, a new instance starts")
}

func TestManager_OnePerDefinitionAndTarget(t *testing.T) {
	m := NewManager()
	a := newTestTarget(1)
	b := newTestTarget(2)
	haste := &Definition{ID: "haste", Duration: 5, Behavior: TagGrant{}}
	regen := &Definition{ID: "regen", Duration: 5, Behavior: TagGrant{}}

	m.Apply(haste, a, nil)
	m.Apply(haste, a, nil)
	m.Apply(haste, b, nil)
	m.Apply(regen, a, nil)

	assert.Equal(t, 3, m.Count())
	assert.Len(t, m.ActiveOn(1), 2)
	assert.Len(t, m.ActiveOn(2), 1)
}

func TestManager_SharedGrantedTagSurvivesOtherExpiry(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	short := &Definition{ID: "short_root", Duration: 1, GrantedTags: []tag.Tag{"state.rooted"}, Behavior: TagGrant{}}
	long := &Definition{ID: "long_root", Duration: 5, GrantedTags: []tag.Tag{"state.rooted"}, Behavior: TagGrant{}}

	m.Apply(short, target, nil)
	m.Apply(long, target, nil)
	m.Tick(1)

	assert.True(t, target.tags.Has("state.rooted"))
	m.Tick(4)
	assert.False(t, target.tags.Has("state.rooted"))
}

func TestManager_MissingComponentsAreNoops(t *testing.T) {
	m := NewManager()
	bare := &testTarget{id: 9}
	def := &Definition{
		ID:          "burn",
		Duration:    2,
		GrantedTags: []tag.Tag{"status.burning"},
		Behavior:    &DurationModifier{Attribute: health, Type: attribute.Flat, Value: -5},
	}

	assert.Equal(t, ResultStarted, m.Apply(def, bare, nil))
	m.Tick(2)
	assert.Equal(t, 0, m.Count())
}

func TestManager_NilInputsIgnored(t *testing.T) {
	m := NewManager()
	assert.Equal(t, ResultIgnored, m.Apply(nil, newTestTarget(1), nil))
	assert.Equal(t, ResultIgnored, m.Apply(&Definition{ID: "x"}, nil, nil))
	assert.False(t, m.Remove(nil, nil))
}

func TestManager_UnknownAttributeSkipsStep(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	def := &Definition{ID: "ghost", Duration: 3, Behavior: &DurationModifier{Type: attribute.Flat, Value: -5}}

	assert.Equal(t, ResultStarted, m.Apply(def, target, nil))
	assert.Equal(t, 0, target.attrs.Len())
	m.Tick(3)
	assert.Equal(t, 0, m.Count())
}

func TestManager_RemoveAllFrom(t *testing.T) {
	m := NewManager()
	a := newTestTarget(1)
	b := newTestTarget(2)
	for _, id := range []string{"a", "b", "c"} {
		m.Apply(&Definition{ID: id, Duration: 10, Behavior: TagGrant{}}, a, nil)
	}
	m.Apply(&Definition{ID: "a", Duration: 10, Behavior: TagGrant{}}, b, nil)

	assert.Equal(t, 3, m.RemoveAllFrom(1))
	assert.Equal(t, 1, m.Count())
	_, ok := m.Active("a", 2)
	assert.True(t, ok)
}

// chainBehavior applies another effect when it is removed.
type chainBehavior struct {
	m    *Manager
	next *Definition
}

func (c *chainBehavior) Kind() string  { return "Chain" }
func (c *chainBehavior) Apply(Context) {}
func (c *chainBehavior) Remove(ctx Context) {
	c.m.Apply(c.next, ctx.Target, ctx.Instigator)
}

func TestTick_RemoveLogicMayApplyEffects(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	after := &Definition{ID: "aftershock", Duration: 3, Behavior: TagGrant{}}
	first := &Definition{ID: "quake", Duration: 1, Behavior: &chainBehavior{m: m, next: after}}

	m.Apply(first, target, nil)
	m.Tick(1)

	_, ok := m.Active("aftershock", 1)
	assert.True(t, ok)
	assert.Equal(t, 1, m.Count())
}

func TestManager_Events(t *testing.T) {
	m := NewManager()
	target := newTestTarget(1)
	caster := newTestTarget(7)

	var events []Event
	m.OnEvent(func(ev Event) { events = append(events, ev) })

	def := &Definition{ID: "mark", Duration: 1, CanStack: true, MaxStacks: 2, Behavior: TagGrant{}}
	m.Apply(def, target, caster)
	m.Apply(def, target, caster)
	m.Tick(1)

	require.Len(t, events, 3)
	assert.Equal(t, ResultStarted, events[0].Applied)
	assert.Equal(t, uint32(7), events[0].Instigator)
	assert.Equal(t, ResultStacked, events[1].Applied)
	assert.Equal(t, 2, events[1].StackCount)
	assert.True(t, events[2].Ended)
	assert.Equal(t, EndExpired, events[2].Reason)
}

func TestDefinition_StackLimit(t *testing.T) {
	assert.Equal(t, 1, (&Definition{}).StackLimit())
	assert.Equal(t, 4, (&Definition{MaxStacks: 4}).StackLimit())
	assert.True(t, (&Definition{Duration: 0}).IsInstant())
	assert.True(t, (&Definition{Duration: -1}).IsInstant())
	assert.True(t, (&Definition{Duration: 0.1}).IsDuration())
}
