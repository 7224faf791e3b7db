package effect

import (
	"log/slog"

	"github.com/udisondev/gas/internal/game/attribute"
)

// Result describes what Apply did.
type Result uint8

const (
	ResultIgnored   Result = iota // nil definition or target
	ResultInstant                 // applied once, no active instance
	ResultStarted                 // new active instance
	ResultRefreshed               // existing instance, duration reset
	ResultStacked                 // existing instance, stack added and duration reset
)

func (r Result) String() string {
	switch r {
	case ResultInstant:
		return "instant"
	case ResultStarted:
		return "started"
	case ResultRefreshed:
		return "refreshed"
	case ResultStacked:
		return "stacked"
	default:
		return "ignored"
	}
}

// EndReason tells why an active instance ended.
type EndReason uint8

const (
	EndExpired EndReason = iota
	EndRemoved
)

func (r EndReason) String() string {
	if r == EndRemoved {
		return "removed"
	}
	return "expired"
}

// Event is published for every apply and every end of an active instance.
type Event struct {
	Effect     string
	Target     uint32
	Instigator uint32
	StackCount int
	Applied    Result // zero for end events
	Ended      bool
	Reason     EndReason
}

type activeKey struct {
	effect string
	target uint32
}

// Manager tracks active duration effects for every target it has seen.
//
// State machine per (definition, target): Absent → Active → Absent, with
// Active → Active on re-application (refresh, optional stack).
// Not safe for concurrent use; the simulation drives it from one goroutine.
type Manager struct {
	active    map[activeKey]*ActiveEffect
	order     []*ActiveEffect
	nextID    uint64
	listeners []func(Event)
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		active: make(map[activeKey]*ActiveEffect),
		order:  make([]*ActiveEffect, 0, 32),
	}
}

// OnEvent registers a listener for lifecycle events.
func (m *Manager) OnEvent(l func(Event)) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// Apply applies def to target on behalf of instigator (may be nil).
//
//   - instant: behavior applied once with stack 1, nothing tracked
//   - new duration effect: instance created, behavior applied, tags granted
//   - existing instance: stack incremented when allowed and below the
//     limit, duration reset unconditionally, behavior re-applied with the
//     current stack count
func (m *Manager) Apply(def *Definition, target, instigator Target) Result {
	if def == nil || target == nil {
		return ResultIgnored
	}

	key := activeKey{effect: def.ID, target: target.EntityID()}
	if ae, ok := m.active[key]; ok {
		result := ResultRefreshed
		if def.CanStack && ae.StackCount < def.StackLimit() {
			ae.StackCount++
			result = ResultStacked
		}
		ae.TimeRemaining = def.Duration
		if def.Behavior != nil {
			def.Behavior.Apply(ae.context(instigator))
		}

		slog.Debug("effect refreshed",
			"effect", def.ID,
			"target", key.target,
			"stacks", ae.StackCount,
			"result", result.String())
		m.publish(Event{Effect: def.ID, Target: key.target, Instigator: entityID(instigator), StackCount: ae.StackCount, Applied: result})
		return result
	}

	if def.IsInstant() {
		if def.Behavior != nil {
			def.Behavior.Apply(Context{
				Target:     target,
				Instigator: instigator,
				StackCount: 1,
				Source:     attribute.SourceKey{Kind: attribute.SourceEffect, ID: def.ID},
			})
		}
		m.publish(Event{Effect: def.ID, Target: key.target, Instigator: entityID(instigator), StackCount: 1, Applied: ResultInstant})
		return ResultInstant
	}

	m.nextID++
	ae := &ActiveEffect{
		ID:            m.nextID,
		Definition:    def,
		Target:        target,
		Instigator:    instigator,
		TimeRemaining: def.Duration,
		StackCount:    1,
		Source:        instanceSource(def.ID, m.nextID),
	}
	m.active[key] = ae
	m.order = append(m.order, ae)

	if def.Behavior != nil {
		def.Behavior.Apply(ae.context(instigator))
	}
	target.Tags().Grant(def.GrantedTags)

	slog.Debug("effect started",
		"effect", def.ID,
		"target", key.target,
		"duration", def.Duration,
		"source", ae.Source.String())
	m.publish(Event{Effect: def.ID, Target: key.target, Instigator: entityID(instigator), StackCount: 1, Applied: ResultStarted})
	return ResultStarted
}

// Tick advances every active instance by dt and ends those whose remaining
// time reached zero. Expired instances are unlinked before their remove
// logic runs, so behaviors may safely apply further effects.
func (m *Manager) Tick(dt float64) {
	if len(m.order) == 0 {
		return
	}

	var expired []*ActiveEffect
	n := 0
	for _, ae := range m.order {
		if !ae.Tick(dt) {
			expired = append(expired, ae)
			delete(m.active, activeKey{effect: ae.Definition.ID, target: ae.Target.EntityID()})
			continue
		}
		m.order[n] = ae
		n++
	}
	clear(m.order[n:])
	m.order = m.order[:n]

	for _, ae := range expired {
		m.end(ae, EndExpired)
	}
}

// Remove ends the active instance of def on target early.
// Returns false when nothing was active.
func (m *Manager) Remove(def *Definition, target Target) bool {
	if def == nil || target == nil {
		return false
	}
	return m.RemoveByID(def.ID, target.EntityID())
}

// RemoveByID is Remove keyed by ids.
func (m *Manager) RemoveByID(effectID string, targetID uint32) bool {
	key := activeKey{effect: effectID, target: targetID}
	ae, ok := m.active[key]
	if !ok {
		return false
	}
	delete(m.active, key)
	m.unlink(ae)
	m.end(ae, EndRemoved)
	return true
}

// RemoveAllFrom ends every active instance on target and returns how many
// were ended. Used when an entity leaves the world.
func (m *Manager) RemoveAllFrom(targetID uint32) int {
	var ended []*ActiveEffect
	n := 0
	for _, ae := range m.order {
		if ae.Target.EntityID() == targetID {
			ended = append(ended, ae)
			delete(m.active, activeKey{effect: ae.Definition.ID, target: targetID})
			continue
		}
		m.order[n] = ae
		n++
	}
	clear(m.order[n:])
	m.order = m.order[:n]

	for _, ae := range ended {
		m.end(ae, EndRemoved)
	}
	return len(ended)
}

// Active returns the active instance of effectID on targetID.
func (m *Manager) Active(effectID string, targetID uint32) (*ActiveEffect, bool) {
	ae, ok := m.active[activeKey{effect: effectID, target: targetID}]
	return ae, ok
}

// ActiveOn returns the active instances on targetID in application order.
func (m *Manager) ActiveOn(targetID uint32) []*ActiveEffect {
	var out []*ActiveEffect
	for _, ae := range m.order {
		if ae.Target.EntityID() == targetID {
			out = append(out, ae)
		}
	}
	return out
}

// Count returns the number of active instances.
func (m *Manager) Count() int {
	return len(m.order)
}

func (m *Manager) unlink(target *ActiveEffect) {
	for i, ae := range m.order {
		if ae == target {
			copy(m.order[i:], m.order[i+1:])
			m.order[len(m.order)-1] = nil
			m.order = m.order[:len(m.order)-1]
			return
		}
	}
}

func (m *Manager) end(ae *ActiveEffect, reason EndReason) {
	def := ae.Definition
	if def.Behavior != nil {
		def.Behavior.Remove(ae.context(ae.Instigator))
	}
	ae.Target.Tags().Revoke(def.GrantedTags)

	slog.Debug("effect ended",
		"effect", def.ID,
		"target", ae.Target.EntityID(),
		"reason", reason.String(),
		"stacks", ae.StackCount)
	m.publish(Event{
		Effect:     def.ID,
		Target:     ae.Target.EntityID(),
		Instigator: entityID(ae.Instigator),
		StackCount: ae.StackCount,
		Ended:      true,
		Reason:     reason,
	})
}

func (m *Manager) publish(ev Event) {
	for _, l := range m.listeners {
		l(ev)
	}
}

func entityID(t Target) uint32 {
	if t == nil {
		return 0
	}
	return t.EntityID()
}
