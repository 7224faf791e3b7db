package sim

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/gas/internal/game/geo"
)

// Command actions.
const (
	ActionApply     = "apply"
	ActionRemove    = "remove"
	ActionActivate  = "activate"
	ActionMove      = "move"
	ActionInterrupt = "interrupt"
	ActionDespawn   = "despawn"
)

var actions = []string{ActionApply, ActionRemove, ActionActivate, ActionMove, ActionInterrupt, ActionDespawn}

// ErrInvalidScenario wraps every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted simulation: the entities present at start and the
// commands issued at given ticks.
type Scenario struct {
	// Ticks is the number of steps to run; 0 runs until cancelled.
	Ticks    int         `yaml:"ticks"`
	Entities []EntityDoc `yaml:"entities"`
	Commands []Command   `yaml:"commands"`
}

// EntityDoc describes one entity spawned before the first step.
type EntityDoc struct {
	Name     string             `yaml:"name"`
	Kind     string             `yaml:"kind,omitempty"` // actor (default) or marker
	Position []float64          `yaml:"position,omitempty"`
	Layer    uint8              `yaml:"layer,omitempty"`
	Base     map[string]float64 `yaml:"base,omitempty"`
	Tags     []string           `yaml:"tags,omitempty"`
}

// Command is one scripted world command. Tick 0 commands run before the
// first step; tick n commands run right after step n.
type Command struct {
	Tick     int       `yaml:"tick"`
	Action   string    `yaml:"action"`
	Entity   string    `yaml:"entity"`
	Target   string    `yaml:"target,omitempty"`
	Effect   string    `yaml:"effect,omitempty"`
	Ability  string    `yaml:"ability,omitempty"`
	Position []float64 `yaml:"position,omitempty"`
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(s.Commands, func(a, b Command) int { return a.Tick - b.Tick })
	return &s, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	s, err := ParseScenario(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks entity names and command fields. All problems are
// reported together.
func (s *Scenario) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...)))
	}

	if s.Ticks < 0 {
		fail("ticks must not be negative")
	}

	names := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		switch {
		case e.Name == "":
			fail("entity %d: missing name", i)
		case names[e.Name]:
			fail("entity %s: duplicate name", e.Name)
		}
		names[e.Name] = true
		if e.Kind != "" && e.Kind != "actor" && e.Kind != "marker" {
			fail("entity %s: unknown kind %q", e.Name, e.Kind)
		}
		if len(e.Position) > 3 {
			fail("entity %s: position has %d components", e.Name, len(e.Position))
		}
	}

	for i, c := range s.Commands {
		if c.Tick < 0 {
			fail("command %d: negative tick", i)
		}
		if !slices.Contains(actions, c.Action) {
			fail("command %d: unknown action %q", i, c.Action)
			continue
		}
		if !names[c.Entity] {
			fail("command %d: unknown entity %q", i, c.Entity)
		}
		if c.Target != "" && !names[c.Target] {
			fail("command %d: unknown target %q", i, c.Target)
		}
		switch c.Action {
		case ActionApply, ActionRemove:
			if c.Effect == "" {
				fail("command %d: %s needs an effect", i, c.Action)
			}
		case ActionActivate:
			if c.Ability == "" {
				fail("command %d: activate needs an ability", i)
			}
		case ActionMove:
			if len(c.Position) == 0 || len(c.Position) > 3 {
				fail("command %d: move needs a position", i)
			}
		}
	}
	return errors.Join(errs...)
}

func vec(p []float64) geo.Vec3 {
	var v geo.Vec3
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}
	return v
}
