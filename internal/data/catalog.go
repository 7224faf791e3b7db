package data

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gas/internal/game/ability"
	"github.com/udisondev/gas/internal/game/attribute"
	"github.com/udisondev/gas/internal/game/effect"
	"github.com/udisondev/gas/internal/game/geo"
	"github.com/udisondev/gas/internal/game/tag"
)

var (
	ErrDuplicateID       = errors.New("duplicate definition id")
	ErrMissingID         = errors.New("definition without id")
	ErrUnknownAttribute  = errors.New("unknown attribute")
	ErrUnknownEffect     = errors.New("unknown effect")
	ErrUnknownKind       = effect.ErrUnknownKind
	ErrInvalidDefinition = errors.New("invalid definition")
)

// Catalog holds resolved, immutable definitions by id.
// Lookups on a nil Catalog report absence.
type Catalog struct {
	attributes map[string]*attribute.Definition
	effects    map[string]*effect.Definition
	abilities  map[string]*ability.Definition

	attributeOrder []*attribute.Definition
	effectOrder    []*effect.Definition
	abilityOrder   []*ability.Definition
}

// Attribute returns the attribute definition with id.
func (c *Catalog) Attribute(id string) (*attribute.Definition, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.attributes[id]
	return d, ok
}

// Effect returns the effect definition with id.
func (c *Catalog) Effect(id string) (*effect.Definition, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.effects[id]
	return d, ok
}

// Ability returns the ability definition with id.
func (c *Catalog) Ability(id string) (*ability.Definition, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.abilities[id]
	return d, ok
}

// Attributes returns a copy of the attribute definitions in document order.
func (c *Catalog) Attributes() []*attribute.Definition {
	if c == nil {
		return nil
	}
	out := make([]*attribute.Definition, len(c.attributeOrder))
	copy(out, c.attributeOrder)
	return out
}

// Effects returns a copy of the effect definitions in document order.
func (c *Catalog) Effects() []*effect.Definition {
	if c == nil {
		return nil
	}
	out := make([]*effect.Definition, len(c.effectOrder))
	copy(out, c.effectOrder)
	return out
}

// Abilities returns a copy of the ability definitions in document order.
func (c *Catalog) Abilities() []*ability.Definition {
	if c == nil {
		return nil
	}
	out := make([]*ability.Definition, len(c.abilityOrder))
	copy(out, c.abilityOrder)
	return out
}

// LoadCatalog reads and builds a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	c, err := BuildCatalog(doc)
	if err != nil {
		return nil, fmt.Errorf("building catalog from %s: %w", path, err)
	}
	slog.Info("loaded definitions",
		"path", path,
		"attributes", len(c.attributeOrder),
		"effects", len(c.effectOrder),
		"abilities", len(c.abilityOrder))
	return c, nil
}

// ParseCatalog builds a catalog from YAML bytes.
func ParseCatalog(b []byte) (*Catalog, error) {
	doc, err := ParseDocument(b)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(doc)
}

// BuildCatalog resolves every reference in doc. Attributes are built first,
// then effects (which reference attributes), then abilities (which reference
// both). All problems are reported together.
func BuildCatalog(doc Document) (*Catalog, error) {
	c := &Catalog{
		attributes: make(map[string]*attribute.Definition, len(doc.Attributes)),
		effects:    make(map[string]*effect.Definition, len(doc.Effects)),
		abilities:  make(map[string]*ability.Definition, len(doc.Abilities)),
	}

	var errs []error
	for i := range doc.Attributes {
		if err := c.addAttribute(&doc.Attributes[i]); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range doc.Effects {
		if err := c.addEffect(&doc.Effects[i]); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range doc.Abilities {
		if err := c.addAbility(&doc.Abilities[i]); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func (c *Catalog) addAttribute(d *AttributeDoc) error {
	if d.ID == "" {
		return fmt.Errorf("attribute %q: %w", d.Name, ErrMissingID)
	}
	if _, ok := c.attributes[d.ID]; ok {
		return fmt.Errorf("attribute %s: %w", d.ID, ErrDuplicateID)
	}

	def := &attribute.Definition{
		ID:                d.ID,
		Name:              d.Name,
		Description:       d.Description,
		DefaultBaseValue:  d.Default,
		MinValue:          d.Min,
		MaxValue:          d.Max,
		HasRegeneration:   d.Regeneration,
		RegenerationRate:  d.RegenRate,
		RegenerationDelay: d.RegenDelay,
	}
	if d.Min > d.Max || d.Default < d.Min || d.Default > d.Max {
		slog.Warn("attribute bounds corrected",
			"attribute", d.ID,
			"min", d.Min,
			"max", d.Max,
			"default", d.Default)
	}
	def.Sanitize()

	c.attributes[def.ID] = def
	c.attributeOrder = append(c.attributeOrder, def)
	return nil
}

func (c *Catalog) addEffect(d *EffectDoc) error {
	if d.ID == "" {
		return fmt.Errorf("effect %q: %w", d.Name, ErrMissingID)
	}
	if _, ok := c.effects[d.ID]; ok {
		return fmt.Errorf("effect %s: %w", d.ID, ErrDuplicateID)
	}
	if id, ok := d.Params["attribute"]; ok {
		if _, known := c.attributes[id]; !known {
			return fmt.Errorf("effect %s: %w: %s", d.ID, ErrUnknownAttribute, id)
		}
	}

	behavior, err := effect.NewBehavior(d.Kind, d.Params, c.Attribute)
	if err != nil {
		return fmt.Errorf("effect %s: %w", d.ID, err)
	}

	maxStacks := d.MaxStacks
	if maxStacks < 1 {
		maxStacks = 1
	}

	def := &effect.Definition{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Duration:    d.Duration,
		CanStack:    d.CanStack,
		MaxStacks:   maxStacks,
		GrantedTags: tag.FromStrings(d.GrantedTags),
		Behavior:    behavior,
	}
	c.effects[def.ID] = def
	c.effectOrder = append(c.effectOrder, def)
	return nil
}

func (c *Catalog) addAbility(d *AbilityDoc) error {
	if d.ID == "" {
		return fmt.Errorf("ability %q: %w", d.Name, ErrMissingID)
	}
	if _, ok := c.abilities[d.ID]; ok {
		return fmt.Errorf("ability %s: %w", d.ID, ErrDuplicateID)
	}

	targeting, ok := ability.ParseTargetingKind(d.Targeting)
	if !ok {
		return fmt.Errorf("ability %s: %w: targeting %q", d.ID, ErrInvalidDefinition, d.Targeting)
	}
	dim, ok := ability.ParseDimension(d.Dimension)
	if !ok {
		return fmt.Errorf("ability %s: %w: dimension %q", d.ID, ErrInvalidDefinition, d.Dimension)
	}

	var costAttr *attribute.Definition
	if d.CostAttribute != "" {
		costAttr, ok = c.attributes[d.CostAttribute]
		if !ok {
			return fmt.Errorf("ability %s: cost: %w: %s", d.ID, ErrUnknownAttribute, d.CostAttribute)
		}
	}

	effects := make([]*effect.Definition, 0, len(d.Effects))
	for _, id := range d.Effects {
		eff, ok := c.effects[id]
		if !ok {
			return fmt.Errorf("ability %s: %w: %s", d.ID, ErrUnknownEffect, id)
		}
		effects = append(effects, eff)
	}

	def := &ability.Definition{
		ID:                  d.ID,
		Name:                d.Name,
		Description:         d.Description,
		Cooldown:            d.Cooldown,
		CastTime:            d.CastTime,
		CanCastWhileMoving:  d.CanCastWhileMoving,
		Interruptible:       d.Interruptible,
		Cost:                d.Cost,
		CostAttribute:       costAttr,
		Targeting:           targeting,
		Dimension:           dim,
		UseRangeCheck:       d.UseRangeCheck,
		Range:               d.Range,
		Radius:              d.Radius,
		TargetableLayers:    geo.LayerMask(d.TargetableLayers),
		OcclusionLayers:     geo.LayerMask(d.OcclusionLayers),
		Effects:             effects,
		AbilityTags:         tag.FromStrings(d.AbilityTags),
		RequiredTags:        tag.FromStrings(d.RequiredTags),
		BlockedByTags:       tag.FromStrings(d.BlockedByTags),
		TargetRequiredTags:  tag.FromStrings(d.TargetRequiredTags),
		TargetBlockedByTags: tag.FromStrings(d.TargetBlockedByTags),
	}
	c.abilities[def.ID] = def
	c.abilityOrder = append(c.abilityOrder, def)
	return nil
}
