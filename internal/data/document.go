package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/gas/internal/game/geo"
)

// Document is the serializable form of a definition set. It is what YAML
// files contain and what the database repository loads and saves.
type Document struct {
	Attributes []AttributeDoc `yaml:"attributes"`
	Effects    []EffectDoc    `yaml:"effects"`
	Abilities  []AbilityDoc   `yaml:"abilities"`
}

// AttributeDoc describes one attribute definition.
type AttributeDoc struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name,omitempty"`
	Description  string  `yaml:"description,omitempty"`
	Default      float64 `yaml:"default"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	Regeneration bool    `yaml:"regeneration,omitempty"`
	RegenRate    float64 `yaml:"regen_rate,omitempty"`
	RegenDelay   float64 `yaml:"regen_delay,omitempty"`
}

// EffectDoc describes one effect definition. Kind selects the behavior
// factory; Params are passed to it verbatim.
type EffectDoc struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Kind        string            `yaml:"kind"`
	Params      map[string]string `yaml:"params,omitempty"`
	Duration    float64           `yaml:"duration,omitempty"`
	CanStack    bool              `yaml:"can_stack,omitempty"`
	MaxStacks   int               `yaml:"max_stacks,omitempty"`
	GrantedTags []string          `yaml:"granted_tags,omitempty"`
}

// AbilityDoc describes one ability definition.
type AbilityDoc struct {
	ID                 string  `yaml:"id"`
	Name               string  `yaml:"name,omitempty"`
	Description        string  `yaml:"description,omitempty"`
	Cooldown           float64 `yaml:"cooldown,omitempty"`
	CastTime           float64 `yaml:"cast_time,omitempty"`
	CanCastWhileMoving bool    `yaml:"can_cast_while_moving"`
	Interruptible      bool    `yaml:"interruptible"`
	Cost               float64 `yaml:"cost,omitempty"`
	CostAttribute      string  `yaml:"cost_attribute,omitempty"`
	Targeting          string  `yaml:"targeting"`
	Dimension          string  `yaml:"dimension"`
	UseRangeCheck      bool    `yaml:"use_range_check"`
	Range              float64 `yaml:"range"`
	Radius             float64 `yaml:"radius"`
	TargetableLayers   uint32  `yaml:"targetable_layers"`
	OcclusionLayers    uint32  `yaml:"occlusion_layers"`

	Effects             []string `yaml:"effects,omitempty"`
	AbilityTags         []string `yaml:"ability_tags,omitempty"`
	RequiredTags        []string `yaml:"required_tags,omitempty"`
	BlockedByTags       []string `yaml:"blocked_by_tags,omitempty"`
	TargetRequiredTags  []string `yaml:"target_required_tags,omitempty"`
	TargetBlockedByTags []string `yaml:"target_blocked_by_tags,omitempty"`
}

// DefaultAbilityDoc returns the field defaults applied to abilities whose
// YAML omits them.
func DefaultAbilityDoc() AbilityDoc {
	return AbilityDoc{
		CanCastWhileMoving: true,
		Interruptible:      true,
		Targeting:          "self",
		Dimension:          "2d",
		UseRangeCheck:      true,
		Range:              5,
		Radius:             3,
		TargetableLayers:   uint32(geo.AllLayers),
		OcclusionLayers:    uint32(geo.DefaultOcclusion),
	}
}

// UnmarshalYAML fills omitted fields from DefaultAbilityDoc.
func (a *AbilityDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain AbilityDoc
	p := plain(DefaultAbilityDoc())
	if err := n.Decode(&p); err != nil {
		return err
	}
	*a = AbilityDoc(p)
	return nil
}

// ParseDocument decodes a YAML definition document.
func ParseDocument(b []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding definitions: %w", err)
	}
	return doc, nil
}

// ReadDocument reads a YAML definition document from path.
func ReadDocument(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading definitions %s: %w", path, err)
	}
	doc, err := ParseDocument(b)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document as YAML.
func (d Document) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding definitions: %w", err)
	}
	return b, nil
}
