package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Relations describes which nested entities to descend into.
// A key being present requests the relation; its value is the relation
// set for the next level down (nil is the same as empty).
type Relations map[string]Relations

// Lookup returns the nested relation set for field and whether the field
// was requested at all.
func (r Relations) Lookup(field string) (Relations, bool) {
	nested, ok := r[field]
	return nested, ok
}

// UnmarshalJSON accepts objects, and true/null as "requested with no
// nested relations". A false value drops the key.
func (r *Relations) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("relations: %w", err)
	}

	out := make(Relations, len(raw))
	for k, v := range raw {
		switch string(v) {
		case "true", "null":
			out[k] = Relations{}
		case "false":
		default:
			var nested Relations
			if err := json.Unmarshal(v, &nested); err != nil {
				return fmt.Errorf("relation %q: %w", k, err)
			}
			out[k] = nested
		}
	}
	*r = out
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (r *Relations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*r = Relations{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: relations must be a mapping", node.Line)
	}

	out := make(Relations, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		switch {
		case val.Kind == yaml.MappingNode:
			var nested Relations
			if err := val.Decode(&nested); err != nil {
				return fmt.Errorf("relation %q: %w", key, err)
			}
			out[key] = nested
		case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
			out[key] = Relations{}
		case val.Kind == yaml.ScalarNode && val.Tag == "!!bool":
			var b bool
			if err := val.Decode(&b); err != nil {
				return fmt.Errorf("relation %q: %w", key, err)
			}
			if b {
				out[key] = Relations{}
			}
		default:
			return fmt.Errorf("line %d: relation %q must be a mapping, bool or null", val.Line, key)
		}
	}
	*r = out
	return nil
}

// ToValue converts the relation tree for canonical serialization.
func (r Relations) ToValue() Object {
	obj := make(Object, len(r))
	for k, nested := range r {
		obj[k] = nested.ToValue()
	}
	return obj
}

// Conditions holds caller-supplied named flags consulted by predicates.
// A missing flag reads as false.
type Conditions map[string]bool

// ToValue converts conditions for canonical serialization.
func (c Conditions) ToValue() Object {
	obj := make(Object, len(c))
	for k, v := range c {
		obj[k] = Bool(v)
	}
	return obj
}

// ExpansionOptions is the (relations, conditions) pair supplied at each
// merge level.
type ExpansionOptions struct {
	Relations  Relations  `json:"relations,omitempty" yaml:"relations,omitempty"`
	Conditions Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// ToValue converts options for canonical serialization.
func (o ExpansionOptions) ToValue() Object {
	return Object{
		"relations":  o.Relations.ToValue(),
		"conditions": o.Conditions.ToValue(),
	}
}

// CallOptions are the options of one Select call: a call-wide pair that
// applies to every entity in the document, plus per-entity overrides.
type CallOptions struct {
	Relations  Relations                   `json:"relations,omitempty" yaml:"relations,omitempty"`
	Conditions Conditions                  `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Entities   map[string]ExpansionOptions `json:"entities,omitempty" yaml:"entities,omitempty"`
}

// Resolve merges options for entity. Precedence low to high: the registry
// default, the call-wide options, the entity-specific override. Merging is
// shallow and last-wins per key.
// A nil receiver is treated as empty call options.
func (c *CallOptions) Resolve(entity string, defaults ExpansionOptions) ExpansionOptions {
	if c == nil {
		c = &CallOptions{}
	}
	override := c.Entities[entity]
	return ExpansionOptions{
		Relations:  MergeRelations(defaults.Relations, c.Relations, override.Relations),
		Conditions: MergeConditions(defaults.Conditions, c.Conditions, override.Conditions),
	}
}

// ToValue converts call options for canonical serialization.
// A nil receiver serializes the same as empty options.
func (c *CallOptions) ToValue() Object {
	if c == nil {
		c = &CallOptions{}
	}
	entities := make(Object, len(c.Entities))
	for name, opts := range c.Entities {
		entities[name] = opts.ToValue()
	}
	return Object{
		"relations":  c.Relations.ToValue(),
		"conditions": c.Conditions.ToValue(),
		"entities":   entities,
	}
}

// MergeRelations merges relation sets shallowly; later layers win.
func MergeRelations(layers ...Relations) Relations {
	out := Relations{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// MergeConditions merges condition sets; later layers win.
func MergeConditions(layers ...Conditions) Conditions {
	out := Conditions{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// DecodeCallOptions parses call options from YAML or JSON bytes.
// Unknown keys are rejected to catch typos like "relation:".
func DecodeCallOptions(data []byte) (*CallOptions, error) {
	opts := &CallOptions{}
	if len(data) == 0 {
		return opts, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode call options: %w", err)
	}
	return opts, nil
}
