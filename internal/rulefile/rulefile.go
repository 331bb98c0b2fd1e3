// Package rulefile reads binding documents and lowers their rules into the
// values spread.Spreader.Add accepts.
package rulefile

import (
	"errors"
	"fmt"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/spreadjson/api"
	"github.com/agentic-research/spreadjson/spread"
)

// Tags understood inside rules.
const (
	// TagFilter references a named filter: `.mail@href: !filter mailto`.
	TagFilter = "!filter"
	// TagUndefined is the absent filter, a method call without arguments:
	// `.panel::show: !undefined`.
	TagUndefined = "!undefined"
)

var (
	// ErrNoRules is returned for a binding with neither rules nor auto.
	ErrNoRules = errors.New("binding has no rules")
	// ErrUnknownFilter is returned for a !filter naming no registered filter.
	ErrUnknownFilter = errors.New("unknown filter")
)

// FilterLookup resolves a named filter.
type FilterLookup func(name string) (spread.Filter, bool)

// Load reads and parses the binding document at path.
func Load(fs billy.Basic, path string) (*api.Binding, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read binding %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a binding document. JSON documents are valid YAML.
func Parse(data []byte) (*api.Binding, error) {
	var b api.Binding
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if b.Version == "" {
		b.Version = api.Version
	}
	if b.Version != api.Version {
		return nil, fmt.Errorf("unsupported version %q", b.Version)
	}
	return &b, nil
}

// HasRules reports whether the document carries a rule set.
func HasRules(b *api.Binding) bool {
	return b.Rules.Kind != 0
}

// Rules lowers the document's rules. Mappings keep their key order.
func Rules(b *api.Binding, filters FilterLookup) (any, error) {
	if !HasRules(b) {
		return nil, ErrNoRules
	}
	return Lower(&b.Rules, filters)
}

// Lower converts a YAML node into rule values: mappings become ordered
// maps, sequences []any and scalars their plain Go value.
func Lower(n *yaml.Node, filters FilterLookup) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return Lower(n.Content[0], filters)
	case yaml.AliasNode:
		return Lower(n.Alias, filters)
	case yaml.MappingNode:
		m := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := Lower(n.Content[i+1], filters)
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := Lower(c, filters)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		return lowerScalar(n, filters)
	}
	return nil, fmt.Errorf("line %d: unexpected yaml node kind %d", n.Line, n.Kind)
}

func lowerScalar(n *yaml.Node, filters FilterLookup) (any, error) {
	switch n.Tag {
	case TagUndefined:
		return spread.Undefined, nil
	case TagFilter:
		if filters != nil {
			if f, ok := filters(n.Value); ok {
				return f, nil
			}
		}
		return nil, fmt.Errorf("line %d: %w: %q", n.Line, ErrUnknownFilter, n.Value)
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}
