package api

import "gopkg.in/yaml.v3"

// Binding is a declarative binding document: how one kind of data is spread
// onto one kind of page. It is read from YAML or JSON.
type Binding struct {
	// Version of the binding format.
	Version string `yaml:"version" json:"version"`
	// Container is a CSS selector for the element to spread into. Empty
	// means the whole document.
	Container string `yaml:"container,omitempty" json:"container,omitempty"`
	// Select is a JSONPath applied to the data; the first match is spread.
	Select string `yaml:"select,omitempty" json:"select,omitempty"`
	// Auto derives rules from the data itself when Rules is empty.
	Auto bool `yaml:"auto,omitempty" json:"auto,omitempty"`
	// Attributes enables data-js / data-js-list bindings found in the page.
	Attributes bool `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	// Rules is the rule set, kept as a node so key order survives decoding.
	Rules yaml.Node `yaml:"rules,omitempty" json:"-"`
}

// Version is the current binding format version.
const Version = "v1"
