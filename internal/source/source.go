// Package source loads the values that get spread: JSON or YAML documents,
// SQLite record tables, and JSONPath selections within them.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// ErrNoMatch is returned by Select when the JSONPath matches nothing.
var ErrNoMatch = errors.New("jsonpath matched nothing")

// Load reads a data file. Files ending in .yaml or .yml are YAML, anything
// else is JSON.
func Load(fs billy.Basic, path string) (any, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read data %s: %w", path, err)
	}
	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v, err = ParseYAML(data)
	default:
		v, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("data %s: %w", path, err)
	}
	return v, nil
}

// ParseJSON decodes JSON. Integers come back as int64, other numbers as
// float64.
func ParseJSON(data []byte) (any, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return v, nil
}

// ParseYAML decodes YAML into plain maps and slices.
func ParseYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return v, nil
}

// Select applies a JSONPath expression and returns its first match. An
// empty expression returns value unchanged.
func Select(value any, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return value, nil
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	results := x.Get(value)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, expr)
	}
	return results[0], nil
}
