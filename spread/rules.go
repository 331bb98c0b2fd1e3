package spread

import (
	"fmt"
	"strings"

	"github.com/agentic-research/spreadjson/dom"
)

// Add compiles rules and appends the resulting actions.
//
// With a string first argument, the string is a path and the remaining
// arguments are its action specs; a lone path binds to ClassSelector of the
// path. Otherwise every argument is a rule: a list of rules, a mapping of
// path to action specs, or a lone path string. Other shapes are ignored.
func (s *Spreader) Add(args ...any) *Spreader {
	if len(args) == 0 {
		return s
	}
	if path, ok := args[0].(string); ok {
		if len(args) == 1 {
			s.addPath(path, classSelectorFor(path))
		} else {
			s.addPath(path, args[1:]...)
		}
		return s
	}
	for _, arg := range args {
		if entries, ok := mapping(arg); ok {
			for _, e := range entries {
				s.Add(e.key, e.value)
			}
			continue
		}
		if list, ok := asList(arg); ok {
			for _, r := range list {
				s.Add(r)
			}
			continue
		}
		if path, ok := arg.(string); ok {
			s.Add(path)
			continue
		}
		s.logger.Debug("spread: ignoring rule", "type", fmt.Sprintf("%T", arg))
	}
	return s
}

func (s *Spreader) addPath(raw string, specs ...any) {
	p := ParsePath(raw)
	for _, spec := range specs {
		s.addAction(spec, p)
	}
}

// asCallback recognises the function shapes an action spec may take.
func asCallback(spec any) (Callback, bool) {
	switch f := spec.(type) {
	case Callback:
		return f, f != nil
	case func(any, dom.Selection):
		return f, f != nil
	}
	return nil, false
}

func (s *Spreader) addAction(spec any, p Path) {
	if cb, ok := asCallback(spec); ok {
		s.push(p, cb)
		return
	}
	switch t := spec.(type) {
	case string:
		if p.IsArray {
			s.addList(&ListSpec{Target: t, hasTarget: true}, p)
			return
		}
		s.addActionString(t, p)
		return
	case *ListSpec:
		if p.IsArray {
			s.addList(t, p)
			return
		}
		s.logger.Debug("spread: list spec on a non-list path", "path", strings.Join(p.Segments, "."))
		return
	}
	if entries, ok := mapping(spec); ok {
		if p.IsArray {
			s.addList(listSpecFrom(entries), p)
			return
		}
		for _, e := range entries {
			s.addSelector(e.key, e.value, p)
		}
		return
	}
	if list, ok := asList(spec); ok {
		for _, a := range list {
			s.addAction(a, p)
		}
		return
	}
	s.logger.Debug("spread: ignoring action spec", "path", strings.Join(p.Segments, "."), "type", fmt.Sprintf("%T", spec))
}

// addActionString compiles a lone selector descriptor. A trailing "()" means
// a method call without arguments; anything else passes the value unchanged.
func (s *Spreader) addActionString(desc string, p Path) {
	if strings.HasSuffix(desc, "()") {
		s.addSelector(strings.TrimSuffix(desc, "()"), Undefined, p)
		return
	}
	s.addSelector(desc, []any{}, p)
}
