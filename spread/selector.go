package spread

import (
	"errors"
	"strings"

	"github.com/agentic-research/spreadjson/dom"
)

// Target is a parsed selector descriptor.
type Target struct {
	// Selector is relative to the container; "" is the container itself.
	Selector string
	// Method is set for "sel::method" descriptors, Attr for "sel@attr".
	Method string
	Attr   string
}

// ParseTarget parses "sel::method", "sel@attr" or a bare "sel" (which means
// "sel::text"). A descriptor starting with "::" or "@" is resolved against
// ClassSelector(path). It reports false for descriptors with more than one
// operator or an empty method or attribute name.
func ParseTarget(desc string, path []string) (Target, bool) {
	isMethod := strings.Contains(desc, "::")
	isAttr := !isMethod && strings.Contains(desc, "@")
	if !isMethod && !isAttr {
		desc += "::text"
		isMethod = true
	}
	if strings.HasPrefix(desc, "::") || strings.HasPrefix(desc, "@") {
		desc = ClassSelector(path) + desc
	}

	sep := "@"
	if isMethod {
		sep = "::"
	}
	parts := strings.Split(desc, sep)
	if len(parts) > 2 {
		return Target{}, false
	}
	sel, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if name == "" {
		return Target{}, false
	}
	if sel == "." {
		sel = ""
	}
	t := Target{Selector: sel}
	if isMethod {
		t.Method = name
	} else {
		t.Attr = name
	}
	return t, true
}

func (t Target) find(container dom.Selection) dom.Selection {
	if t.Selector == "" {
		return container
	}
	return container.Find(t.Selector)
}

// classToggle parses the "class(on/off)" and "class(name)" pseudo attributes.
func (t Target) classToggle() (names []string, ok bool) {
	if !strings.HasPrefix(t.Attr, "class(") || !strings.HasSuffix(t.Attr, ")") {
		return nil, false
	}
	inner := strings.TrimSpace(t.Attr[len("class(") : len(t.Attr)-1])
	names = strings.Split(inner, "/")
	if len(names) == 2 {
		names[0], names[1] = strings.TrimSpace(names[0]), strings.TrimSpace(names[1])
		return names, true
	}
	return []string{inner}, true
}

// addSelector compiles one selector descriptor with its filter spec.
func (s *Spreader) addSelector(desc string, filterSpec any, p Path) {
	t, ok := ParseTarget(desc, p.Segments)
	if !ok {
		s.logger.Debug("spread: dropping malformed selector", "descriptor", desc)
		return
	}
	filter := compileFilter(filterSpec)

	if filter == nil {
		if t.Method == "" {
			s.logger.Debug("spread: attribute needs a value", "descriptor", desc)
			return
		}
		s.push(p, func(_ any, container dom.Selection) {
			s.invoke(t.find(container), t.Method)
		})
		return
	}

	if t.Method != "" {
		s.push(p, func(value any, container dom.Selection) {
			res := filter(value)
			if IsUndefined(res) {
				return
			}
			s.invoke(t.find(container), t.Method, toText(res))
		})
		return
	}

	if names, ok := t.classToggle(); ok {
		if len(names) == 2 {
			s.push(p, func(value any, container dom.Selection) {
				el := t.find(container)
				on, off := names[0], names[1]
				if Falsy(filter(value)) {
					on, off = off, on
				}
				el.AddClass(on)
				el.RemoveClass(off)
			})
			return
		}
		s.push(p, func(value any, container dom.Selection) {
			el := t.find(container)
			if Falsy(filter(value)) {
				el.RemoveClass(names[0])
			} else {
				el.AddClass(names[0])
			}
		})
		return
	}

	s.push(p, func(value any, container dom.Selection) {
		res := filter(value)
		if IsUndefined(res) {
			return
		}
		el := t.find(container)
		if res == nil {
			el.RemoveAttr(t.Attr)
			return
		}
		el.SetAttr(t.Attr, toText(res))
	})
}

func (s *Spreader) invoke(el dom.Selection, method string, args ...string) {
	if err := el.Invoke(method, args...); err != nil {
		if errors.Is(err, dom.ErrUnknownMethod) {
			s.logger.Debug("spread: skipping call", "method", method)
			return
		}
		s.logger.Warn("spread: dom call failed", "method", method, "error", err)
	}
}
