package spread

import (
	"strings"

	"github.com/agentic-research/spreadjson/dom"
)

// EmptyClass marks the placeholder element left behind by an empty list.
const EmptyClass = "js-list-empty"

// Hook observes one list element. item is nil while an element is being
// removed.
type Hook func(el dom.Selection, item any)

// ListSpec describes what a "path[]" rule does with its list.
//
// With Target set the list is joined into a string and applied to Target like
// any selector descriptor. Otherwise every element matching Template inside
// the container is one list entry: surplus elements are removed from the end,
// missing ones are cloned from the last, and each is spread with Spread.
type ListSpec struct {
	Template string
	// Spread is the rule set for each item, or a compiled *Spreader.
	Spread    any
	Fallback  any
	DeepClone bool

	Target string
	// Join defaults to ", " when nil.
	Join *string
	// Between wraps the joined string: one entry is used on both sides.
	Between []string

	BeforeUpdate Hook
	BeforeDelete func(el dom.Selection)
	AfterUpdate  Hook
	AfterCreate  Hook

	hasFallback bool
	hasTarget   bool
}

// listSpecFrom reads the mapping form of a list spec.
func listSpecFrom(entries []pair) *ListSpec {
	ls := &ListSpec{}
	for _, e := range entries {
		switch e.key {
		case "template":
			ls.Template, _ = e.value.(string)
		case "spread":
			ls.Spread = e.value
		case "fallback":
			ls.Fallback, ls.hasFallback = e.value, true
		case "deepClone":
			ls.DeepClone = !Falsy(e.value)
		case "target":
			ls.Target, ls.hasTarget = toText(e.value), true
		case "join":
			sep := toText(e.value)
			ls.Join = &sep
		case "between":
			ls.Between = betweenFrom(e.value)
		case "beforeUpdate":
			ls.BeforeUpdate = asHook(e.value)
		case "afterUpdate":
			ls.AfterUpdate = asHook(e.value)
		case "afterCreate":
			ls.AfterCreate = asHook(e.value)
		case "beforeDelete":
			if f, ok := e.value.(func(dom.Selection)); ok {
				ls.BeforeDelete = f
			}
		}
	}
	return ls
}

func asHook(v any) Hook {
	switch f := v.(type) {
	case Hook:
		return f
	case func(dom.Selection, any):
		return f
	}
	return nil
}

func betweenFrom(v any) []string {
	if s, ok := v.(string); ok {
		return []string{s}
	}
	list, ok := asList(v)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, x := range list {
		out[i] = toText(x)
	}
	return out
}

func (ls *ListSpec) fallbackValue() (any, bool) {
	return ls.Fallback, ls.hasFallback || ls.Fallback != nil
}

func (s *Spreader) addList(ls *ListSpec, p Path) {
	if ls.Target != "" || ls.hasTarget {
		s.addSelector(ls.Target, Filter(ls.joiner()), p)
		return
	}
	if ls.Template == "" || ls.Spread == nil {
		s.logger.Debug("spread: list spec needs template and spread", "path", strings.Join(p.Segments, "."))
		return
	}
	nested, ok := ls.Spread.(*Spreader)
	if !ok {
		nested = s.child(ls.Spread)
	}
	if nested == nil || (nested.Len() == 0 && nested.bindings == nil) {
		s.logger.Debug("spread: list spec compiled to nothing", "path", strings.Join(p.Segments, "."))
		return
	}

	var fallback []any
	if fb, ok := ls.fallbackValue(); ok {
		if list, ok := asList(fb); ok {
			fallback = list
		} else {
			fallback = []any{fb}
		}
	}

	template := ls.Template
	r := &reconciler{
		spec:     ls,
		items:    func(item any, el dom.Selection) { nested.Spread(item, el) },
		fallback: fallback,
		find:     func(container dom.Selection) dom.Selection { return container.Find(template) },
	}
	s.push(p, func(value any, container dom.Selection) {
		r.reconcile(value, container)
	})
}

// joiner renders a list as one delimited string for join mode.
func (ls *ListSpec) joiner() func(any) any {
	sep := ", "
	if ls.Join != nil {
		sep = *ls.Join
	}
	var fallback any = ""
	if fb, ok := ls.fallbackValue(); ok {
		fallback = fb
	}
	if list, ok := asList(fallback); ok && len(list) == 0 {
		fallback = ""
	}
	var between []string
	switch len(ls.Between) {
	case 0:
	case 1:
		between = []string{ls.Between[0], ls.Between[0]}
	default:
		between = ls.Between[:2]
	}

	return func(data any) any {
		if Falsy(data) {
			data = fallback
			if _, ok := asList(data); !ok {
				return data
			}
		}
		list, ok := asList(data)
		if !ok {
			list = []any{data}
		}
		parts := make([]string, len(list))
		for i, x := range list {
			parts[i] = toText(x)
		}
		joined := strings.Join(parts, sep)
		if between != nil {
			return between[0] + joined + between[1]
		}
		return joined
	}
}

// reconciler keeps the elements matching a template in step with a list.
// The elements themselves are the only state: entries are matched by
// position, never by identity.
type reconciler struct {
	spec     *ListSpec
	items    func(item any, el dom.Selection)
	fallback []any
	deep     bool
	find     func(container dom.Selection) dom.Selection
}

func (r *reconciler) reconcile(value any, container dom.Selection) {
	array, ok := asList(value)
	if !ok || len(array) == 0 {
		array = r.fallback
	}

	els := r.find(container)
	n, m := els.Len(), len(array)
	if n < 1 {
		return
	}
	leave := max(1, min(m, n))

	spec := r.spec
	for i := n - 1; i >= leave; i-- {
		el := els.At(i)
		if spec.BeforeUpdate != nil {
			spec.BeforeUpdate(el, nil)
		}
		if spec.BeforeDelete != nil {
			spec.BeforeDelete(el)
		}
		el.Remove()
	}

	first := els.At(0)
	if m == 0 {
		first.AddClass(EmptyClass)
		return
	}
	first.RemoveClass(EmptyClass)

	for i := 0; i < leave; i++ {
		el := els.At(i)
		if spec.BeforeUpdate != nil {
			spec.BeforeUpdate(el, array[i])
		}
		r.items(array[i], el)
		if spec.AfterUpdate != nil {
			spec.AfterUpdate(el, array[i])
		}
	}

	last := els.At(leave - 1)
	for i := leave; i < m; i++ {
		el := last.Clone(spec.DeepClone || r.deep)
		last.After(el)
		last = el

		r.items(array[i], el)
		if spec.AfterCreate != nil {
			spec.AfterCreate(el, array[i])
		}
		if spec.AfterUpdate != nil {
			spec.AfterUpdate(el, array[i])
		}
	}
}
