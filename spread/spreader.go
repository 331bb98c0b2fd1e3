// Package spread binds JSON-like values onto existing HTML.
//
// A rule set is compiled once into a Spreader, an ordered list of actions.
// Each action pairs a key path in the data with a DOM mutation. Spread then
// runs every action against one value and one container element:
//
//	s := spread.Compile(spread.M(
//		"name", ".name",
//		"items[]", spread.M(
//			"template", ".item",
//			"spread", spread.M(".label", ".label"),
//		),
//	))
//	s.Spread(data, doc.Root())
//
// Malformed rules compile to nothing and missing data resolves to Undefined;
// nothing in this package returns an error from Add or Spread.
package spread

import (
	"log/slog"

	"github.com/agentic-research/spreadjson/dom"
)

// Callback performs the DOM work of an action.
type Callback func(value any, container dom.Selection)

// Action is one compiled unit: where to read and what to do with it.
type Action struct {
	Path
	Callback Callback
}

// Option configures a Spreader.
type Option func(*Spreader)

// WithLogger routes diagnostics (dropped rules, unknown methods) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Spreader) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAttributeBindings makes Spread also honour data-js and data-js-list
// attributes below the container, compiling them through cache.
func WithAttributeBindings(cache *BindingCache) Option {
	return func(s *Spreader) {
		s.bindings = cache
	}
}

// Spreader is an ordered, reusable list of actions. Add appends during
// compilation; Spread only reads. It is not safe to Add while spreading.
type Spreader struct {
	actions  []Action
	logger   *slog.Logger
	bindings *BindingCache
	opts     []Option
}

// New returns an empty Spreader.
func New(opts ...Option) *Spreader {
	s := &Spreader{logger: slog.New(slog.DiscardHandler), opts: opts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile returns a Spreader with rules added.
func Compile(rules any, opts ...Option) *Spreader {
	return New(opts...).Add(rules)
}

// Actions returns a copy of the compiled actions.
func (s *Spreader) Actions() []Action {
	out := make([]Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// Len is the number of compiled actions.
func (s *Spreader) Len() int { return len(s.actions) }

// child compiles a nested rule set with the same options.
func (s *Spreader) child(rules any) *Spreader {
	return New(s.opts...).Add(rules)
}

func (s *Spreader) push(p Path, cb Callback) {
	s.actions = append(s.actions, Action{Path: p, Callback: cb})
}

// Spread runs every action against value inside container. Values that are
// not maps or lists, and nil or empty containers, are ignored. When the
// container holds several elements only the first is used.
func (s *Spreader) Spread(value any, container dom.Selection) *Spreader {
	if !isObject(value) || container == nil {
		return s
	}
	if container.Len() > 1 {
		container = container.At(0)
	}

	for _, a := range s.actions {
		v, ok := a.shouldRun(Extract(a.Segments, value))
		if !ok {
			continue
		}
		a.Callback(v, container)
	}

	if s.bindings != nil && container.Len() != 0 {
		s.bindings.walk(value, container, s.logger)
	}
	return s
}

// SpreadDocument spreads value into the first element matching selector, or
// into the whole document when selector is empty.
func (s *Spreader) SpreadDocument(value any, doc *dom.Document, selector string) *Spreader {
	return s.Spread(value, doc.Select(selector))
}

// Receiver returns a function that spreads every map or list it is handed
// into container. Anything else goes to onError, when set.
func (s *Spreader) Receiver(container dom.Selection, onError func(value any)) func(value any) {
	return func(value any) {
		if isObject(value) {
			s.Spread(value, container)
			return
		}
		if onError != nil {
			onError(value)
		}
	}
}
