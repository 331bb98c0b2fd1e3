package spread

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agentic-research/spreadjson/dom"
)

// Attributes read by attribute-driven bindings.
const (
	AttrBinding = "data-js"
	AttrList    = "data-js-list"
)

// DefaultBindingCacheSize bounds the number of distinct data-js strings kept
// compiled.
const DefaultBindingCacheSize = 1024

// BindingCache compiles data-js attribute values into Spreaders, once per
// distinct string, and holds the named filters they may reference. It is
// safe for concurrent use.
type BindingCache struct {
	compiled *lru.Cache[string, *Spreader]

	mu      sync.RWMutex
	filters map[string]Filter
}

// NewBindingCache returns a cache holding up to size compiled bindings,
// preloaded with DefaultFilters.
func NewBindingCache(size int) (*BindingCache, error) {
	if size <= 0 {
		size = DefaultBindingCacheSize
	}
	compiled, err := lru.New[string, *Spreader](size)
	if err != nil {
		return nil, fmt.Errorf("binding cache: %w", err)
	}
	return &BindingCache{compiled: compiled, filters: DefaultFilters()}, nil
}

// RegisterFilter makes f available as "|name" in data-js attributes.
func (c *BindingCache) RegisterFilter(name string, f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters[name] = f
}

// Filter returns the named filter.
func (c *BindingCache) Filter(name string) (Filter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.filters[name]
	return f, ok
}

// Len is the number of compiled bindings held.
func (c *BindingCache) Len() int { return c.compiled.Len() }

// Compile returns the Spreader for a data-js value. The value is a comma
// separated list of parts:
//
//	path            text of the element itself
//	sel=path        sel is a selector descriptor relative to the element
//	sel=path|name   apply the named filter first
//	sel()=path      call a method without arguments
func (c *BindingCache) Compile(props string, logger *slog.Logger) *Spreader {
	if s, ok := c.compiled.Get(props); ok {
		return s
	}
	s := New(WithLogger(logger))
	for _, part := range strings.Split(props, ",") {
		selector, path, filter, ok := c.parsePart(strings.TrimSpace(part))
		if !ok {
			s.logger.Debug("spread: dropping binding part", "part", part)
			continue
		}
		s.addPath(path, M(selector, filter))
	}
	c.compiled.Add(props, s)
	return s
}

func (c *BindingCache) parsePart(part string) (selector, path string, filter any, ok bool) {
	sides := strings.Split(part, "=")
	switch len(sides) {
	case 1:
		selector, path = ".", strings.TrimSpace(sides[0])
	case 2:
		selector, path = strings.TrimSpace(sides[0]), strings.TrimSpace(sides[1])
		if selector == "" {
			selector = "."
		}
		if strings.HasPrefix(selector, "::") || strings.HasPrefix(selector, "@") {
			selector = "." + selector
		}
	default:
		return "", "", nil, false
	}

	filter = []any{}
	piped := strings.Split(path, "|")
	switch len(piped) {
	case 1:
	case 2:
		path = strings.TrimSpace(piped[0])
		if f, found := c.Filter(strings.TrimSpace(piped[1])); found {
			filter = f
		}
	default:
		return "", "", nil, false
	}

	if strings.HasSuffix(selector, "()") {
		selector = strings.TrimSpace(strings.TrimSuffix(selector, "()"))
		filter = Undefined
	}
	return selector, path, filter, true
}

// walk applies data-js and data-js-list bindings found below container.
// Elements carrying data-js-list are handled as a list, and only the first
// one per path among siblings drives it.
func (c *BindingCache) walk(value any, container dom.Selection, logger *slog.Logger) {
	children := container.Children()
	var done map[string]bool
	for i := 0; i < children.Len(); i++ {
		child := children.At(i)

		if path, ok := child.Attr(AttrList); ok {
			if done[path] {
				continue
			}
			if done == nil {
				done = make(map[string]bool)
			}
			done[path] = true
			c.list(value, path, child, logger)
			continue
		}

		if props, ok := child.Attr(AttrBinding); ok {
			c.Compile(props, logger).Spread(value, child)
		}
		c.walk(value, child, logger)
	}
}

// list reconciles the data-js-list group that el belongs to. Each item is
// bound through the attributes of its own element.
func (c *BindingCache) list(value any, path string, el dom.Selection, logger *slog.Logger) {
	query := fmt.Sprintf(`[%s="%s"]`, AttrList, strings.ReplaceAll(path, `"`, `\"`))
	r := &reconciler{
		spec: &ListSpec{},
		items: func(item any, el dom.Selection) {
			c.walk(item, el, logger)
		},
		deep: true,
		find: func(dom.Selection) dom.Selection {
			return el.Parent().Find(query)
		},
	}
	r.reconcile(Extract(splitPath(path), value), el)
}
