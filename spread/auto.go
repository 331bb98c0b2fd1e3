package spread

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AutoRules derives a rule set from an example value: every scalar leaf
// binds its path to ClassSelector of that path. Maps and lists are walked,
// list entries by index. Map keys are visited in sorted order unless the map
// is ordered.
func AutoRules(value any) *orderedmap.OrderedMap[string, any] {
	rules := orderedmap.New[string, any]()
	collectLeaves(value, nil, rules)
	return rules
}

func collectLeaves(value any, prefix []string, rules *orderedmap.OrderedMap[string, any]) {
	visit := func(key string, child any) {
		path := append(prefix[:len(prefix):len(prefix)], key)
		if !isObject(child) {
			rules.Set(joinPath(path), ClassSelector(path))
			return
		}
		collectLeaves(child, path, rules)
	}

	if entries, ok := mapping(value); ok {
		for _, e := range entries {
			visit(e.key, e.value)
		}
		return
	}
	if list, ok := asList(value); ok {
		for i, child := range list {
			visit(strconv.Itoa(i), child)
		}
	}
}
