package spread

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/ohler55/ojg/oj"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the "absent" value. Extracting a missing path yields it, and a
// filter returns it to skip an update. nil stays JSON null.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Falsy reports whether v counts as false for the ?, ! and ?! path suffixes:
// null, undefined, false, zero, "" and empty lists.
func Falsy(v any) bool {
	switch t := v.(type) {
	case nil, undefined:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0 || math.IsNaN(t)
	case []any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isObject matches the values that can be spread: maps and lists.
func isObject(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return t != nil
	case []any:
		return t != nil
	case *orderedmap.OrderedMap[string, any]:
		return t != nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return false
}

// asList returns v as a list when it is one. Byte slices are not lists.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// pair is one key/value of a mapping, in iteration order.
type pair struct {
	key   string
	value any
}

// mapping returns the entries of an ordered or plain mapping. Plain Go maps
// have no order, so their keys are sorted.
func mapping(v any) ([]pair, bool) {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if t == nil {
			return nil, false
		}
		out := make([]pair, 0, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			out = append(out, pair{key: p.Key, value: p.Value})
		}
		return out, true
	case map[string]any:
		if t == nil {
			return nil, false
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]pair, len(keys))
		for i, k := range keys {
			out[i] = pair{key: k, value: t[k]}
		}
		return out, true
	}
	return nil, false
}

// lookup is a single key step of path extraction. Lists are indexed by
// decimal keys and answer "length" with their size.
func lookup(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		r, ok := t[key]
		return r, ok
	case *orderedmap.OrderedMap[string, any]:
		if t == nil {
			return nil, false
		}
		return t.Get(key)
	}
	if list, ok := asList(v); ok {
		if key == "length" {
			return len(list), true
		}
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(list) {
			return nil, false
		}
		return list[i], true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && !rv.IsNil() && rv.Type().Key().Kind() == reflect.String {
		r := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !r.IsValid() {
			return nil, false
		}
		return r.Interface(), true
	}
	return nil, false
}

// toText renders a value for text content and attribute values.
func toText(v any) string {
	switch t := v.(type) {
	case nil, undefined:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any:
		return oj.JSON(t, &oj.Options{Sort: true})
	}
	return fmt.Sprint(v)
}

// M builds an ordered mapping from alternating keys and values. Rule sets
// compile in the order their keys were given.
//
//	spread.M("name", ".name", "items[]", spread.M("template", ".item"))
func M(kv ...any) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return m
}
