package spread

import "strings"

// Flags control when an action runs.
type Flags struct {
	// IsArray marks a list path, reconciled against a DOM template group.
	IsArray bool
	// RunTruthy and RunFalsy gate the action on the truthiness of the value.
	RunTruthy bool
	RunFalsy  bool
	// ToEmpty replaces a falsy value with "" before the callback sees it.
	ToEmpty bool
}

// Path is a compiled key path plus its execution flags.
type Path struct {
	Segments []string
	Flags
}

// suffixes are checked in this order; "?!" must win over "!" and "?".
var suffixes = []string{"[]", "?!", "?", "!"}

func splitSuffix(raw string) (path, suffix string) {
	for _, s := range suffixes {
		if strings.HasSuffix(raw, s) {
			return raw[:len(raw)-len(s)], s
		}
	}
	return raw, ""
}

// ParsePath parses a dotted key path with an optional trailing suffix:
//
//	(none)  run always
//	[]      the value is a list
//	?       run only when truthy
//	!       run only when falsy, with the value replaced by ""
//	?!      run always, with falsy values replaced by ""
func ParsePath(raw string) Path {
	path, suffix := splitSuffix(raw)
	p := Path{
		Segments: splitPath(path),
		Flags:    Flags{RunTruthy: true, RunFalsy: true},
	}
	switch suffix {
	case "[]":
		p.IsArray = true
	case "?!":
		p.ToEmpty = true
	case "?":
		p.RunFalsy = false
	case "!":
		p.RunTruthy = false
		p.ToEmpty = true
	}
	return p
}

// splitPath splits on dots. Empty segments are dropped, so ".label" and
// "label" name the same key.
func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, ".") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Extract walks path through value by key lookup. The first missing key or
// non-container step yields Undefined.
func Extract(path []string, value any) any {
	curr := value
	for _, key := range path {
		if !isObject(curr) {
			return Undefined
		}
		next, ok := lookup(curr, key)
		if !ok {
			return Undefined
		}
		curr = next
	}
	return curr
}

// ClassSelector is the default selector for a path: a class named after the
// path with dots turned into dashes. The root path yields ".", the container.
func ClassSelector(path []string) string {
	return "." + strings.Join(path, "-")
}

func classSelectorFor(raw string) string {
	path, _ := splitSuffix(raw)
	return ClassSelector(splitPath(path))
}

// shouldRun applies the suffix gates to an extracted value. It returns the
// value the callback should receive.
func (f Flags) shouldRun(value any) (any, bool) {
	if Falsy(value) {
		if !f.RunFalsy {
			return nil, false
		}
		if f.ToEmpty {
			value = ""
		}
		return value, true
	}
	return value, f.RunTruthy
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}
