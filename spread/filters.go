package spread

import "strings"

// Mailto turns a non-empty string into a mailto: link and anything else into
// null, which removes the attribute it is bound to.
func Mailto(v any) any {
	if s, ok := v.(string); ok && s != "" {
		return "mailto:" + s
	}
	return nil
}

// Nbsp replaces spaces with non-breaking spaces. Non-strings become "".
func Nbsp(v any) any {
	if s, ok := v.(string); ok {
		return strings.ReplaceAll(s, " ", "\u00a0")
	}
	return ""
}

// DefaultFilters returns a fresh registry of the built-in named filters.
func DefaultFilters() map[string]Filter {
	return map[string]Filter{
		"mailto": Mailto,
		"nbsp":   Nbsp,
	}
}
