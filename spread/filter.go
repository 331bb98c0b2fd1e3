package spread

// Filter transforms an extracted value before it is applied. Returning
// Undefined skips the update, nil clears it.
type Filter func(value any) any

func identity(v any) any { return v }

// asFilter recognises the function shapes a filter spec may take.
func asFilter(spec any) (Filter, bool) {
	switch f := spec.(type) {
	case Filter:
		return f, f != nil
	case func(any) any:
		return f, f != nil
	}
	return nil, false
}

// compileFilter turns a filter spec into a Filter. A nil result (from an
// Undefined spec) means "call without arguments", which only method
// descriptors accept.
//
//	Undefined           no filter
//	Filter              used as is
//	[]                  identity
//	[ifFalsy]           ifFalsy replaces falsy values
//	[ifFalsy, ifTruthy] pick by truthiness, functions are applied
//	anything else       constant
func compileFilter(spec any) Filter {
	if IsUndefined(spec) {
		return nil
	}
	if f, ok := asFilter(spec); ok {
		return f
	}
	list, ok := asList(spec)
	if !ok {
		return func(any) any { return spec }
	}
	switch len(list) {
	case 0:
		return identity
	case 1:
		ifFalsy := list[0]
		if f, ok := asFilter(ifFalsy); ok {
			return func(v any) any {
				if Falsy(v) {
					return f(v)
				}
				return v
			}
		}
		return func(v any) any {
			if Falsy(v) {
				return ifFalsy
			}
			return v
		}
	}
	ifFalsy, ifTruthy := list[0], list[1]
	return func(v any) any {
		res := ifTruthy
		if Falsy(v) {
			res = ifFalsy
		}
		if f, ok := asFilter(res); ok {
			return f(v)
		}
		return res
	}
}
