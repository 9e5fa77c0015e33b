package fieldpath

// Resolve walks record one segment at a time and returns the value found at
// p. The boolean is false when any intermediate segment is missing or is not
// an object; a present nil leaf is reported as found.
func Resolve(record any, p Path) (any, bool) {
	if len(p) == 0 || record == nil {
		return nil, false
	}
	results := p.Expr().Get(record)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// Assign sets v at p inside record, creating intermediate objects as needed.
// A non-object value sitting on an intermediate segment is replaced by a new
// object. An existing leaf is overwritten.
func Assign(record map[string]any, p Path, v any) {
	if record == nil || len(p) == 0 {
		return
	}
	cur := record
	for _, seg := range p.Parent() {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[p.Leaf()] = v
}

// Clone returns a deep copy of v's objects and arrays. Other values are
// returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}
