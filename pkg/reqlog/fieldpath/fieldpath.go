// Package fieldpath resolves dotted paths such as "req.body.password" against
// decoded value trees.
//
// A tree node is one of three kinds: an object (map[string]any or
// map[string]string), an array ([]any or []string), or a scalar (anything
// else). Paths address object keys by name and array elements by index, so
// "items.0.name" and "items[0].name" are equivalent.
package fieldpath

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind is the variant of a tree node.
type Kind int

const (
	Scalar Kind = iota
	Object
	Array
)

// KindOf reports the variant of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case map[string]any, map[string]string:
		return Object
	case []any, []string:
		return Array
	default:
		return Scalar
	}
}

// Parse splits a path into segments. Brackets are accepted as an alternative
// to dots and may quote a key containing dots: `headers["x.y"]`.
func Parse(path string) []string {
	var (
		segs []string
		cur  strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '[':
			end := strings.IndexByte(path[i+1:], ']')
			if end < 0 {
				cur.WriteString(path[i:])
				i = len(path)
				continue
			}
			flush()
			segs = append(segs, strings.Trim(path[i+1:i+1+end], `"'`))
			i += end + 1
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	return segs
}

// Lookup returns the direct child of node named key.
func Lookup(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case map[string]string:
		v, ok := n[key]
		return v, ok
	case []any:
		i, ok := index(key, len(n))
		if !ok {
			return nil, false
		}
		return n[i], true
	case []string:
		i, ok := index(key, len(n))
		if !ok {
			return nil, false
		}
		return n[i], true
	}
	return nil, false
}

// Get resolves path against root. A top-level key that literally equals
// path wins over its dotted interpretation.
func Get(root any, path string) (any, bool) {
	if m, ok := root.(map[string]any); ok {
		if v, ok := m[path]; ok {
			return v, true
		}
	}

	segs := Parse(path)
	if len(segs) == 0 {
		return nil, false
	}

	node := root
	for _, seg := range segs {
		var ok bool
		if node, ok = Lookup(node, seg); !ok {
			return nil, false
		}
	}
	return node, true
}

// Has reports whether path resolves against root.
func Has(root any, path string) bool {
	_, ok := Get(root, path)
	return ok
}

// Replace overwrites the value at path with value. It never creates
// intermediate nodes: when path does not resolve, root is left untouched and
// Replace returns false.
func Replace(root any, path string, value any) bool {
	if m, ok := root.(map[string]any); ok {
		if _, ok := m[path]; ok {
			m[path] = value
			return true
		}
	}

	segs := Parse(path)
	if len(segs) == 0 {
		return false
	}

	parent := root
	for _, seg := range segs[:len(segs)-1] {
		var ok bool
		if parent, ok = Lookup(parent, seg); !ok {
			return false
		}
	}
	return assign(parent, segs[len(segs)-1], value)
}

// ReplaceCopy is Replace without side effects on root. Every node on the
// way to path is shallow-copied before it is written, so trees shared with
// other owners keep their values. It returns root itself when path does not
// resolve.
func ReplaceCopy(root any, path string, value any) (any, bool) {
	if m, ok := root.(map[string]any); ok {
		if _, ok := m[path]; ok {
			out := maps.Clone(m)
			out[path] = value
			return out, true
		}
	}

	segs := Parse(path)
	if len(segs) == 0 {
		return root, false
	}
	return replaceCopy(root, segs, value)
}

func replaceCopy(node any, segs []string, value any) (any, bool) {
	if len(segs) == 1 {
		if _, ok := Lookup(node, segs[0]); !ok {
			return node, false
		}
		out := shallowCopy(node)
		return out, assign(out, segs[0], value)
	}

	child, ok := Lookup(node, segs[0])
	if !ok {
		return node, false
	}
	replaced, ok := replaceCopy(child, segs[1:], value)
	if !ok {
		return node, false
	}
	out := shallowCopy(node)
	return out, assign(out, segs[0], replaced)
}

func shallowCopy(node any) any {
	switch n := node.(type) {
	case map[string]any:
		return maps.Clone(n)
	case map[string]string:
		return maps.Clone(n)
	case []any:
		return slices.Clone(n)
	case []string:
		return slices.Clone(n)
	}
	return node
}

func assign(node any, key string, value any) bool {
	switch n := node.(type) {
	case map[string]any:
		if _, ok := n[key]; !ok {
			return false
		}
		n[key] = value
		return true
	case map[string]string:
		if _, ok := n[key]; !ok {
			return false
		}
		n[key] = toString(value)
		return true
	case []any:
		i, ok := index(key, len(n))
		if !ok {
			return false
		}
		n[i] = value
		return true
	case []string:
		i, ok := index(key, len(n))
		if !ok {
			return false
		}
		n[i] = toString(value)
		return true
	}
	return false
}

func index(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
