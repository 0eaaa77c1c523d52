// Package format compiles access-log templates such as
//
//	:method :url :status-code :res-headers[content-length] :response-time ms
//
// into reusable render functions.
//
// A token is a colon followed by a field name of at least two characters from
// [A-Za-z0-9_-], optionally followed by a bracketed sub-key. Everything else
// in the template is copied to the output verbatim. Templates are parsed once;
// rendering walks the parsed token list and never re-reads the template.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/reqlog/pkg/reqlog/fieldpath"
)

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = ":remote-address :incoming :method :url HTTP/:http-version :status-code :res-headers[content-length] :referer :user-agent[family] :user-agent[major].:user-agent[minor] :user-agent[os] :response-time ms"

// Placeholder is rendered for tokens whose value is missing or empty.
const Placeholder = "-"

var tokenPattern = regexp.MustCompile(`:([-\w]{2,})(?:\[([^\]]+)\])?`)

// Func renders a metadata mapping to a display string.
type Func func(meta map[string]any) string

// Token is one parsed template segment. Literal segments have an empty Name.
type Token struct {
	Literal string
	Name    string
	Sub     string
}

// IsField reports whether the token references a metadata field.
func (t Token) IsField() bool {
	return t.Name != ""
}

// Template is a parsed template. It is immutable and safe for concurrent use.
type Template struct {
	source string
	tokens []Token
}

// Parse splits tmpl into literal and field tokens.
func Parse(tmpl string) *Template {
	t := &Template{source: tmpl}

	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(tmpl, -1) {
		if loc[0] > last {
			t.tokens = append(t.tokens, Token{Literal: tmpl[last:loc[0]]})
		}
		tok := Token{Name: tmpl[loc[2]:loc[3]]}
		if loc[4] >= 0 {
			tok.Sub = tmpl[loc[4]:loc[5]]
		}
		t.tokens = append(t.tokens, tok)
		last = loc[1]
	}
	if last < len(tmpl) {
		t.tokens = append(t.tokens, Token{Literal: tmpl[last:]})
	}

	return t
}

// Compile parses tmpl and returns its render function.
func Compile(tmpl string) Func {
	return Parse(tmpl).Render
}

// String returns the source template.
func (t *Template) String() string {
	return t.source
}

// Tokens returns a copy of the parsed segments.
func (t *Template) Tokens() []Token {
	out := make([]Token, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// Fields returns the distinct field names referenced by the template, in
// order of first use.
func (t *Template) Fields() []string {
	seen := make(map[string]bool, len(t.tokens))
	var names []string
	for _, tok := range t.tokens {
		if tok.IsField() && !seen[tok.Name] {
			seen[tok.Name] = true
			names = append(names, tok.Name)
		}
	}
	return names
}

// Render renders meta through the template. Unknown fields render as "-".
func (t *Template) Render(meta map[string]any) string {
	var b strings.Builder
	b.Grow(len(t.source) + 8*len(t.tokens))

	for _, tok := range t.tokens {
		if !tok.IsField() {
			b.WriteString(tok.Literal)
			continue
		}
		b.WriteString(resolve(meta, tok))
	}

	return b.String()
}

func resolve(meta map[string]any, tok Token) string {
	v, ok := meta[tok.Name]
	if tok.Sub == "" {
		return Value(v, ok)
	}

	// The parent must be present and truthy before the sub-key is consulted.
	if !ok || falsy(v) {
		return Placeholder
	}
	if zero, isNum := numericZero(v); isNum && zero {
		return Placeholder
	}

	child, ok := fieldpath.Lookup(v, tok.Sub)
	return Value(child, ok)
}

// Value renders a single resolved value: numeric zero renders "0", falsy or
// missing values render "-", and everything else its natural string form.
func Value(v any, ok bool) string {
	if !ok {
		return Placeholder
	}
	if zero, isNum := numericZero(v); isNum && zero {
		return "0"
	}
	if falsy(v) {
		return Placeholder
	}
	return stringify(v)
}

func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// numericZero reports whether v is a plain number and, if so, whether it is
// zero. NaN counts as zero.
func numericZero(v any) (zero, isNum bool) {
	switch x := v.(type) {
	case int:
		return x == 0, true
	case int8:
		return x == 0, true
	case int16:
		return x == 0, true
	case int32:
		return x == 0, true
	case int64:
		return x == 0, true
	case uint:
		return x == 0, true
	case uint8:
		return x == 0, true
	case uint16:
		return x == 0, true
	case uint32:
		return x == 0, true
	case uint64:
		return x == 0, true
	case float32:
		return x == 0 || math.IsNaN(float64(x)), true
	case float64:
		return x == 0 || math.IsNaN(x), true
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0, true
	}
	return false, false
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
