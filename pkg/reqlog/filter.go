package reqlog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/reqlog/pkg/reqlog/fieldpath"
)

// ExcludeAll as an exclusion drops the structured record entirely.
const ExcludeAll = "*"

const shortBodyLen = 20

// IncludesFunc returns extra fields for the structured record. res is the
// response snapshot (statusCode, headers). On the close path it runs off the
// handler goroutine. Redaction never writes into the returned values.
type IncludesFunc func(r *http.Request, res Fields) Fields

// Filter turns metadata into the structured record. It is immutable and safe
// for concurrent use.
type Filter struct {
	excludes    map[string]bool
	all         bool
	obfuscate   []string
	placeholder string
	includes    IncludesFunc
}

// NewFilter builds a filter. A "*" anywhere in excludes means message-only
// records.
func NewFilter(excludes, obfuscate []string, placeholder string, includes IncludesFunc) *Filter {
	f := &Filter{
		obfuscate:   withBodyAliases(obfuscate),
		placeholder: placeholder,
		includes:    includes,
	}
	if len(excludes) > 0 {
		f.excludes = make(map[string]bool, len(excludes))
		for _, ex := range excludes {
			if ex == ExcludeAll {
				f.all = true
			}
			f.excludes[ex] = true
		}
	}
	return f
}

// Apply returns the record for meta, or nil when every field is excluded.
// Passes run in order: exclusion, includes merge, redaction, short-body. An
// included field may reintroduce an excluded one; redaction always wins.
// Neither meta nor included values are modified.
func (f *Filter) Apply(meta Fields, r *http.Request, res Fields) Fields {
	if f.all {
		return nil
	}

	record := make(Fields, len(meta))
	for k, v := range meta {
		if !f.excludes[k] {
			record[k] = v
		}
	}

	if f.includes != nil {
		for k, v := range f.includes(r, res) {
			record[k] = v
		}
	}

	record = f.redact(record)

	if body, ok := record[FieldBody]; ok && body != nil && body != "" {
		record[FieldShortBody] = shortBody(body)
	}

	return record
}

// Redact returns meta with every redaction path replaced. Nodes on a
// redacted path are copied; meta is left as it was.
func (f *Filter) Redact(meta Fields) Fields {
	return f.redact(meta)
}

func (f *Filter) redact(record Fields) Fields {
	var out any = record
	for _, path := range f.obfuscate {
		out, _ = fieldpath.ReplaceCopy(out, path, f.placeholder)
	}
	return out.(Fields)
}

// withBodyAliases adds the twin of every path into the request body: the
// body is reachable as both body and req.body, and hiding either must hide
// both.
func withBodyAliases(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	out := make([]string, 0, len(paths)*2)
	seen := make(map[string]bool, len(paths)*2)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		add(p)
		segs := fieldpath.Parse(p)
		switch {
		case len(segs) > 0 && segs[0] == FieldBody && strings.HasPrefix(p, FieldBody):
			add(FieldReq + "." + p)
		case len(segs) > 1 && segs[0] == FieldReq && segs[1] == FieldBody && strings.HasPrefix(p, FieldReq+"."):
			add(strings.TrimPrefix(p, FieldReq+"."))
		}
	}
	return out
}

// shortBody renders the first 20 runes of a body's readable form.
func shortBody(body any) string {
	var s string
	switch b := body.(type) {
	case string:
		s = strconv.Quote(b)
	case fmt.Stringer:
		s = b.String()
	default:
		if raw, err := json.Marshal(b); err == nil {
			s = string(raw)
		} else {
			s = fmt.Sprint(b)
		}
	}

	runes := []rune(s)
	if len(runes) > shortBodyLen {
		runes = runes[:shortBodyLen]
	}
	return string(runes)
}
