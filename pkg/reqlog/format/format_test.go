package format

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		meta map[string]any
		want string
	}{
		{
			name: "status and url",
			tmpl: ":status-code :url",
			meta: map[string]any{"status-code": 200, "url": "/x"},
			want: "200 /x",
		},
		{
			name: "missing field renders dash",
			tmpl: ":method :referer",
			meta: map[string]any{"method": "GET"},
			want: "GET -",
		},
		{
			name: "numeric zero renders zero",
			tmpl: "[:count] [:ratio] [:size]",
			meta: map[string]any{"count": 0, "ratio": 0.0, "size": int64(0)},
			want: "[0] [0] [0]",
		},
		{
			name: "falsy values render dash",
			tmpl: ":aa|:bb|:cc|:dd",
			meta: map[string]any{"aa": "", "bb": false, "cc": nil, "dd": map[string]any(nil)},
			want: "-|-|-|-",
		},
		{
			name: "bracket token",
			tmpl: ":res-headers[content-length] bytes",
			meta: map[string]any{"res-headers": map[string]any{"content-length": "12"}},
			want: "12 bytes",
		},
		{
			name: "bracket token with missing parent",
			tmpl: ":user-agent[family]",
			meta: map[string]any{},
			want: "-",
		},
		{
			name: "bracket token with scalar parent",
			tmpl: ":user-agent[family]",
			meta: map[string]any{"user-agent": "curl/8.0"},
			want: "-",
		},
		{
			name: "bracket token with zero child",
			tmpl: ":stats[hits]/:stats[misses]",
			meta: map[string]any{"stats": map[string]any{"hits": 0}},
			want: "0/-",
		},
		{
			name: "bracket token with zero parent",
			tmpl: ":count[hits]",
			meta: map[string]any{"count": 0},
			want: "-",
		},
		{
			name: "double quotes preserved",
			tmpl: `":method" "\:url"`,
			meta: map[string]any{"method": "GET", "url": "/"},
			want: `"GET" "\/"`,
		},
		{
			name: "single character names are literal",
			tmpl: ":a :ab",
			meta: map[string]any{"a": "x", "ab": "y"},
			want: ":a y",
		},
		{
			name: "floats use shortest form",
			tmpl: ":response-time ms",
			meta: map[string]any{"response-time": 1.25},
			want: "1.25 ms",
		},
		{
			name: "composite values render as json",
			tmpl: ":body",
			meta: map[string]any{"body": map[string]any{"p": "[HIDDEN]"}},
			want: `{"p":"[HIDDEN]"}`,
		},
		{
			name: "errors and stringers",
			tmpl: ":err :took",
			meta: map[string]any{"err": errors.New("boom"), "took": 1500 * time.Microsecond},
			want: "boom 1.5ms",
		},
		{
			name: "json numbers",
			tmpl: ":hits :ratio",
			meta: map[string]any{"hits": json.Number("0"), "ratio": json.Number("3.5")},
			want: "0 3.5",
		},
		{
			name: "NaN renders zero",
			tmpl: ":ratio",
			meta: map[string]any{"ratio": math.NaN()},
			want: "0",
		},
		{
			name: "no tokens",
			tmpl: "plain text: ok",
			meta: nil,
			want: "plain text: ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.tmpl)(tt.meta))
		})
	}
}

func TestCompile_DefaultTemplate(t *testing.T) {
	render := Compile(DefaultTemplate)

	meta := map[string]any{
		"remote-address": "10.0.0.1",
		"incoming":       "<--",
		"method":         "GET",
		"url":            "/items?id=1",
		"http-version":   "1.1",
		"status-code":    200,
		"res-headers":    map[string]any{"content-length": "42"},
		"referer":        "-",
		"user-agent": map[string]any{
			"family": "Firefox",
			"major":  "120",
			"minor":  "0",
			"os":     "Linux",
		},
		"response-time": 3.5,
	}

	assert.Equal(t,
		"10.0.0.1 <-- GET /items?id=1 HTTP/1.1 200 42 - Firefox 120.0 Linux 3.5 ms",
		render(meta))

	// Nothing resolves: every token renders as a dash.
	assert.Equal(t, "- - - - HTTP/- - - - - -.- - - ms", render(map[string]any{}))
}

func TestCompile_ReusableAcrossCalls(t *testing.T) {
	render := Compile(":method :url")

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = render(map[string]any{"method": "GET", "url": "/" + strings.Repeat("x", i)})
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, "GET /"+strings.Repeat("x", i), got)
	}
}

func TestParse_PreservesLiterals(t *testing.T) {
	tmpls := []string{
		DefaultTemplate,
		`:method ":url" [:status-code] {"t": ":response-time"}`,
		"no tokens at all",
		"trailing colon :",
		"::method",
	}

	for _, tmpl := range tmpls {
		t.Run(tmpl, func(t *testing.T) {
			parsed := Parse(tmpl)
			assert.Equal(t, tmpl, parsed.String())

			var rebuilt strings.Builder
			for _, tok := range parsed.Tokens() {
				if tok.IsField() {
					rebuilt.WriteString(":" + tok.Name)
					if tok.Sub != "" {
						rebuilt.WriteString("[" + tok.Sub + "]")
					}
					continue
				}
				rebuilt.WriteString(tok.Literal)
			}
			assert.Equal(t, tmpl, rebuilt.String())

			out := parsed.Render(map[string]any{})
			assert.False(t, tokenPattern.MatchString(out), "token syntax left in %q", out)
		})
	}
}

func TestTemplate_Fields(t *testing.T) {
	parsed := Parse(":method :url :user-agent[family] :user-agent[major] :method")
	assert.Equal(t, []string{"method", "url", "user-agent"}, parsed.Fields())

	tokens := parsed.Tokens()
	require.NotEmpty(t, tokens)
	tokens[0].Name = "mutated"
	assert.Equal(t, "method", parsed.Tokens()[0].Name)
}

func TestValue(t *testing.T) {
	assert.Equal(t, "-", Value(nil, false))
	assert.Equal(t, "-", Value("x", false))
	assert.Equal(t, "0", Value(uint8(0), true))
	assert.Equal(t, "true", Value(true, true))
	assert.Equal(t, `["a","b"]`, Value([]string{"a", "b"}, true))
}
