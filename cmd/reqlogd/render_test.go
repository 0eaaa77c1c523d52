package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		opts renderOptions
		in   string
		want string
	}{
		{
			name: "single object",
			opts: renderOptions{template: ":status-code :url"},
			in:   `{"status-code":200,"url":"/x"}`,
			want: "200 /x\n",
		},
		{
			name: "object stream",
			opts: renderOptions{template: ":method"},
			in:   "{\"method\":\"GET\"}\n{\"method\":\"PUT\"}\n",
			want: "GET\nPUT\n",
		},
		{
			name: "missing fields and zero",
			opts: renderOptions{template: ":size :referer"},
			in:   `{"size":0}`,
			want: "0 -\n",
		},
		{
			name: "redaction before render",
			opts: renderOptions{
				template:    ":body",
				obfuscate:   []string{"body.password"},
				placeholder: logging.DefaultPlaceholder,
			},
			in:   `{"body":{"password":"secret","user":"u"}}`,
			want: `{"password":"[HIDDEN]","user":"u"}` + "\n",
		},
		{
			name: "large integers keep precision",
			opts: renderOptions{template: ":id"},
			in:   `{"id":9007199254740993}`,
			want: "9007199254740993\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, render(strings.NewReader(tt.in), &out, tt.opts))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRender_Errors(t *testing.T) {
	var out bytes.Buffer

	err := render(strings.NewReader(""), &out, renderOptions{template: ":url"})
	assert.ErrorContains(t, err, "no metadata objects")

	err = render(strings.NewReader(`{"url":`), &out, renderOptions{template: ":url"})
	assert.ErrorContains(t, err, "decoding metadata object 1")

	err = render(strings.NewReader(`[1,2]`), &out, renderOptions{template: ":url"})
	assert.Error(t, err)

	err = render(strings.NewReader(`{}`), &out, renderOptions{template: ":url", obfuscate: []string{"a"}})
	assert.ErrorIs(t, err, reqlog.ErrInvalidConfig)
}

func TestRenderCmd(t *testing.T) {
	out, err := execute(t, `{"method":"GET","url":"/a"}`, "render", "--format", ":method :url")
	require.NoError(t, err)
	assert.Equal(t, "GET /a\n", out)

	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"method":"POST","url":"/b"}`), 0600))
	out, err = execute(t, "", "render", "-f", ":method :url", path)
	require.NoError(t, err)
	assert.Equal(t, "POST /b\n", out)

	out, err = execute(t, "", "render", "--fields", "--format", ":method :user-agent[family] :method")
	require.NoError(t, err)
	assert.Equal(t, "method\nuser-agent\n", out)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "reqlogd dev")
}
