package reqlog

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBodyRequest(contentType, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestCaptureBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		limit       int64
		want        any
	}{
		{
			name:        "json object",
			contentType: "application/json; charset=utf-8",
			body:        `{"username":"u","password":"p","n":1}`,
			limit:       1024,
			want:        map[string]any{"username": "u", "password": "p", "n": json.Number("1")},
		},
		{
			name:        "json suffix",
			contentType: "application/merge-patch+json",
			body:        `[1,"a"]`,
			limit:       1024,
			want:        []any{json.Number("1"), "a"},
		},
		{
			name:        "malformed json falls back to text",
			contentType: "application/json",
			body:        `{"a":`,
			limit:       1024,
			want:        `{"a":`,
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "user=u&tag=a&tag=b",
			limit:       1024,
			want:        map[string]any{"user": "u", "tag": []any{"a", "b"}},
		},
		{
			name:  "plain text",
			body:  "hello",
			limit: 1024,
			want:  "hello",
		},
		{
			name:  "binary is skipped",
			body:  "\xff\xfe\x00",
			limit: 1024,
			want:  nil,
		},
		{
			name:        "truncated keeps raw prefix",
			contentType: "application/json",
			body:        `{"username":"someone"}`,
			limit:       8,
			want:        `{"userna`,
		},
		{
			name:  "truncation respects utf8",
			body:  "aé",
			limit: 2,
			want:  "a",
		},
		{
			name:  "disabled by zero limit",
			body:  "hello",
			limit: 0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBodyRequest(tt.contentType, tt.body)

			got := captureBody(r, tt.limit)
			assert.Equal(t, tt.want, got)

			// Handlers still see the whole body.
			rest, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(rest))
		})
	}
}

func TestCaptureBody_NoBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, captureBody(r, 1024))

	r.Body = nil
	assert.Nil(t, captureBody(r, 1024))
}

func TestCaptureBody_ClosePassesThrough(t *testing.T) {
	closed := false
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Body = closeRecorder{Reader: strings.NewReader("x"), closed: &closed}

	captureBody(r, 10)
	require.NoError(t, r.Body.Close())
	assert.True(t, closed)
}

type closeRecorder struct {
	io.Reader
	closed *bool
}

func (c closeRecorder) Close() error {
	*c.closed = true
	return nil
}
