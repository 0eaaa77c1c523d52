package reqlog

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// captureBody reads up to limit bytes of the request body and decodes them
// for logging. The body is restored so handlers still see all of it.
// JSON becomes a value tree, forms become an object, other text becomes a
// string and binary content is not captured. A body longer than limit is kept
// as a raw text prefix.
func captureBody(r *http.Request, limit int64) any {
	if r.Body == nil || r.Body == http.NoBody || limit <= 0 {
		return nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	r.Body = readCloser{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	if err != nil || len(buf) == 0 {
		return nil
	}

	if int64(len(buf)) > limit {
		prefix := buf[:limit]
		for len(prefix) > 0 && !utf8.Valid(prefix) {
			prefix = prefix[:len(prefix)-1]
		}
		if len(prefix) == 0 {
			return nil
		}
		return string(prefix)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil {
			return v
		}
	case mediaType == "application/x-www-form-urlencoded":
		if values, err := url.ParseQuery(string(buf)); err == nil {
			return formFields(values)
		}
	}

	if !utf8.Valid(buf) {
		return nil
	}
	return string(buf)
}

func formFields(values url.Values) Fields {
	out := make(Fields, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[k] = list
	}
	return out
}

type readCloser struct {
	io.Reader
	io.Closer
}
