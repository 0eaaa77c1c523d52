package reqlog

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/felixge/httpsnoop"
)

// recorder observes what a handler writes. The handler goroutine writes it;
// the close path may read it concurrently.
type recorder struct {
	mu     sync.Mutex
	status int
	wrote  bool
	header Fields
	size   int64
}

func newRecorder() *recorder {
	return &recorder{status: http.StatusOK}
}

// wrap returns w with hooks that feed the recorder. Optional interfaces of w
// (Flusher, Hijacker, ReaderFrom, Pusher) are preserved.
func (rec *recorder) wrap(w http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				rec.writeHeader(w.Header(), code)
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				rec.writeHeader(w.Header(), http.StatusOK)
				n, err := next(b)
				rec.add(int64(n))
				return n, err
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				rec.writeHeader(w.Header(), http.StatusOK)
				n, err := next(src)
				rec.add(n)
				return n, err
			}
		},
	})
}

// writeHeader records the first final status and snapshots the headers that
// go out with it. Informational codes other than 101 are not final.
func (rec *recorder) writeHeader(h http.Header, code int) {
	if code < http.StatusOK && code != http.StatusSwitchingProtocols {
		return
	}
	snapshot := flattenHeader(h)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.wrote {
		return
	}
	rec.wrote = true
	rec.status = code
	rec.header = snapshot
}

func (rec *recorder) add(n int64) {
	rec.mu.Lock()
	rec.size += n
	rec.mu.Unlock()
}

// state returns the response status and headers. live is consulted only when
// nothing has been written yet and must be nil when called off the handler
// goroutine.
func (rec *recorder) state(live http.Header) (int, Fields) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.wrote || live == nil {
		return rec.status, rec.header
	}
	return rec.status, flattenHeader(live)
}

// flattenHeader lower-cases names and joins repeated values with ", ".
func flattenHeader(h http.Header) Fields {
	out := make(Fields, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return out
}
