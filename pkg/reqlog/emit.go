package reqlog

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/pkg/logging"
)

// emit runs the pipeline for one exchange: metadata, level, filter, message,
// write. live is the response header map when called on the handler
// goroutine, nil otherwise.
func (m *Middleware) emit(x *exchange, mode string, live http.Header, err error) {
	incoming := MarkerResponse
	if mode == modeImmediate {
		incoming = MarkerRequest
	}

	status, resHeaders := x.rec.state(live)
	meta, res := x.metadata(incoming, status, resHeaders, err)

	lvl := resolveLevel(m.level, status, err, meta)
	record := m.filter.Apply(meta, x.r, res)
	msg := m.format(m.filter.Redact(meta))

	fields := recordFields(record)
	fields = append(fields, logging.ContextFields(x.r.Context())...)
	logging.Emit(x.logger, lvl, msg, fields...)

	RecordsTotal.WithLabelValues(logging.LevelName(lvl), mode).Inc()
}

// recordFields converts a record to zap fields in key order.
func recordFields(record Fields) []zap.Field {
	if record == nil {
		return nil
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys)+3)
	for _, k := range keys {
		v := record[k]
		if err, ok := v.(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}
