package reqlog

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Fields is a metadata mapping from field name to value. Values are strings,
// numbers, bools, durations, nested Fields, []any, errors or opaque values.
type Fields = map[string]any

// Well-known metadata fields.
const (
	FieldRemoteAddress  = "remote-address"
	FieldIP             = "ip"
	FieldMethod         = "method"
	FieldURL            = "url"
	FieldReferer        = "referer"
	FieldUserAgent      = "user-agent"
	FieldBody           = "body"
	FieldShortBody      = "short-body"
	FieldHTTPVersion    = "http-version"
	FieldResponseTime   = "response-time"
	FieldResponseHRTime = "response-hrtime"
	FieldStatusCode     = "status-code"
	FieldReqHeaders     = "req-headers"
	FieldResHeaders     = "res-headers"
	FieldReq            = "req"
	FieldRes            = "res"
	FieldIncoming       = "incoming"
	FieldErr            = "err"
)

// Direction markers for the incoming field.
const (
	MarkerRequest  = "-->"
	MarkerResponse = "<--"
)

const fallbackRemoteAddress = "127.0.0.1"

// exchange is the per-request state. Request-side values are captured on entry
// so the close path never reads the live request.
type exchange struct {
	r        *http.Request
	start    time.Time
	logger   *zap.Logger
	rec      *recorder
	inflight error

	remoteAddr  string
	url         string
	referer     string
	httpVersion string
	userAgent   any
	body        any
	reqHeaders  Fields
	reqSnapshot Fields
}

func (m *Middleware) capture(r *http.Request, logger *zap.Logger, inflight error) *exchange {
	x := &exchange{
		r:          r,
		start:      time.Now(),
		logger:     logger,
		rec:        newRecorder(),
		inflight:   inflight,
		url:        requestURL(r),
		referer:    "-",
		reqHeaders: flattenHeader(r.Header),
	}

	host, port, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = fallbackRemoteAddress
	}
	x.remoteAddr = host

	if ref := r.Header.Get("Referer"); ref != "" {
		x.referer = ref
	} else if ref := r.Header.Get("Referrer"); ref != "" {
		x.referer = ref
	}

	x.httpVersion = fmt.Sprintf("%d.%d", r.ProtoMajor, r.ProtoMinor)

	ua := r.Header.Get("User-Agent")
	if m.cfg.ParseUA {
		x.userAgent = parseUserAgent(ua)
	} else {
		x.userAgent = ua
	}

	if m.cfg.Body.Enabled {
		x.body = captureBody(r, m.cfg.Body.MaxBytes)
	}

	x.reqSnapshot = Fields{
		"method":        r.Method,
		"url":           x.url,
		"headers":       x.reqHeaders,
		"remoteAddress": host,
		"remotePort":    port,
	}
	if x.body != nil {
		x.reqSnapshot["body"] = x.body
	}

	return x
}

// metadata assembles the fields for one emission. It returns the response
// snapshot separately for the includes hook.
func (x *exchange) metadata(incoming string, status int, resHeaders Fields, err error) (Fields, Fields) {
	elapsed := time.Since(x.start)
	if resHeaders == nil {
		resHeaders = Fields{}
	}

	res := Fields{
		"statusCode": status,
		"headers":    resHeaders,
	}

	meta := Fields{
		FieldRemoteAddress:  x.remoteAddr,
		FieldIP:             x.remoteAddr,
		FieldMethod:         x.r.Method,
		FieldURL:            x.url,
		FieldReferer:        x.referer,
		FieldUserAgent:      x.userAgent,
		FieldHTTPVersion:    x.httpVersion,
		FieldResponseTime:   float64(elapsed) / float64(time.Millisecond),
		FieldResponseHRTime: elapsed,
		FieldStatusCode:     status,
		FieldReqHeaders:     x.reqHeaders,
		FieldResHeaders:     resHeaders,
		FieldReq:            x.reqSnapshot,
		FieldRes:            res,
		FieldIncoming:       incoming,
	}
	if x.body != nil {
		meta[FieldBody] = x.body
	}
	if err != nil {
		meta[FieldErr] = err
	}

	return meta, res
}

func requestURL(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL != nil {
		if u := r.URL.RequestURI(); u != "" {
			return u
		}
	}
	return "-"
}
