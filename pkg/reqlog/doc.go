// Package reqlog provides HTTP access-log middleware for echo and net/http.
//
// # Overview
//
// Each request produces exactly one record. The middleware captures request
// metadata on entry, waits for the handler chain to finish (or for the client
// to go away), filters and redacts the metadata, renders a one-line message
// through a token template and writes both to a per-request zap logger.
//
// # Usage
//
//	m, err := reqlog.New(reqlog.NewDefaultConfig(), reqlog.WithLogger(zapLogger))
//	if err != nil {
//	    return err
//	}
//	e.Use(m.EchoError())
//
// or, for plain net/http:
//
//	http.ListenAndServe(addr, m.Handler(mux))
//
// # Templates
//
// The message is rendered by package format. Tokens are :name or :name[sub]
// and resolve against the metadata fields:
//
//	:remote-address :incoming :method :url HTTP/:http-version :status-code
//
// # Records
//
// The structured record carries the same metadata, minus excluded fields,
// plus whatever the includes hook returns, with redaction paths overwritten
// by a placeholder:
//
//	{
//	  "level": "info",
//	  "logger": "http",
//	  "msg": "127.0.0.1 <-- POST /login HTTP/1.1 200 2 - curl 8.5 Other 1.2 ms",
//	  "req_id": "8c0a9d5e-6f3e-4b38-9d6b-1a1f3f0c8a2e",
//	  "body": {"user": "u", "password": "[HIDDEN]"},
//	  "short-body": "{\"password\":\"[HIDD",
//	  "status-code": 200
//	}
//
// # Request IDs
//
// When enabled, every request gets an id and a child logger carrying it. Both
// are available to downstream handlers:
//
//	reqlog.LoggerFromContext(r.Context()).Info("loaded cart")
//
// # Concurrency Safety
//
// A Middleware is immutable after New and safe for concurrent use. The close
// path runs on its own goroutine; response state it reads is guarded.
package reqlog
