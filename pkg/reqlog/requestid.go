package reqlog

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenReqIDFunc returns the id for a request. It is called once per request.
type GenReqIDFunc func(r *http.Request) string

// NewUUID generates a random UUIDv4.
func NewUUID(*http.Request) string {
	return uuid.NewString()
}

// NewULID generates a lexicographically sortable ULID.
func NewULID(*http.Request) string {
	return ulid.Make().String()
}

func generatorFor(name string) GenReqIDFunc {
	if strings.EqualFold(name, GeneratorULID) {
		return NewULID
	}
	return NewUUID
}
