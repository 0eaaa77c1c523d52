package reqlog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
)

var uaParser = sync.OnceValue(func() *uaparser.Parser {
	p, err := uaparser.New(uaparser.WithCacheSize(4096))
	if err != nil {
		panic(fmt.Sprintf("reqlog: loading user agent definitions: %v", err))
	}
	return p
})

// parseUserAgent splits a User-Agent header into browser family, version
// parts and operating system.
func parseUserAgent(raw string) Fields {
	c := uaParser().Parse(raw)

	return Fields{
		"family": c.UserAgent.Family,
		"major":  c.UserAgent.Major,
		"minor":  c.UserAgent.Minor,
		"patch":  c.UserAgent.Patch,
		"os":     joinVersion(c.Os.Family, c.Os.Major, c.Os.Minor, c.Os.Patch),
		"device": c.Device.Family,
		"source": raw,
	}
}

// joinVersion renders "Family 1.2.3", dropping empty version parts.
func joinVersion(family string, parts ...string) string {
	var version []string
	for _, p := range parts {
		if p == "" {
			break
		}
		version = append(version, p)
	}
	if len(version) == 0 {
		return family
	}
	return family + " " + strings.Join(version, ".")
}
