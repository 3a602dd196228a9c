// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package uri parses request-target strings into their scheme, authority,
// host, port, path, query and fragment components using the RFC 2396
// general URI grammar.
package uri

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// grammar is the RFC 2396 general URI regular expression:
//
//	^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?
//
// Capture groups (1-indexed, matching the original POSIX ERE numbering):
//
//	2: scheme        4: authority (host_and_port)
//	5: path          7: query
//	9: fragment
var grammar = regexp.MustCompile(`^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?`)

// ErrInvalidPort is returned when the port following the last colon in the
// authority is out of the [1, 65535] range or is not a decimal integer.
var ErrInvalidPort = fmt.Errorf("uri: invalid port")

// URI holds the decomposed parts of a request-target string. It is
// transient and owned by the caller; nothing in this package retains a
// reference to it.
type URI struct {
	Scheme      string
	HostAndPort string
	Host        string
	Port        int // 0 if absent
	Path        string
	PathAndMore string // path + query (with '?') + fragment (with '#')
	Query       string
	Fragment    string
}

// Parse decomposes raw into a URI. An empty scheme or empty host is a legal
// parse outcome — it is the Request Handler's non-transparent mode that
// rejects those, not the parser (spec.md §4.1).
func Parse(raw string) (URI, error) {
	m := grammar.FindStringSubmatchIndex(raw)
	if m == nil {
		return URI{}, fmt.Errorf("uri: %q does not match the URI grammar", raw)
	}

	group := func(i int) string {
		lo, hi := m[2*i], m[2*i+1]
		if lo < 0 || hi < 0 {
			return ""
		}
		return raw[lo:hi]
	}

	u := URI{
		Scheme:      group(2),
		HostAndPort: group(4),
		Path:        group(5),
		Query:       group(7),
		Fragment:    group(9),
	}
	u.PathAndMore = pathAndMore(u.Path, u.Query, u.Fragment, m)

	host, port, err := splitHostAndPort(u.HostAndPort)
	if err != nil {
		return URI{}, err
	}
	u.Host = host
	u.Port = port

	return u, nil
}

// pathAndMore reconstructs path+query+fragment the way the original's
// pmatch[9].rm_eo - pmatch[5].rm_so offset subtraction does: it spans from
// the start of the path group to the end of whichever of query/fragment
// matched last, omitting a trailing "?" or "#" when the corresponding group
// is entirely absent (see SPEC_FULL.md's Open Question resolution).
func pathAndMore(path, query, fragment string, m []int) string {
	var b strings.Builder
	b.WriteString(path)
	if m[2*7] >= 0 { // query group participated (possibly empty)
		b.WriteByte('?')
		b.WriteString(query)
	}
	if m[2*9] >= 0 { // fragment group participated (possibly empty)
		b.WriteByte('#')
		b.WriteString(fragment)
	}
	return b.String()
}

// splitHostAndPort splits hostAndPort on the last colon. With no colon, the
// whole string is the host and port is 0. Otherwise the suffix after the
// last colon must be a decimal integer in [1, 65535].
func splitHostAndPort(hostAndPort string) (string, int, error) {
	idx := strings.LastIndexByte(hostAndPort, ':')
	if idx < 0 {
		return hostAndPort, 0, nil
	}

	portStr := hostAndPort[idx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}
	return hostAndPort[:idx], port, nil
}
