// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package headers

import (
	"sort"
	"strings"
)

// hopByHop lists the headers that must never be forwarded from an origin
// response into the SPDY response (spec.md §4.2). SPDY forbids these
// outright, unlike the broader hop-by-hop set RFC 7230 names.
var hopByHop = map[string]struct{}{
	"connection": {},
	"keep-alive": {},
}

// RequestLines synthesizes HTTP/1.x request header lines from an ordered
// set of SPDY name/value pairs, one line per name: "<Name>: v0, v1, ...".
// The first character of name is capitalized; the rest is kept as-is
// since SPDY names already arrive lowercase. Pseudo-headers (":method",
// ":path", ":version", ":host", ":scheme") are the caller's responsibility
// to exclude — they are surfaced as scalar request-line fields and never
// belong in this list. Grounded in the original's iterate_cb
// (original_source/src/spdy2http/proxy.c lines 490-525).
func RequestLines(names []string, valuesOf func(name string) []string) []string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		values := valuesOf(name)
		line := capitalizeFirst(name) + ": " + strings.Join(values, ", ")
		lines = append(lines, line)
	}
	return lines
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// FromHTTPHeader applies the lowercase-name and hop-by-hop-stripping rules
// spec.md §4.2 requires to an already-parsed net/http.Header, the shape the
// HTTP Client Pool's net/http.Client hands back (see pkg/httpclient). A Go
// map has no iteration order, so names are visited in sorted order before
// being added — without this, the header order this package's NameValues
// re-emits to the SPDY client (internal/spdy's queueResponse/session.go)
// would vary from one run to the next, which the "ordered multimap" this
// type provides is meant to rule out.
func FromHTTPHeader(h map[string][]string) *NameValues {
	nv := NewNameValues()

	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lower := strings.ToLower(name)
		if _, forbidden := hopByHop[lower]; forbidden {
			continue
		}
		for _, v := range h[name] {
			nv.Add(lower, v)
		}
	}
	return nv
}

// ProtocolError signals a malformed or out-of-range origin response — a
// scoped, transaction-level failure per spec.md §7, never process-fatal.
// Constructed by pkg/httpclient when net/http has parsed a response that is
// nonetheless not a legal HTTP response (e.g. a status code outside
// [100, 599]); net/http itself only validates that the status line is
// well-formed, not that the code is in range.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Msg
}
