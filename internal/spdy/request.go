// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import "github.com/go-core-stack/spdy2http/pkg/headers"

// Request is the inbound SPDY request handle: spec.md §3's
// `inbound_request`, owned by the daemon until the transaction destroys it.
type Request struct {
	session  *Session
	streamID uint32

	Method  string
	Path    string
	Version string
	Host    string
	Scheme  string
	Headers *headers.NameValues
}

// RequestHandler is invoked once per inbound SYN_STREAM, mirroring the
// original's standard_request_handler signature (proxy.c lines 528-625)
// restated as a Go function value per the REDESIGN FLAGS "dynamic dispatch
// via function pointers" note.
type RequestHandler func(req *Request)

// Destroy releases the daemon-owned resources tied to the inbound stream.
// Safe to call once per request, from the transaction's response-done path.
func (r *Request) Destroy() {
	r.session.forgetStream(r.streamID)
}
