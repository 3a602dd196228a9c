// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import "github.com/go-core-stack/spdy2http/pkg/headers"

// DataSource supplies outbound DATA frame payload for a queued response. It
// is the Go restatement of the original's response_callback (proxy.c lines
// 261-304): given a destination capacity, it returns the bytes to write and
// whether more data will follow. Unlike the original it may block — there
// is no "return 0, more=true, try again" busy-poll case, because the
// caller (the stream's write loop, a dedicated goroutine) simply waits
// until the implementation has something to say, eliminating the
// busy-polling Design Note flags.
type DataSource func(capacity int) (data []byte, more bool, err error)

// DoneFunc is invoked exactly once after the final DATA frame for a stream
// has been written (or the stream failed), mirroring response_done_callback
// (proxy.c lines 307-333). err carries the write or source failure that
// caused success=false; it is nil on a clean completion.
type DoneFunc func(success bool, err error)

// Response is the outbound SPDY response handle: spec.md §3's
// `inbound_response`. It exists only after origin headers have been fully
// received; building one and calling Queue is what causes the SPDY
// response to be sent and owned by the daemon from that point on.
type Response struct {
	request *Request

	Status     int
	StatusText string
	Version    string
	Headers    *headers.NameValues

	source DataSource
	done   DoneFunc
}

// NewResponse builds a response bound to req. It does not send anything
// until Queue is called.
func NewResponse(req *Request, status int, statusText, version string, hdrs *headers.NameValues, source DataSource) *Response {
	return &Response{
		request:    req,
		Status:     status,
		StatusText: statusText,
		Version:    version,
		Headers:    hdrs,
		source:     source,
	}
}

// Queue sends the SYN_REPLY frame for the response and starts the stream's
// DATA-frame write loop, which pulls from source until it reports no more
// data, then invokes done. Equivalent to SPDY_queue_response with
// close_stream=true (spec.md §9 Open Questions: half-close interaction with
// client-sent bodies does not arise since request bodies are never
// forwarded in this revision).
func (r *Response) Queue(done DoneFunc) error {
	r.done = done
	return r.request.session.queueResponse(r)
}

// Destroy releases daemon-owned resources tied to the response. Safe to
// call once, from the transaction's response-done path.
func (r *Response) Destroy() {
	// The session already released its stream bookkeeping when the write
	// loop observed more=false; nothing further to free on a Go response
	// value beyond letting the garbage collector reclaim it.
}
