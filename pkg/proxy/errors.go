// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import "fmt"

// StartupError reports a failure to bind the SPDY listener or load its
// certificate. It is always process-fatal: nothing can serve a stream
// before the daemon is up (spec.md §7).
type StartupError struct {
	Msg string
	Err error
}

func (e *StartupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("startup: %s: %v", e.Msg, e.Err)
	}
	return "startup: " + e.Msg
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// ResourceError reports exhaustion of a bounded resource — the transaction
// table, a connection pool slot — rather than a malformed request. Spec.md
// §7 scopes these to the transaction that hit the limit; the Engine answers
// with a synthesized 503 and keeps serving everything else.
type ResourceError struct {
	Msg string
}

func (e *ResourceError) Error() string {
	return "resource: " + e.Msg
}

// IOError wraps a failure writing to or reading from a connection (SPDY
// session or origin socket) that isn't better described as a ProtocolError.
// Scoped to one transaction or one SPDY session; never process-fatal.
type IOError struct {
	Msg string
	Err error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("io: %s: %v", e.Msg, e.Err)
	}
	return "io: " + e.Msg
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed inbound request-target or header block
// that the Request Handler cannot act on. Always transaction-scoped; the
// Engine answers with a synthesized 400 on the offending stream.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Msg, e.Err)
	}
	return "parse: " + e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
