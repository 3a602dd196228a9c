// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package spdy is the inbound SPDY/2-over-TLS daemon spec.md §1 names as an
// external collaborator specified only by its interface to the request
// bridging core. No Go library implementing SPDY/2 exists in this module's
// dependency pack, so this package is a from-scratch, deliberately minimal
// reference implementation of that interface: enough frame and session
// handling to drive pkg/proxy's Engine, not a wire-exhaustive SPDY/2 stack.
// It intentionally omits flow control, stream priority scheduling and
// server push, none of which spec.md's core exercises.
package spdy
