// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package proxy bridges inbound SPDY/2 streams to outbound HTTP/1.x
// requests. Engine is the single goroutine that owns a transaction from
// the moment a SYN_STREAM arrives until the response is fully pumped back
// to the SPDY client (only the body buffer is shared, under a mutex, with
// the stream's writer goroutine), replacing the original's cooperative double-select
// loop (spdy_fd_set + curl_multi_fdset) with one Go select over two
// channels (spec.md §5).
package proxy
