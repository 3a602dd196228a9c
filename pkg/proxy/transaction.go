// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-core-stack/spdy2http/internal/spdy"
	"github.com/go-core-stack/spdy2http/pkg/headers"
)

// transaction is the bridging state between one inbound SPDY stream and its
// outbound HTTP request — spec.md §3's `proxy_transaction`. The Engine's
// run loop is the only writer of a transaction's fields, with one
// exception: the body buffer fields are also read and advanced by pullBody,
// which runs on internal/spdy's per-stream writer goroutine, so they are
// guarded by bodyMu. The httpclient.Pool goroutine never touches a
// transaction; it only hands the Engine an event referencing it by ID.
type transaction struct {
	id uuid.UUID

	request *spdy.Request

	requestedURL string // resolved absolute URL submitted to httpclient.Pool

	response       *spdy.Response
	responseQueued bool

	bodyMu     sync.Mutex // guards the fields below against the concurrent DataSource pull
	bodyCond   *sync.Cond
	body       []byte
	bodyOffset int
	originDone bool
	originErr  error

	createdAt time.Time
	logger    zerolog.Logger
}

func newTransaction(req *spdy.Request, logger zerolog.Logger) *transaction {
	id := uuid.New()
	t := &transaction{
		id:        id,
		request:   req,
		createdAt: time.Now(),
		logger:    logger.With().Str("transaction_id", id.String()).Logger(),
	}
	t.bodyCond = sync.NewCond(&t.bodyMu)
	return t
}

// appendBody records another chunk of origin response body, to be drained by
// the DataSource the Engine handed to the queued spdy.Response.
func (t *transaction) appendBody(chunk []byte) {
	t.bodyMu.Lock()
	t.body = append(t.body, chunk...)
	t.bodyMu.Unlock()
	t.bodyCond.Broadcast()
}

// markOriginDone records that no further body bytes will arrive from the
// origin, with err set if the fetch ended in failure rather than EOF.
func (t *transaction) markOriginDone(err error) {
	t.bodyMu.Lock()
	t.originDone = true
	t.originErr = err
	t.bodyMu.Unlock()
	t.bodyCond.Broadcast()
}

// pullBody implements spdy.DataSource: it blocks until either more body
// bytes have arrived from the origin or the fetch has finished, then hands
// back up to capacity unread bytes. This is what lets internal/spdy's
// stream-writer goroutine wait for data instead of busy-polling the way the
// original's response_callback did when it returned "no data yet, call me
// again" (proxy.c lines 280-290).
func (t *transaction) pullBody(capacity int) ([]byte, bool, error) {
	t.bodyMu.Lock()
	defer t.bodyMu.Unlock()

	for len(t.body)-t.bodyOffset == 0 && !t.originDone {
		t.bodyCond.Wait()
	}

	available := len(t.body) - t.bodyOffset
	if available == 0 {
		return nil, false, t.originErr
	}

	n := capacity
	if n > available {
		n = available
	}
	chunk := make([]byte, n)
	copy(chunk, t.body[t.bodyOffset:t.bodyOffset+n])
	t.bodyOffset += n

	more := !(t.originDone && t.bodyOffset == len(t.body))
	return chunk, more, nil
}

// requestHeaderLines synthesizes the HTTP/1.x request header lines to send
// to the origin, excluding SPDY pseudo-headers (spec.md §4.2).
func (t *transaction) requestHeaderLines() []string {
	names := t.request.Headers.Names()
	return headers.RequestLines(names, t.request.Headers.Get)
}
