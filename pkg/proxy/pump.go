// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"github.com/go-core-stack/spdy2http/internal/spdy"
	"github.com/go-core-stack/spdy2http/pkg/headers"
)

// queueResponse builds and sends the SYN_REPLY for txn once the origin's
// status line and headers have arrived, wiring txn.pullBody as the
// DataSource that drains whatever body bytes the HTTP Client Pool has
// delivered so far (spec.md §4.4).
func (e *Engine) queueResponse(txn *transaction, status int, statusText, version string, hdrs *headers.NameValues) {
	hdrs.Add("x-request-id", txn.id.String())

	resp := spdy.NewResponse(txn.request, status, statusText, version, hdrs, txn.pullBody)
	txn.response = resp
	txn.responseQueued = true

	if err := resp.Queue(func(success bool, pumpErr error) {
		if !success {
			ioErr := &IOError{Msg: "write SYN_REPLY/DATA frames", Err: pumpErr}
			txn.logger.Warn().Err(ioErr).Msg("response pump failed")
		}
		e.doneCh <- doneEvent{txnID: txn.id, success: success}
	}); err != nil {
		ioErr := &IOError{Msg: "queue SYN_REPLY", Err: err}
		txn.logger.Warn().Err(ioErr).Msg("queue SYN_REPLY failed")
		e.doneCh <- doneEvent{txnID: txn.id, success: false}
	}
}

// synthesizeError answers a transaction directly with a fixed status and a
// short plain-text body, for failures that occur before (or instead of) a
// real origin response — spec.md §7's requirement that Parse/Resource/IO
// errors stay scoped to one transaction rather than taking the daemon down.
func (e *Engine) synthesizeError(txn *transaction, status int, statusText, body string) {
	hdrs := headers.NewNameValues()
	hdrs.Add("content-type", "text/plain; charset=utf-8")
	hdrs.Add("x-request-id", txn.id.String())

	sent := false
	source := func(capacity int) ([]byte, bool, error) {
		if sent {
			return nil, false, nil
		}
		sent = true
		return []byte(body), false, nil
	}

	resp := spdy.NewResponse(txn.request, status, statusText, "HTTP/1.1", hdrs, source)
	txn.response = resp
	txn.responseQueued = true

	if err := resp.Queue(func(success bool, pumpErr error) {
		if !success {
			ioErr := &IOError{Msg: "write synthesized error response", Err: pumpErr}
			txn.logger.Warn().Err(ioErr).Msg("response pump failed")
		}
		e.doneCh <- doneEvent{txnID: txn.id, success: success}
	}); err != nil {
		ioErr := &IOError{Msg: "queue synthesized error response", Err: err}
		txn.logger.Warn().Err(ioErr).Msg("queue synthesized error response failed")
		e.doneCh <- doneEvent{txnID: txn.id, success: false}
	}
}
