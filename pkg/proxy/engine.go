// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-core-stack/spdy2http/internal/spdy"
	"github.com/go-core-stack/spdy2http/pkg/config"
	"github.com/go-core-stack/spdy2http/pkg/httpclient"
	"github.com/go-core-stack/spdy2http/pkg/metrics"
)

// doneEvent reports that a transaction's SPDY response finished pumping
// (all DATA frames written, or the stream aborted).
type doneEvent struct {
	txnID   uuid.UUID
	success bool
}

// Engine is the single run loop that owns every in-flight transaction: it
// is the only goroutine that ever reads or writes the transactions map, the
// Go restatement of spec.md §5's "Transaction objects are mutated from a
// single thread of control" invariant. The SPDY session goroutines and the
// httpclient.Pool's per-request goroutines never touch the map — they only
// ever send Engine an event that names a transaction by ID. The one piece
// of transaction state read off this goroutine is the body buffer, which a
// stream's writer goroutine drains through transaction.pullBody under the
// transaction's body mutex.
type Engine struct {
	cfg    config.Config
	daemon *spdy.Daemon
	pool   *httpclient.Pool
	stats  *metrics.Collector
	logger zerolog.Logger

	newStreamCh chan *spdy.Request
	doneCh      chan doneEvent

	transactions map[uuid.UUID]*transaction
}

// NewEngine wires a Daemon, an HTTP Client Pool and (optionally) a metrics
// Collector into a run loop ready for Run.
func NewEngine(cfg config.Config, pool *httpclient.Pool, stats *metrics.Collector, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg:          cfg,
		pool:         pool,
		stats:        stats,
		logger:       logger,
		newStreamCh:  make(chan *spdy.Request, 64),
		doneCh:       make(chan doneEvent, 64),
		transactions: make(map[uuid.UUID]*transaction),
	}
	e.daemon = &spdy.Daemon{
		Addr:     addrFromPort(cfg.ListenPort),
		CertFile: cfg.CertFile,
		KeyFile:  cfg.KeyFile,
		Handler:  e.onNewStream,
		Logger:   logger,
	}
	return e
}

func addrFromPort(port uint16) string {
	return fmt.Sprintf(":%d", port)
}

// Run starts the SPDY daemon and blocks, servicing new streams and origin
// events until ctx is canceled. It returns a *StartupError if the daemon
// cannot bind, never once it is running (spec.md §7: only startup failures
// are process-fatal).
func (e *Engine) Run(ctx context.Context) error {
	if err := e.daemon.Start(); err != nil {
		return &StartupError{Msg: "start SPDY daemon", Err: err}
	}
	e.logger.Info().Str("addr", e.daemon.Addr).Bool("transparent", e.cfg.Transparent).Msg("spdy daemon listening")

	go e.daemon.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = e.daemon.Stop()
			return nil

		case req := <-e.newStreamCh:
			e.handleNewStream(req)

		case ev := <-e.pool.Events():
			e.handlePoolEvent(ev)

		case done := <-e.doneCh:
			e.handleDone(done)
		}
	}
}

// onNewStream is internal/spdy.RequestHandler: it only ever hands the
// request off to the run loop, preserving the single-mutator invariant
// even though it executes on the SPDY session's own goroutine.
func (e *Engine) onNewStream(req *spdy.Request) {
	e.newStreamCh <- req
}

func (e *Engine) handleNewStream(req *spdy.Request) {
	txn := newTransaction(req, e.logger)

	if max := e.cfg.MaxInFlightTransactions; max > 0 && len(e.transactions) >= max {
		resErr := &ResourceError{Msg: fmt.Sprintf("transaction table at capacity (%d)", max)}
		txn.logger.Warn().Err(resErr).Msg("rejecting new stream")
		e.transactions[txn.id] = txn
		if e.stats != nil {
			e.stats.ActiveTransactions.Inc()
		}
		e.synthesizeError(txn, http.StatusServiceUnavailable, "Service Unavailable", resErr.Error())
		return
	}

	if e.stats != nil {
		e.stats.ActiveTransactions.Inc()
	}

	target, err := e.resolveTarget(req.Method, req.Path, req.Scheme, req.Host)
	if err != nil {
		txn.logger.Warn().Err(err).Msg("could not resolve origin target")
		e.transactions[txn.id] = txn
		e.synthesizeError(txn, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	txn.requestedURL = target

	e.transactions[txn.id] = txn

	e.pool.Submit(context.Background(), txn.id, httpclient.Request{
		Method:       req.Method,
		URL:          target,
		HeaderLines:  txn.requestHeaderLines(),
		Host:         req.Host,
		PreferHTTP10: e.cfg.HTTP10,
	})
}

func (e *Engine) handlePoolEvent(ev httpclient.Event) {
	txn, ok := e.transactions[ev.TxnID]
	if !ok {
		return
	}

	switch ev.Kind {
	case httpclient.EventHeaders:
		e.queueResponse(txn, ev.Status, ev.StatusText, ev.Version, ev.Headers)

	case httpclient.EventBody:
		if e.stats != nil {
			e.stats.OriginBytesTotal.Add(float64(len(ev.Chunk)))
		}
		txn.appendBody(ev.Chunk)

	case httpclient.EventDone:
		txn.markOriginDone(ev.Err)
		if ev.Err != nil && !txn.responseQueued {
			txn.logger.Warn().Err(ev.Err).Msg("origin fetch failed before headers arrived")
			e.synthesizeError(txn, http.StatusBadGateway, "Bad Gateway", ev.Err.Error())
		}
	}
}

func (e *Engine) handleDone(done doneEvent) {
	txn, ok := e.transactions[done.txnID]
	if !ok {
		return
	}
	delete(e.transactions, done.txnID)

	if e.stats != nil {
		e.stats.ActiveTransactions.Dec()
		e.stats.ObserveCompletion(done.success, txn.createdAt)
	}

	txn.request.Destroy()
	if txn.response != nil {
		txn.response.Destroy()
	}
}
