// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package spdy

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSessionTimeout is the inbound SPDY session timeout from spec.md §6
// (1800 seconds). It is applied as an absolute connection deadline set once
// at accept, an approximation of an idle timeout: activity on the session
// does not extend it.
const DefaultSessionTimeout = 1800 * time.Second

// Daemon accepts inbound SPDY/2-over-TLS connections and dispatches each
// new stream to a RequestHandler, standing in for SPDY_start_daemon /
// SPDY_run / SPDY_stop_daemon from the original (proxy.c lines 641-791).
type Daemon struct {
	Addr            string
	CertFile        string
	KeyFile         string
	Handler         RequestHandler
	SessionTimeout  time.Duration
	Logger          zerolog.Logger

	listener net.Listener

	wg sync.WaitGroup
}

// Start loads the TLS certificate and binds the listener; connections are
// accepted by Run. It returns once the listener is bound so the caller can
// log a successful startup before Run blocks.
func (d *Daemon) Start() error {
	if d.SessionTimeout == 0 {
		d.SessionTimeout = DefaultSessionTimeout
	}

	cert, err := tls.LoadX509KeyPair(d.CertFile, d.KeyFile)
	if err != nil {
		return fmt.Errorf("spdy: load certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"spdy/2", "http/1.1"},
	}

	listener, err := tls.Listen("tcp", d.Addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("spdy: listen on %s: %w", d.Addr, err)
	}
	d.listener = listener
	return nil
}

// Run accepts connections until ctx is canceled or the listener is closed,
// spawning one Session per connection. It blocks, so callers run it on its
// own goroutine (see pkg/proxy.Engine.Run).
func (d *Daemon) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = d.listener.Close()
	}()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				d.wg.Wait()
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					d.wg.Wait()
					return
				}
				d.Logger.Warn().Err(err).Msg("accept failed")
				continue
			}
		}

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.serveConn(conn)
		}()
	}
}

func (d *Daemon) serveConn(conn net.Conn) {
	session := newSession(conn, d.Handler, d.Logger)
	session.logger.Debug().Msg("session accepted")
	_ = conn.SetDeadline(time.Now().Add(d.SessionTimeout))
	session.serve()
}

// Stop closes the listener, causing Run to return once in-flight sessions
// drain. The original's abrupt "discard outstanding work" policy (spec.md
// §5) is preserved: Stop does not wait for in-flight transactions.
func (d *Daemon) Stop() error {
	if d.listener == nil {
		return nil
	}
	return d.listener.Close()
}
